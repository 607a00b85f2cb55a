package settlement_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/middleware"
	"github.com/kollektive-hackathon/flog-progression/internal/settlement"
)

func TestAuctionFinishedHook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture()
	f.bid(t, "a", "X", 150)
	f.bid(t, "b", "X", 200)

	router := gin.New()
	settlement.RegisterRoutes(router.Group("/flog-api"), f.coord, "s3cret")

	tests := []struct {
		name string
		key  string
		body string
		want int
	}{
		{"missing key", "", `{"itemSold":true,"winner":"b"}`, http.StatusUnauthorized},
		{"wrong key", "nope", `{"itemSold":true,"winner":"b"}`, http.StatusUnauthorized},
		{"malformed body", "s3cret", `{"itemSold":`, http.StatusBadRequest},
		{"settled", "s3cret", `{"itemSold":true,"winner":"b"}`, http.StatusOK},
		{"replayed", "s3cret", `{"itemSold":true,"winner":"b"}`, http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/flog-api/internal/auctions/X/finished", strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		if tt.key != "" {
			req.Header.Set(middleware.InternalKeyHeader, tt.key)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: got %d, want %d (%s)", tt.name, rec.Code, tt.want, rec.Body.String())
		}
	}

	if got := f.profile(t, "a").FlogBalance; got != 500 {
		t.Errorf("a: got %d, want 500", got)
	}
	if got := f.profile(t, "b").FlogBalance; got != 300 {
		t.Errorf("b: got %d, want 300", got)
	}
}

func TestAuctionFinishedHook_WinnerWithoutItemSold(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture()
	f.bid(t, "a", "X", 150)
	f.bid(t, "b", "X", 200)

	router := gin.New()
	settlement.RegisterRoutes(router.Group("/flog-api"), f.coord, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/flog-api/internal/auctions/X/finished", strings.NewReader(`{"winner":"a"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.InternalKeyHeader, "s3cret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	if got := f.profile(t, "a").FlogBalance; got != 350 {
		t.Errorf("winner refunded: got %d, want 350", got)
	}
	if got := f.profile(t, "b").FlogBalance; got != 500 {
		t.Errorf("b: got %d, want 500", got)
	}
}

func TestAuctionFinishedHook_DisabledWithoutKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	settlement.RegisterRoutes(router.Group("/flog-api"), newFixture().coord, "")

	req := httptest.NewRequest(http.MethodPost, "/flog-api/internal/auctions/X/finished", strings.NewReader(`{}`))
	req.Header.Set(middleware.InternalKeyHeader, "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want 401", rec.Code)
	}
}
