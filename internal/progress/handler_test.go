package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/pkg/firebase"
)

// stubVerifier accepts any token and treats it as the username; "root" is an admin.
type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken == "expired" {
		return nil, errors.New("token expired")
	}
	return &auth.Token{
		UID:     "uid-" + idToken,
		Subject: "uid-" + idToken,
		Claims: map[string]interface{}{
			"username": idToken,
			"admin":    idToken == "root",
		},
	}, nil
}

func newTestRouter(h *harness) *gin.Engine {
	gin.SetMode(gin.TestMode)
	firebase.SetVerifier(stubVerifier{})

	router := gin.New()
	group := router.Group("/flog-api")
	RegisterRoutes(group, h.service)
	RegisterAdminRoutes(group, h.service)
	return router
}

func serve(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Auth(t *testing.T) {
	router := newTestRouter(newHarness())

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"missing token", http.MethodGet, "/flog-api/progress/me", "", http.StatusUnauthorized},
		{"rejected token", http.MethodGet, "/flog-api/progress/me", "expired", http.StatusUnauthorized},
		{"own profile", http.MethodGet, "/flog-api/progress/me", "alice", http.StatusOK},
		{"public leaderboard", http.MethodGet, "/flog-api/progress/leaderboard", "", http.StatusOK},
		{"admin as user", http.MethodGet, "/flog-api/admin/progress/users?page_size=10", "alice", http.StatusForbidden},
		{"admin as admin", http.MethodGet, "/flog-api/admin/progress/users?page_size=10", "root", http.StatusOK},
		{"admin without page size", http.MethodGet, "/flog-api/admin/progress/users", "root", http.StatusBadRequest},
	}

	for _, tt := range tests {
		rec := serve(router, tt.method, tt.path, tt.token, "")
		if rec.Code != tt.want {
			t.Errorf("%s: got %d, want %d (%s)", tt.name, rec.Code, tt.want, rec.Body.String())
		}
	}
}

func TestHandler_PlaceBid(t *testing.T) {
	router := newTestRouter(newHarness())

	rec := serve(router, http.MethodPost, "/flog-api/progress/me/bids", "alice", `{"auctionId":"a-1","amount":120}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var result AwardResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Kind != "bid" || result.Profile.Username != "alice" || result.Profile.FlogBalance != 380 {
		t.Errorf("got kind %s user %s balance %d, want bid alice 380", result.Kind, result.Profile.Username, result.Profile.FlogBalance)
	}

	rec = serve(router, http.MethodPost, "/flog-api/progress/me/bids", "alice", `{"auctionId":"a-1"`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: got %d, want 400", rec.Code)
	}
}

func TestHandler_StarterPack(t *testing.T) {
	h := newHarness("dion")
	router := newTestRouter(h)
	h.put(t, model.NewProfile("dion", h.clock.Now()))

	tests := []struct {
		token string
		want  int
	}{
		{"dion", len(starterHeroes)},
		{"dion", len(starterHeroes)},
		{"alice", 0},
	}

	for _, tt := range tests {
		rec := serve(router, http.MethodPost, "/flog-api/progress/me/starter-pack", tt.token, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: got %d, want 200 (%s)", tt.token, rec.Code, rec.Body.String())
		}
		var profile ProfileSnapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(profile.OwnedHeroes) != tt.want {
			t.Errorf("%s: got %d heroes, want %d", tt.token, len(profile.OwnedHeroes), tt.want)
		}
	}
}

func TestHandler_Award(t *testing.T) {
	router := newTestRouter(newHarness())

	tests := []struct {
		body string
		want int
	}{
		{`{"kind":"list"}`, http.StatusOK},
		{`{"kind":"sale","auctionId":"a-2","amount":1000}`, http.StatusOK},
		{`{"kind":"bid","auctionId":"a-3"}`, http.StatusBadRequest},
		{`{"kind":"bogus"}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		rec := serve(router, http.MethodPost, "/flog-api/progress/me/awards", "alice", tt.body)
		if rec.Code != tt.want {
			t.Errorf("%s: got %d, want %d (%s)", tt.body, rec.Code, tt.want, rec.Body.String())
		}
	}
}

func TestHandler_AdminAdjustments(t *testing.T) {
	h := newHarness()
	router := newTestRouter(h)

	if rec := serve(router, http.MethodPost, "/flog-api/admin/progress/users/alice/balance", "root", `{"delta":10}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown user: got %d, want 404", rec.Code)
	}

	serve(router, http.MethodGet, "/flog-api/progress/me", "alice", "")

	tests := []struct {
		path string
		body string
		want int
	}{
		{"/balance", `{"delta":100,"reason":"support"}`, http.StatusOK},
		{"/balance", `{"reason":"no delta"}`, http.StatusBadRequest},
		{"/xp", `{"level":4}`, http.StatusOK},
		{"/xp", `{}`, http.StatusBadRequest},
		{"/avatar", `{"avatarUrl":"https://cdn.example.com/a.png"}`, http.StatusOK},
		{"/reset-cooldowns", "", http.StatusOK},
	}

	for _, tt := range tests {
		rec := serve(router, http.MethodPost, "/flog-api/admin/progress/users/alice"+tt.path, "root", tt.body)
		if rec.Code != tt.want {
			t.Errorf("%s %s: got %d, want %d (%s)", tt.path, tt.body, rec.Code, tt.want, rec.Body.String())
		}
	}

	rec := serve(router, http.MethodGet, "/flog-api/admin/progress/users/alice", "root", "")
	var snapshot ProfileSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snapshot.FlogBalance != 600 || snapshot.Level != 4 || snapshot.AvatarUrl != "https://cdn.example.com/a.png" {
		t.Errorf("got balance %d level %d avatar %s", snapshot.FlogBalance, snapshot.Level, snapshot.AvatarUrl)
	}
}
