package settlement_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kollektive-hackathon/flog-progression/internal/settlement"
)

func TestHandleAuctionFinished(t *testing.T) {
	f := newFixture()
	bridge := settlement.NewBridge(f.coord)
	f.bid(t, "a", "X", 150)
	f.bid(t, "b", "X", 200)

	err := bridge.HandleAuctionFinished(context.Background(), []byte(`{"auctionId":"X","itemSold":true,"winner":"a","seller":"s","amount":150}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.profile(t, "a").FlogBalance; got != 350 {
		t.Errorf("a: got %d, want 350", got)
	}
	if got := f.profile(t, "b").FlogBalance; got != 500 {
		t.Errorf("b: got %d, want 500", got)
	}
}

func TestHandleAuctionFinished_UnsoldRefundsEveryone(t *testing.T) {
	f := newFixture()
	bridge := settlement.NewBridge(f.coord)
	f.bid(t, "a", "X", 150)

	err := bridge.HandleAuctionFinished(context.Background(), []byte(`{"auctionId":"X","itemSold":false,"winner":"a"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.profile(t, "a").FlogBalance; got != 500 {
		t.Errorf("a: got %d, want 500", got)
	}
}

func TestHandleAuctionFinished_WithoutItemSold(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantA   int64
		wantB   int64
	}{
		{"winner named", `{"auctionId":"X","winner":"a"}`, 350, 500},
		{"no winner", `{"auctionId":"X"}`, 500, 500},
		{"blank winner", `{"auctionId":"X","winner":"  "}`, 500, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			bridge := settlement.NewBridge(f.coord)
			f.bid(t, "a", "X", 150)
			f.bid(t, "b", "X", 200)

			if err := bridge.HandleAuctionFinished(context.Background(), []byte(tt.payload)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := f.profile(t, "a").FlogBalance; got != tt.wantA {
				t.Errorf("a: got %d, want %d", got, tt.wantA)
			}
			if got := f.profile(t, "b").FlogBalance; got != tt.wantB {
				t.Errorf("b: got %d, want %d", got, tt.wantB)
			}
		})
	}
}

func TestHandleAuctionFinished_Malformed(t *testing.T) {
	bridge := settlement.NewBridge(newFixture().coord)

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `nope`},
		{"missing auction", `{"winner":"a","itemSold":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bridge.HandleAuctionFinished(context.Background(), []byte(tt.payload))
			if !errors.Is(err, settlement.ErrMalformedEvent) {
				t.Errorf("got %v, want ErrMalformedEvent", err)
			}
		})
	}
}
