package progress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/kollektive-hackathon/flog-progression/internal/escrow"
	"github.com/kollektive-hackathon/flog-progression/internal/hero"
	"github.com/kollektive-hackathon/flog-progression/internal/level"
	"github.com/kollektive-hackathon/flog-progression/internal/loot"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/internal/store"
	"github.com/kollektive-hackathon/flog-progression/internal/store/memory"
)

type publishedEvent struct {
	name    string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recordingPublisher) Publish(_ context.Context, eventName string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{name: eventName, payload: payload})
}

func (r *recordingPublisher) last() publishedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return publishedEvent{}
	}
	return r.events[len(r.events)-1]
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	service   *ProgressService
	store     *memory.Store
	publisher *recordingPublisher
	clock     *testClock
}

func newHarness(starterUsers ...string) *harness {
	clock := &testClock{t: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	st := memory.New()
	starter := NewStarterPack(starterUsers, clock.Now)
	updater := store.NewUpdater(st,
		store.WithPrepare(starter.Ensure),
		store.WithClock(clock.Now),
		store.WithBackoff(time.Millisecond, 2*time.Millisecond),
	)
	engine := loot.NewEngine(loot.WithSources(loot.Shared(loot.NewLockedSource(42))))
	publisher := &recordingPublisher{}

	return &harness{
		service:   NewProgressService(updater, engine, publisher, starter, clock.Now),
		store:     st,
		publisher: publisher,
		clock:     clock,
	}
}

func (h *harness) put(t *testing.T, p *model.Profile) {
	t.Helper()
	level.Refresh(p)
	if _, err := h.store.Upsert(context.Background(), p, 0); err != nil {
		t.Fatalf("put %s: %v", p.Username, err)
	}
}

func withHeroes(username string, now time.Time, heroes ...string) *model.Profile {
	p := model.NewProfile(username, now)
	for i := 0; i+1 < len(heroes); i += 2 {
		variant, ok := hero.GetVariant(heroes[i], heroes[i+1])
		if !ok {
			panic("unknown hero " + heroes[i])
		}
		p.OwnedHeroes = append(p.OwnedHeroes, variant.Owned(now))
	}
	return p
}

func TestGetProfile_CreatesDefaultProfile(t *testing.T) {
	h := newHarness()

	got, err := h.service.GetProfile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetProfile: %v", err.Cause)
	}
	if got.FlogBalance != model.StartingBalance || got.Level != 1 || got.Experience != 0 {
		t.Errorf("got balance %d level %d xp %d, want %d 1 0", got.FlogBalance, got.Level, got.Experience, model.StartingBalance)
	}
	if got.NextLevelAt != level.Divisor {
		t.Errorf("nextLevelAt: got %d, want %d", got.NextLevelAt, level.Divisor)
	}

	stored, storeErr := h.store.Get(context.Background(), "alice")
	if storeErr != nil {
		t.Fatalf("profile was not persisted: %v", storeErr)
	}
	if stored.Version != 1 {
		t.Errorf("version: got %d, want 1", stored.Version)
	}
}

func TestGetProfile_BlankUsername(t *testing.T) {
	h := newHarness()

	_, err := h.service.GetProfile(context.Background(), "  ")
	if err == nil || err.Problem.Status != http.StatusBadRequest {
		t.Fatalf("got %v, want 400", err)
	}
}

func TestPlaceBid_HoldsAndRaises(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	first, err := h.service.PlaceBid(ctx, "alice", "a-1", 100)
	if err != nil {
		t.Fatalf("PlaceBid: %v", err.Cause)
	}
	if first.Coins != -100 || first.Profile.FlogBalance != 400 || first.Profile.HeldFlog != 100 {
		t.Errorf("first bid: got coins %d balance %d held %d, want -100 400 100", first.Coins, first.Profile.FlogBalance, first.Profile.HeldFlog)
	}

	raise, err := h.service.PlaceBid(ctx, "alice", "a-1", 150)
	if err != nil {
		t.Fatalf("PlaceBid raise: %v", err.Cause)
	}
	if raise.Coins != -50 || raise.Profile.FlogBalance != 350 || raise.Profile.HeldFlog != 150 {
		t.Errorf("raise: got coins %d balance %d held %d, want -50 350 150", raise.Coins, raise.Profile.FlogBalance, raise.Profile.HeldFlog)
	}
	if raise.Profile.BidsPlaced != 2 {
		t.Errorf("bidsPlaced: got %d, want 2", raise.Profile.BidsPlaced)
	}
	if len(raise.Profile.HeldBids) != 1 || raise.Profile.HeldBids[0] != (HeldBid{AuctionId: "a-1", Amount: 150}) {
		t.Errorf("heldBids: got %v, want [{a-1 150}]", raise.Profile.HeldBids)
	}
}

func TestPlaceBid_ClampsAtZero(t *testing.T) {
	h := newHarness()

	got, err := h.service.PlaceBid(context.Background(), "alice", "a-1", 800)
	if err != nil {
		t.Fatalf("PlaceBid: %v", err.Cause)
	}
	if !got.Clamped || got.Profile.FlogBalance != 0 || got.Coins != -model.StartingBalance {
		t.Errorf("got clamped %v balance %d coins %d, want true 0 %d", got.Clamped, got.Profile.FlogBalance, got.Coins, -model.StartingBalance)
	}
	if got.Profile.HeldFlog != 800 {
		t.Errorf("held: got %d, want 800", got.Profile.HeldFlog)
	}
}

func TestPlaceBid_InvalidInput(t *testing.T) {
	h := newHarness()

	tests := []struct {
		auctionId string
		amount    int64
	}{
		{"", 100},
		{"a-1", 0},
		{"a-1", -5},
	}

	for _, tt := range tests {
		_, err := h.service.PlaceBid(context.Background(), "alice", tt.auctionId, tt.amount)
		if err == nil || err.Problem.Status != http.StatusBadRequest {
			t.Errorf("PlaceBid(%q, %d): got %v, want 400", tt.auctionId, tt.amount, err)
		}
	}
}

func TestTrackDailyLogin(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	first, _ := h.service.TrackDailyLogin(ctx, "alice")
	if !first.Granted || first.Coins != dailyLoginBonus || first.Profile.FlogBalance != 525 {
		t.Fatalf("first: got granted %v coins %d balance %d, want true 25 525", first.Granted, first.Coins, first.Profile.FlogBalance)
	}

	again, _ := h.service.TrackDailyLogin(ctx, "alice")
	if again.Granted || again.Coins != 0 || again.Profile.FlogBalance != 525 {
		t.Errorf("same day: got granted %v coins %d balance %d, want false 0 525", again.Granted, again.Coins, again.Profile.FlogBalance)
	}
	wantNext := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if again.Profile.NextDailyRewardAt == nil || !again.Profile.NextDailyRewardAt.Equal(wantNext) {
		t.Errorf("nextDailyRewardAt: got %v, want %v", again.Profile.NextDailyRewardAt, wantNext)
	}

	h.clock.Advance(14 * time.Hour)
	next, _ := h.service.TrackDailyLogin(ctx, "alice")
	if !next.Granted || next.Profile.FlogBalance != 550 {
		t.Errorf("next day: got granted %v balance %d, want true 550", next.Granted, next.Profile.FlogBalance)
	}
}

func TestAwardSaleAndPurchase(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	amount := int64(1000)

	sale, _ := h.service.AwardSale(ctx, "alice", "a-9", &amount)
	if sale.Coins != 80 || sale.Profile.AuctionsSold != 1 || sale.Profile.RecentSales[0] != "a-9" {
		t.Errorf("sale: got coins %d sold %d recent %v", sale.Coins, sale.Profile.AuctionsSold, sale.Profile.RecentSales)
	}

	purchase, _ := h.service.AwardPurchase(ctx, "alice", "a-10", nil)
	if purchase.Coins != 40 || purchase.Profile.AuctionsWon != 1 {
		t.Errorf("purchase: got coins %d won %d, want 40 1", purchase.Coins, purchase.Profile.AuctionsWon)
	}

	listing, _ := h.service.AwardListing(ctx, "alice")
	if listing.Profile.FlogBalance != 500+80+40+40 || listing.Profile.AuctionsCreated != 1 {
		t.Errorf("listing: got balance %d created %d, want 660 1", listing.Profile.FlogBalance, listing.Profile.AuctionsCreated)
	}
}

func TestStarterPack_GrantedOnce(t *testing.T) {
	h := newHarness("test", "Dion Upton")
	ctx := context.Background()

	first, err := h.service.GetProfile(ctx, "Dion Upton")
	if err != nil {
		t.Fatalf("GetProfile: %v", err.Cause)
	}
	if len(first.OwnedHeroes) != len(starterHeroes) {
		t.Fatalf("heroes: got %d, want %d", len(first.OwnedHeroes), len(starterHeroes))
	}
	if first.Experience != first.TotalHeroPower || first.Level != level.ForExperience(first.TotalHeroPower) {
		t.Errorf("got xp %d level %d for power %d", first.Experience, first.Level, first.TotalHeroPower)
	}

	second, _ := h.service.EnsureStarterPack(ctx, "Dion Upton")
	if len(second.OwnedHeroes) != len(starterHeroes) {
		t.Errorf("second call: got %d heroes, want %d", len(second.OwnedHeroes), len(starterHeroes))
	}

	other, _ := h.service.GetProfile(ctx, "alice")
	if len(other.OwnedHeroes) != 0 {
		t.Errorf("alice is not on the allow list but got %d heroes", len(other.OwnedHeroes))
	}
}

func TestOpenMysteryBox_CooldownReplaysReward(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	first, err := h.service.OpenMysteryBox(ctx, "alice")
	if err != nil {
		t.Fatalf("OpenMysteryBox: %v", err.Cause)
	}
	if first.OnCooldown || first.Hero == nil {
		t.Fatalf("first open: got onCooldown %v hero %v", first.OnCooldown, first.Hero)
	}
	if first.GoldAwarded != loot.Gold(first.Rarity) {
		t.Errorf("gold: got %d, want %d", first.GoldAwarded, loot.Gold(first.Rarity))
	}
	if first.ExperienceGained != int64(first.Hero.Power()) || first.Profile.Experience != int64(first.Hero.Power()) {
		t.Errorf("xp: got gained %d profile %d, want %d", first.ExperienceGained, first.Profile.Experience, first.Hero.Power())
	}
	if first.Profile.FlogBalance != model.StartingBalance+first.GoldAwarded {
		t.Errorf("balance: got %d, want %d", first.Profile.FlogBalance, model.StartingBalance+first.GoldAwarded)
	}
	wantEnds := h.clock.Now().Add(loot.DefaultCooldown)
	if first.CooldownEndsAt == nil || !first.CooldownEndsAt.Equal(wantEnds) {
		t.Errorf("cooldownEndsAt: got %v, want %v", first.CooldownEndsAt, wantEnds)
	}

	h.clock.Advance(time.Hour)
	again, _ := h.service.OpenMysteryBox(ctx, "alice")
	if !again.OnCooldown {
		t.Fatalf("second open within the cooldown was not on cooldown")
	}
	if again.Hero == nil || again.Hero.VariantId != first.Hero.VariantId || again.GoldAwarded != first.GoldAwarded {
		t.Errorf("replay: got %v/%d, want %s/%d", again.Hero, again.GoldAwarded, first.Hero.VariantId, first.GoldAwarded)
	}
	if len(again.Profile.OwnedHeroes) != 1 || again.Profile.FlogBalance != first.Profile.FlogBalance {
		t.Errorf("cooldown open changed the profile: heroes %d balance %d", len(again.Profile.OwnedHeroes), again.Profile.FlogBalance)
	}

	h.clock.Advance(loot.DefaultCooldown)
	later, _ := h.service.OpenMysteryBox(ctx, "alice")
	if later.OnCooldown || len(later.Profile.OwnedHeroes) != 2 {
		t.Errorf("after cooldown: got onCooldown %v heroes %d, want false 2", later.OnCooldown, len(later.Profile.OwnedHeroes))
	}
}

func TestGetLeaderboard(t *testing.T) {
	h := newHarness()
	now := h.clock.Now()

	h.put(t, withHeroes("zed", now, "grum", "Legendary"))
	h.put(t, withHeroes("bob", now, "grum", "Legendary"))
	h.put(t, withHeroes("amy", now, "dresh", "Common"))
	h.put(t, withHeroes("cat", now, "dresh", "Common", "orin", "Common"))
	h.put(t, model.NewProfile("empty", now))

	entries, err := h.service.GetLeaderboard(context.Background())
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err.Cause)
	}

	want := []string{"bob", "zed", "cat", "amy", "empty"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, entry := range entries {
		if entry.Username != want[i] || entry.Rank != i+1 {
			t.Errorf("position %d: got %s rank %d, want %s rank %d", i, entry.Username, entry.Rank, want[i], i+1)
		}
	}
	if entries[2].HeroCount != 2 {
		t.Errorf("cat heroCount: got %d, want 2", entries[2].HeroCount)
	}
}

func TestGetLeaderboard_TopTen(t *testing.T) {
	h := newHarness()
	for i := 0; i < 12; i++ {
		h.put(t, withHeroes(fmt.Sprintf("user-%02d", i), h.clock.Now(), "nyx", "Rare"))
	}

	entries, _ := h.service.GetLeaderboard(context.Background())
	if len(entries) != leaderboardSize {
		t.Errorf("got %d entries, want %d", len(entries), leaderboardSize)
	}
}

func TestProblemFrom(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", escrow.ErrInvalidHold), http.StatusBadRequest},
		{ErrUnknownAwardKind, http.StatusBadRequest},
		{fmt.Errorf("get: %w", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("gave up: %w", store.ErrConflict), http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		got := problemFrom(tt.err, "alice")
		if got.Problem.Status != tt.want {
			t.Errorf("problemFrom(%v): got %d, want %d", tt.err, got.Problem.Status, tt.want)
		}
	}
}
