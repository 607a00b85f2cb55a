package progress

import (
	"time"

	"github.com/kollektive-hackathon/flog-progression/internal/level"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
)

type HeldBid struct {
	AuctionId string `json:"auctionId"`
	Amount    int64  `json:"amount"`
}

// ProfileSnapshot is the client view of a profile.
type ProfileSnapshot struct {
	Username       string `json:"username"`
	AvatarUrl      string `json:"avatarUrl"`
	Level          int64  `json:"level"`
	Experience     int64  `json:"experience"`
	NextLevelAt    int64  `json:"nextLevelAt"`
	FlogBalance    int64  `json:"flogBalance"`
	HeldFlog       int64  `json:"heldFlog"`
	TotalHeroPower int64  `json:"totalHeroPower"`

	AuctionsCreated int64 `json:"auctionsCreated"`
	AuctionsSold    int64 `json:"auctionsSold"`
	AuctionsWon     int64 `json:"auctionsWon"`
	BidsPlaced      int64 `json:"bidsPlaced"`

	RecentPurchases []string          `json:"recentPurchases"`
	RecentSales     []string          `json:"recentSales"`
	HeldBids        []HeldBid         `json:"heldBids"`
	OwnedHeroes     []model.OwnedHero `json:"ownedHeroes"`

	LastDailyRewardAt      *time.Time `json:"lastDailyRewardAt,omitempty"`
	NextDailyRewardAt      *time.Time `json:"nextDailyRewardAt,omitempty"`
	LastMysteryRewardAt    *time.Time `json:"lastMysteryRewardAt,omitempty"`
	LastMysteryRewardXp    *int64     `json:"lastMysteryRewardXp,omitempty"`
	LastMysteryRewardCoins *int64     `json:"lastMysteryRewardCoins,omitempty"`
	MysteryCooldownEndsAt  *time.Time `json:"mysteryCooldownEndsAt,omitempty"`
}

func (s *ProgressService) snapshot(p *model.Profile) *ProfileSnapshot {
	now := s.now()
	p.Normalize()

	snapshot := &ProfileSnapshot{
		Username:               p.Username,
		AvatarUrl:              p.AvatarURL,
		Level:                  p.Level,
		Experience:             p.Experience,
		NextLevelAt:            level.NextLevelAt(p.Level),
		FlogBalance:            p.FlogBalance,
		HeldFlog:               p.HeldBids.Total(),
		TotalHeroPower:         level.ComputeHeroPower(p.OwnedHeroes),
		AuctionsCreated:        p.AuctionsCreated,
		AuctionsSold:           p.AuctionsSold,
		AuctionsWon:            p.AuctionsWon,
		BidsPlaced:             p.BidsPlaced,
		RecentPurchases:        p.RecentPurchases,
		RecentSales:            p.RecentSales,
		HeldBids:               make([]HeldBid, 0, len(p.HeldBids)),
		OwnedHeroes:            p.OwnedHeroes,
		LastDailyRewardAt:      p.LastDailyRewardAt,
		LastMysteryRewardAt:    p.LastMysteryRewardAt,
		LastMysteryRewardXp:    p.LastMysteryRewardXp,
		LastMysteryRewardCoins: p.LastMysteryRewardCoins,
		MysteryCooldownEndsAt:  s.loot.CooldownEndsAt(p, now),
	}

	for _, id := range p.HeldBids.AuctionIDs() {
		snapshot.HeldBids = append(snapshot.HeldBids, HeldBid{AuctionId: id, Amount: p.HeldBids[id]})
	}
	if p.LastDailyRewardAt != nil && sameUTCDay(*p.LastDailyRewardAt, now) {
		next := nextUTCDay(now)
		snapshot.NextDailyRewardAt = &next
	}

	return snapshot
}
