package model

import (
	"fmt"
	"net/url"
	"time"
)

const (
	StartingBalance  int64 = 500
	RecentListLimit        = 50
	avatarURLPattern       = "https://api.dicebear.com/7.x/thumbs/png?seed=%s&backgroundType=gradientLinear&radius=40"
)

// Profile is the per-user progression aggregate. Version is owned by the store and is
// zero until the profile has been written once.
type Profile struct {
	Username    string `json:"username"`
	AvatarURL   string `json:"avatarUrl"`
	FlogBalance int64  `json:"flogBalance"`

	HeldBids        Escrow      `json:"heldBids"`
	OwnedHeroes     []OwnedHero `json:"ownedHeroes"`
	RecentPurchases []string    `json:"recentPurchases"`
	RecentSales     []string    `json:"recentSales"`

	AuctionsCreated int64 `json:"auctionsCreated"`
	AuctionsSold    int64 `json:"auctionsSold"`
	AuctionsWon     int64 `json:"auctionsWon"`
	BidsPlaced      int64 `json:"bidsPlaced"`

	LastDailyRewardAt      *time.Time `json:"lastDailyRewardAt,omitempty"`
	LastMysteryRewardAt    *time.Time `json:"lastMysteryRewardAt,omitempty"`
	LastMysteryRewardXp    *int64     `json:"lastMysteryRewardXp,omitempty"`
	LastMysteryRewardCoins *int64     `json:"lastMysteryRewardCoins,omitempty"`

	ExperienceAdjustment int64 `json:"experienceAdjustment"`
	Experience           int64 `json:"experience"`
	Level                int64 `json:"level"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewProfile(username string, now time.Time) *Profile {
	return &Profile{
		Username:        username,
		AvatarURL:       DefaultAvatarURL(username),
		FlogBalance:     StartingBalance,
		HeldBids:        Escrow{},
		OwnedHeroes:     []OwnedHero{},
		RecentPurchases: []string{},
		RecentSales:     []string{},
		Level:           1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func DefaultAvatarURL(username string) string {
	return fmt.Sprintf(avatarURLPattern, url.QueryEscape(username))
}

// Normalize replaces nil collections left behind by older documents.
func (p *Profile) Normalize() {
	if p.HeldBids == nil {
		p.HeldBids = Escrow{}
	}
	if p.OwnedHeroes == nil {
		p.OwnedHeroes = []OwnedHero{}
	}
	if p.RecentPurchases == nil {
		p.RecentPurchases = []string{}
	}
	if p.RecentSales == nil {
		p.RecentSales = []string{}
	}
}

func (p *Profile) PushRecentPurchase(entry string) {
	p.RecentPurchases = pushFront(p.RecentPurchases, entry)
}

func (p *Profile) PushRecentSale(entry string) {
	p.RecentSales = pushFront(p.RecentSales, entry)
}

func (p *Profile) Clone() *Profile {
	clone := *p
	clone.HeldBids = p.HeldBids.Clone()
	clone.OwnedHeroes = append([]OwnedHero{}, p.OwnedHeroes...)
	clone.RecentPurchases = append([]string{}, p.RecentPurchases...)
	clone.RecentSales = append([]string{}, p.RecentSales...)
	clone.LastDailyRewardAt = cloneTime(p.LastDailyRewardAt)
	clone.LastMysteryRewardAt = cloneTime(p.LastMysteryRewardAt)
	clone.LastMysteryRewardXp = cloneInt(p.LastMysteryRewardXp)
	clone.LastMysteryRewardCoins = cloneInt(p.LastMysteryRewardCoins)
	return &clone
}

func pushFront(list []string, entry string) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, entry)
	out = append(out, list...)
	if len(out) > RecentListLimit {
		out = out[:RecentListLimit]
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
