package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"gorm.io/datatypes"
)

type profileRow struct {
	Username    string `gorm:"primaryKey"`
	AvatarUrl   string
	FlogBalance int64 `gorm:"not null;default:0"`

	HeldBids        datatypes.JSON `gorm:"type:jsonb;not null"`
	OwnedHeroes     datatypes.JSON `gorm:"type:jsonb;not null"`
	RecentPurchases datatypes.JSON `gorm:"type:jsonb;not null"`
	RecentSales     datatypes.JSON `gorm:"type:jsonb;not null"`

	AuctionsCreated int64
	AuctionsSold    int64
	AuctionsWon     int64
	BidsPlaced      int64

	LastDailyRewardAt      *time.Time
	LastMysteryRewardAt    *time.Time
	LastMysteryRewardXp    *int64
	LastMysteryRewardCoins *int64

	ExperienceAdjustment int64
	Experience           int64 `gorm:"index"`
	Level                int64

	Version   int64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (profileRow) TableName() string {
	return "user_progress"
}

func toRow(p *model.Profile) (*profileRow, error) {
	heldBids, err := json.Marshal(p.HeldBids)
	if err != nil {
		return nil, fmt.Errorf("marshal held bids: %w", err)
	}
	heroes, err := json.Marshal(p.OwnedHeroes)
	if err != nil {
		return nil, fmt.Errorf("marshal owned heroes: %w", err)
	}
	purchases, err := json.Marshal(p.RecentPurchases)
	if err != nil {
		return nil, fmt.Errorf("marshal recent purchases: %w", err)
	}
	sales, err := json.Marshal(p.RecentSales)
	if err != nil {
		return nil, fmt.Errorf("marshal recent sales: %w", err)
	}

	return &profileRow{
		Username:               p.Username,
		AvatarUrl:              p.AvatarURL,
		FlogBalance:            p.FlogBalance,
		HeldBids:               heldBids,
		OwnedHeroes:            heroes,
		RecentPurchases:        purchases,
		RecentSales:            sales,
		AuctionsCreated:        p.AuctionsCreated,
		AuctionsSold:           p.AuctionsSold,
		AuctionsWon:            p.AuctionsWon,
		BidsPlaced:             p.BidsPlaced,
		LastDailyRewardAt:      p.LastDailyRewardAt,
		LastMysteryRewardAt:    p.LastMysteryRewardAt,
		LastMysteryRewardXp:    p.LastMysteryRewardXp,
		LastMysteryRewardCoins: p.LastMysteryRewardCoins,
		ExperienceAdjustment:   p.ExperienceAdjustment,
		Experience:             p.Experience,
		Level:                  p.Level,
		Version:                p.Version,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}, nil
}

func (r *profileRow) toProfile() (*model.Profile, error) {
	p := &model.Profile{
		Username:               r.Username,
		AvatarURL:              r.AvatarUrl,
		FlogBalance:            r.FlogBalance,
		AuctionsCreated:        r.AuctionsCreated,
		AuctionsSold:           r.AuctionsSold,
		AuctionsWon:            r.AuctionsWon,
		BidsPlaced:             r.BidsPlaced,
		LastDailyRewardAt:      r.LastDailyRewardAt,
		LastMysteryRewardAt:    r.LastMysteryRewardAt,
		LastMysteryRewardXp:    r.LastMysteryRewardXp,
		LastMysteryRewardCoins: r.LastMysteryRewardCoins,
		ExperienceAdjustment:   r.ExperienceAdjustment,
		Experience:             r.Experience,
		Level:                  r.Level,
		Version:                r.Version,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}

	if err := unmarshalColumn(r.HeldBids, &p.HeldBids); err != nil {
		return nil, fmt.Errorf("held bids of %s: %w", r.Username, err)
	}
	if err := unmarshalColumn(r.OwnedHeroes, &p.OwnedHeroes); err != nil {
		return nil, fmt.Errorf("owned heroes of %s: %w", r.Username, err)
	}
	if err := unmarshalColumn(r.RecentPurchases, &p.RecentPurchases); err != nil {
		return nil, fmt.Errorf("recent purchases of %s: %w", r.Username, err)
	}
	if err := unmarshalColumn(r.RecentSales, &p.RecentSales); err != nil {
		return nil, fmt.Errorf("recent sales of %s: %w", r.Username, err)
	}
	p.Normalize()

	return p, nil
}

func unmarshalColumn(column datatypes.JSON, into any) error {
	if len(column) == 0 {
		return nil
	}
	return json.Unmarshal(column, into)
}
