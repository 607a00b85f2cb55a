package mongo

import (
	"time"

	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
)

type profileModel struct {
	Username    string `bson:"_id"`
	AvatarURL   string `bson:"avatar_url"`
	FlogBalance int64  `bson:"flog_balance"`

	HeldBids        []heldBidModel `bson:"held_bids"`
	OwnedHeroes     []heroModel    `bson:"owned_heroes"`
	RecentPurchases []string       `bson:"recent_purchases"`
	RecentSales     []string       `bson:"recent_sales"`

	AuctionsCreated int64 `bson:"auctions_created"`
	AuctionsSold    int64 `bson:"auctions_sold"`
	AuctionsWon     int64 `bson:"auctions_won"`
	BidsPlaced      int64 `bson:"bids_placed"`

	LastDailyRewardAt      *time.Time `bson:"last_daily_reward_at,omitempty"`
	LastMysteryRewardAt    *time.Time `bson:"last_mystery_reward_at,omitempty"`
	LastMysteryRewardXp    *int64     `bson:"last_mystery_reward_xp,omitempty"`
	LastMysteryRewardCoins *int64     `bson:"last_mystery_reward_coins,omitempty"`

	ExperienceAdjustment int64 `bson:"experience_adjustment"`
	Experience           int64 `bson:"experience"`
	Level                int64 `bson:"level"`

	Version   int64     `bson:"version"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Holds are stored as an array so the auction id can be indexed.
type heldBidModel struct {
	AuctionID string `bson:"auction_id"`
	Amount    int64  `bson:"amount"`
}

type heroModel struct {
	HeroID     string    `bson:"hero_id"`
	VariantID  string    `bson:"variant_id"`
	Name       string    `bson:"name"`
	Discipline string    `bson:"discipline"`
	Rarity     string    `bson:"rarity"`
	Strength   int       `bson:"strength"`
	Intellect  int       `bson:"intellect"`
	Vitality   int       `bson:"vitality"`
	Agility    int       `bson:"agility"`
	CardImage  string    `bson:"card_image"`
	AcquiredAt time.Time `bson:"acquired_at"`
}

func toProfileModel(p *model.Profile) *profileModel {
	m := &profileModel{
		Username:               p.Username,
		AvatarURL:              p.AvatarURL,
		FlogBalance:            p.FlogBalance,
		HeldBids:               make([]heldBidModel, 0, len(p.HeldBids)),
		OwnedHeroes:            make([]heroModel, 0, len(p.OwnedHeroes)),
		RecentPurchases:        append([]string{}, p.RecentPurchases...),
		RecentSales:            append([]string{}, p.RecentSales...),
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
	}
	for _, id := range p.HeldBids.AuctionIDs() {
		m.HeldBids = append(m.HeldBids, heldBidModel{AuctionID: id, Amount: p.HeldBids[id]})
	}
	for _, h := range p.OwnedHeroes {
		m.OwnedHeroes = append(m.OwnedHeroes, heroModel{
			HeroID:     h.HeroId,
			VariantID:  h.VariantId,
			Name:       h.Name,
			Discipline: h.Discipline,
			Rarity:     string(h.Rarity),
			Strength:   h.Strength,
			Intellect:  h.Intellect,
			Vitality:   h.Vitality,
			Agility:    h.Agility,
			CardImage:  h.CardImage,
			AcquiredAt: h.AcquiredAt,
		})
	}
	return m
}

func fromProfileModel(m *profileModel) *model.Profile {
	p := &model.Profile{
		Username:               m.Username,
		AvatarURL:              m.AvatarURL,
		FlogBalance:            m.FlogBalance,
		HeldBids:               make(model.Escrow, len(m.HeldBids)),
		OwnedHeroes:            make([]model.OwnedHero, 0, len(m.OwnedHeroes)),
		RecentPurchases:        m.RecentPurchases,
		RecentSales:            m.RecentSales,
		AuctionsCreated:        m.AuctionsCreated,
		AuctionsSold:           m.AuctionsSold,
		AuctionsWon:            m.AuctionsWon,
		BidsPlaced:             m.BidsPlaced,
		LastDailyRewardAt:      utc(m.LastDailyRewardAt),
		LastMysteryRewardAt:    utc(m.LastMysteryRewardAt),
		LastMysteryRewardXp:    m.LastMysteryRewardXp,
		LastMysteryRewardCoins: m.LastMysteryRewardCoins,
		ExperienceAdjustment:   m.ExperienceAdjustment,
		Experience:             m.Experience,
		Level:                  m.Level,
		Version:                m.Version,
		CreatedAt:              m.CreatedAt.UTC(),
		UpdatedAt:              m.UpdatedAt.UTC(),
	}
	for _, hold := range m.HeldBids {
		p.HeldBids[hold.AuctionID] = hold.Amount
	}
	for _, h := range m.OwnedHeroes {
		p.OwnedHeroes = append(p.OwnedHeroes, model.OwnedHero{
			HeroId:     h.HeroID,
			VariantId:  h.VariantID,
			Name:       h.Name,
			Discipline: h.Discipline,
			Rarity:     model.Rarity(h.Rarity),
			Strength:   h.Strength,
			Intellect:  h.Intellect,
			Vitality:   h.Vitality,
			Agility:    h.Agility,
			CardImage:  h.CardImage,
			AcquiredAt: h.AcquiredAt.UTC(),
		})
	}
	p.Normalize()
	return p
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
