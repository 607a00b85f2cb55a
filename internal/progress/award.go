package progress

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kollektive-hackathon/flog-progression/internal/escrow"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
)

var ErrUnknownAwardKind = errors.New("progress: unknown award kind")

type AwardKind int

const (
	AwardBid AwardKind = iota + 1
	AwardList
	AwardSale
	AwardPurchase
	AwardDailyLogin
)

const (
	listingBonus    int64 = 40
	dailyLoginBonus int64 = 25

	saleMultiplier     = 0.08
	saleMinimum        = 60
	purchaseMultiplier = 0.05
	purchaseMinimum    = 40
)

var awardKindNames = map[AwardKind]string{
	AwardBid:        "bid",
	AwardList:       "list",
	AwardSale:       "sale",
	AwardPurchase:   "purchase",
	AwardDailyLogin: "daily-login",
}

func (k AwardKind) String() string {
	if name, ok := awardKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("AwardKind(%d)", int(k))
}

// ParseAwardKind accepts the tag names case-insensitively. Anything else is an error.
func ParseAwardKind(tag string) (AwardKind, error) {
	for kind, name := range awardKindNames {
		if strings.EqualFold(name, strings.TrimSpace(tag)) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAwardKind, tag)
}

// AwardParams carries the optional inputs of an award. Amount is required for bids.
type AwardParams struct {
	AuctionId string
	Amount    *int64
}

func (p AwardParams) amount() int64 {
	if p.Amount == nil {
		return 0
	}
	return *p.Amount
}

// CalculateCoinBonus returns round(amount*multiplier), rounded half away from zero,
// but never less than minimum.
func CalculateCoinBonus(amount int64, multiplier float64, minimum int64) int64 {
	return max(minimum, int64(math.Round(float64(amount)*multiplier)))
}

// awardOutcome is what one award did to a profile.
type awardOutcome struct {
	changed bool
	coins   int64
	hold    escrow.HoldResult
}

// applyAward mutates the profile for one award. It never persists.
func applyAward(p *model.Profile, kind AwardKind, params AwardParams, now time.Time) (awardOutcome, error) {
	switch kind {
	case AwardBid:
		hold, err := escrow.PlaceBidHold(p, params.AuctionId, params.amount())
		if err != nil {
			return awardOutcome{}, err
		}
		return awardOutcome{changed: true, coins: -hold.Deducted, hold: hold}, nil

	case AwardList:
		p.AuctionsCreated++
		p.FlogBalance += listingBonus
		return awardOutcome{changed: true, coins: listingBonus}, nil

	case AwardSale:
		bonus := CalculateCoinBonus(params.amount(), saleMultiplier, saleMinimum)
		p.AuctionsSold++
		p.FlogBalance += bonus
		if params.AuctionId != "" {
			p.PushRecentSale(params.AuctionId)
		}
		return awardOutcome{changed: true, coins: bonus}, nil

	case AwardPurchase:
		bonus := CalculateCoinBonus(params.amount(), purchaseMultiplier, purchaseMinimum)
		p.AuctionsWon++
		p.FlogBalance += bonus
		if params.AuctionId != "" {
			p.PushRecentPurchase(params.AuctionId)
		}
		return awardOutcome{changed: true, coins: bonus}, nil

	case AwardDailyLogin:
		if p.LastDailyRewardAt != nil && sameUTCDay(*p.LastDailyRewardAt, now) {
			return awardOutcome{}, nil
		}
		at := now
		p.LastDailyRewardAt = &at
		p.FlogBalance += dailyLoginBonus
		return awardOutcome{changed: true, coins: dailyLoginBonus}, nil
	}

	return awardOutcome{}, fmt.Errorf("%w: %s", ErrUnknownAwardKind, kind)
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// nextUTCDay is midnight UTC after t.
func nextUTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
