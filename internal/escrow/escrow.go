// Package escrow reserves FLOG against open bids and releases it when an auction settles.
package escrow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
)

var ErrInvalidHold = errors.New("escrow: invalid hold")

// HoldResult describes what a bid hold did to the balance.
type HoldResult struct {
	Prior    int64
	Deducted int64
	// Clamped is set when the balance could not cover the increase and was floored at
	// zero instead. The hold is still recorded for the full amount.
	Clamped bool
}

// AuctionID is the key holds are recorded under. Surrounding whitespace is not part of an id.
func AuctionID(id string) string {
	return strings.TrimSpace(id)
}

// PlaceBidHold records amount as the user's new absolute bid on the auction and deducts
// only the increase over any previous hold.
func PlaceBidHold(p *model.Profile, auctionID string, amount int64) (HoldResult, error) {
	auctionID = AuctionID(auctionID)
	if auctionID == "" {
		return HoldResult{}, fmt.Errorf("%w: auction id is required", ErrInvalidHold)
	}
	if amount <= 0 {
		return HoldResult{}, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidHold, amount)
	}

	prior, _ := p.HeldBids.Amount(auctionID)
	delta := max(0, amount-prior)

	result := HoldResult{Prior: prior, Deducted: min(delta, p.FlogBalance), Clamped: delta > p.FlogBalance}
	p.FlogBalance = max(0, p.FlogBalance-delta)
	p.HeldBids.Put(auctionID, amount)
	p.BidsPlaced++

	return result, nil
}

// Outcome of releasing one profile's hold at settlement.
type Outcome int

const (
	// NoHold means the profile held nothing for the auction (already settled).
	NoHold Outcome = iota
	Refunded
	Forfeited
)

func (o Outcome) String() string {
	switch o {
	case Refunded:
		return "refunded"
	case Forfeited:
		return "forfeited"
	default:
		return "no-hold"
	}
}

// ReleaseHold removes the profile's hold on the auction. Non-winners get the held
// amount back; the winner's hold was already deducted when it was placed.
func ReleaseHold(p *model.Profile, auctionID string, winner string) (Outcome, int64) {
	amount, ok := p.HeldBids.Remove(AuctionID(auctionID))
	if !ok {
		return NoHold, 0
	}

	if strings.EqualFold(p.Username, winner) {
		return Forfeited, amount
	}

	p.FlogBalance += amount
	return Refunded, amount
}
