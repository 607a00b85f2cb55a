// Package settlement releases every bid hold on an auction once it has finished.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kollektive-hackathon/flog-progression/internal/escrow"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/metrics"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/internal/store"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var ErrMissingAuction = errors.New("settlement: auction id is required")

// Result summarizes one settlement run. Profiles that no longer held anything when
// re-read are not counted.
type Result struct {
	AuctionId       string `json:"auctionId"`
	Winner          string `json:"winner,omitempty"`
	Refunded        int    `json:"refunded"`
	RefundedAmount  int64  `json:"refundedAmount"`
	Forfeited       int    `json:"forfeited"`
	ForfeitedAmount int64  `json:"forfeitedAmount"`
}

type Coordinator struct {
	updater *store.Updater
	// maxParallel bounds concurrent profile updates; 0 means unbounded.
	maxParallel int
}

func NewCoordinator(updater *store.Updater, maxParallel int) *Coordinator {
	return &Coordinator{updater: updater, maxParallel: maxParallel}
}

// SettleAuction refunds every non-winning holder of the auction and drops the winner's
// hold. Each holder is updated independently; running it again finds no holders.
func (c *Coordinator) SettleAuction(ctx context.Context, auctionID string, winner string) (Result, error) {
	auctionID = escrow.AuctionID(auctionID)
	if auctionID == "" {
		return Result{}, ErrMissingAuction
	}

	holders, err := c.updater.Store().FindByHold(ctx, auctionID)
	if err != nil {
		return Result{}, fmt.Errorf("find holders of %s: %w", auctionID, err)
	}

	result := Result{AuctionId: auctionID, Winner: winner}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if c.maxParallel > 0 {
		g.SetLimit(c.maxParallel)
	}

	for _, username := range holders {
		username := username
		g.Go(func() error {
			var outcome escrow.Outcome
			var amount int64

			_, err := c.updater.UpdateExisting(gctx, username, func(p *model.Profile) (bool, error) {
				outcome, amount = escrow.ReleaseHold(p, auctionID, winner)
				return outcome != escrow.NoHold, nil
			})
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("release hold of %s on %s: %w", username, auctionID, err)
			}

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case escrow.Refunded:
				result.Refunded++
				result.RefundedAmount += amount
			case escrow.Forfeited:
				result.Forfeited++
				result.ForfeitedAmount += amount
			}
			if outcome != escrow.NoHold {
				metrics.SettlementReleases.WithLabelValues(outcome.String()).Inc()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.SettlementsProcessed.WithLabelValues("error").Inc()
		return result, err
	}

	metrics.SettlementsProcessed.WithLabelValues("ok").Inc()
	log.Info().
		Str("auctionId", auctionID).
		Str("winner", winner).
		Int("refunded", result.Refunded).
		Int("forfeited", result.Forfeited).
		Msg("Settled auction holds")

	return result, nil
}
