// Package progress runs the FLOG progression economy: bid holds, awards, daily logins,
// mystery boxes, the leaderboard and the admin tools on top of the profile store.
package progress

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kollektive-hackathon/flog-progression/internal/escrow"
	"github.com/kollektive-hackathon/flog-progression/internal/loot"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/events"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/metrics"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/reject"
	"github.com/kollektive-hackathon/flog-progression/internal/store"
	"github.com/rs/zerolog/log"
)

const usernameRequired string = "error.progress.username-required"

type ProgressService struct {
	updater   *store.Updater
	loot      *loot.Engine
	publisher events.Publisher
	starter   *StarterPack
	now       func() time.Time
}

func NewProgressService(updater *store.Updater, engine *loot.Engine, publisher events.Publisher, starter *StarterPack, now func() time.Time) *ProgressService {
	if now == nil {
		now = model.Now
	}
	return &ProgressService{
		updater:   updater,
		loot:      engine,
		publisher: publisher,
		starter:   starter,
		now:       now,
	}
}

type AwardResult struct {
	Profile *ProfileSnapshot `json:"profile"`
	Kind    string           `json:"kind"`
	// Coins is the balance change: positive for bonuses, the deducted amount negated for bids.
	Coins   int64 `json:"coins"`
	Granted bool  `json:"granted"`
	Clamped bool  `json:"clamped,omitempty"`
}

type MysteryBoxResult struct {
	Profile          *ProfileSnapshot `json:"profile"`
	Hero             *model.OwnedHero `json:"hero,omitempty"`
	GoldAwarded      int64            `json:"goldAwarded"`
	ExperienceGained int64            `json:"experienceGained"`
	Rarity           model.Rarity     `json:"rarity,omitempty"`
	OnCooldown       bool             `json:"onCooldown"`
	CooldownEndsAt   *time.Time       `json:"cooldownEndsAt,omitempty"`
}

func (s *ProgressService) GetProfile(ctx context.Context, username string) (*ProfileSnapshot, *reject.ProblemWithTrace) {
	if problem := validateUsername(username); problem != nil {
		return nil, problem
	}

	p, err := s.updater.Update(ctx, username, unchanged)
	if err != nil {
		return nil, problemFrom(err, username)
	}
	return s.snapshot(p), nil
}

// EnsureStarterPack grants the demo heroes to allow-listed users who own none yet.
func (s *ProgressService) EnsureStarterPack(ctx context.Context, username string) (*ProfileSnapshot, *reject.ProblemWithTrace) {
	if problem := validateUsername(username); problem != nil {
		return nil, problem
	}

	p, err := s.updater.Update(ctx, username, s.starter.Ensure)
	if err != nil {
		return nil, problemFrom(err, username)
	}
	return s.snapshot(p), nil
}

func (s *ProgressService) PlaceBid(ctx context.Context, username string, auctionId string, amount int64) (*AwardResult, *reject.ProblemWithTrace) {
	return s.Award(ctx, username, AwardBid, AwardParams{AuctionId: auctionId, Amount: &amount})
}

func (s *ProgressService) AwardListing(ctx context.Context, username string) (*AwardResult, *reject.ProblemWithTrace) {
	return s.Award(ctx, username, AwardList, AwardParams{})
}

func (s *ProgressService) AwardSale(ctx context.Context, username string, auctionId string, amount *int64) (*AwardResult, *reject.ProblemWithTrace) {
	return s.Award(ctx, username, AwardSale, AwardParams{AuctionId: auctionId, Amount: amount})
}

func (s *ProgressService) AwardPurchase(ctx context.Context, username string, auctionId string, amount *int64) (*AwardResult, *reject.ProblemWithTrace) {
	return s.Award(ctx, username, AwardPurchase, AwardParams{AuctionId: auctionId, Amount: amount})
}

func (s *ProgressService) TrackDailyLogin(ctx context.Context, username string) (*AwardResult, *reject.ProblemWithTrace) {
	return s.Award(ctx, username, AwardDailyLogin, AwardParams{})
}

// Award applies one award to the user's profile and persists it.
func (s *ProgressService) Award(ctx context.Context, username string, kind AwardKind, params AwardParams) (*AwardResult, *reject.ProblemWithTrace) {
	if problem := validateUsername(username); problem != nil {
		return nil, problem
	}
	params.AuctionId = escrow.AuctionID(params.AuctionId)

	var outcome awardOutcome
	p, err := s.updater.Update(ctx, username, func(p *model.Profile) (bool, error) {
		var err error
		outcome, err = applyAward(p, kind, params, s.now())
		return outcome.changed, err
	})
	if err != nil {
		return nil, problemFrom(err, username)
	}

	if outcome.changed {
		metrics.AwardsGranted.WithLabelValues(kind.String()).Inc()
	}
	if kind == AwardBid {
		metrics.HoldsPlaced.Inc()
		if outcome.hold.Clamped {
			metrics.HoldsClamped.Inc()
			log.Warn().
				Str("username", username).
				Str("auctionId", params.AuctionId).
				Int64("amount", params.amount()).
				Int64("prior", outcome.hold.Prior).
				Int64("deducted", outcome.hold.Deducted).
				Msg("Bid hold exceeded balance, balance clamped at zero")
		}
	}

	return &AwardResult{
		Profile: s.snapshot(p),
		Kind:    kind.String(),
		Coins:   outcome.coins,
		Granted: outcome.changed,
		Clamped: outcome.hold.Clamped,
	}, nil
}

func (s *ProgressService) OpenMysteryBox(ctx context.Context, username string) (*MysteryBoxResult, *reject.ProblemWithTrace) {
	if problem := validateUsername(username); problem != nil {
		return nil, problem
	}

	var reward loot.Reward
	p, err := s.updater.Update(ctx, username, func(p *model.Profile) (bool, error) {
		var err error
		reward, err = s.loot.OpenMysteryBox(p, s.now())
		return err == nil && !reward.OnCooldown, err
	})
	if err != nil {
		return nil, problemFrom(err, username)
	}

	if reward.OnCooldown {
		metrics.MysteryCooldownHits.Inc()
	} else {
		metrics.MysteryDraws.WithLabelValues(reward.Rarity.Lower()).Inc()
	}

	return &MysteryBoxResult{
		Profile:          s.snapshot(p),
		Hero:             reward.Hero,
		GoldAwarded:      reward.Gold,
		ExperienceGained: reward.Experience,
		Rarity:           reward.Rarity,
		OnCooldown:       reward.OnCooldown,
		CooldownEndsAt:   s.loot.CooldownEndsAt(p, s.now()),
	}, nil
}

func unchanged(*model.Profile) (bool, error) {
	return false, nil
}

func validateUsername(username string) *reject.ProblemWithTrace {
	if strings.TrimSpace(username) != "" {
		return nil
	}
	return badRequest("Username is required", usernameRequired)
}

func problemFrom(err error, username string) *reject.ProblemWithTrace {
	switch {
	case errors.Is(err, escrow.ErrInvalidHold), errors.Is(err, ErrUnknownAwardKind):
		problem := reject.RequestValidationProblem()
		problem.Detail = err.Error()
		return reject.Trace(problem, err)
	case errors.Is(err, store.ErrNotFound):
		problem := reject.NotFoundProblem()
		if username != "" {
			problem.Params = map[string]string{"username": username}
		}
		return reject.Trace(problem, err)
	case errors.Is(err, store.ErrConflict):
		log.Warn().Err(err).Str("username", username).Msg("Profile update abandoned after write conflicts")
		return reject.Trace(reject.ConflictProblem(), err)
	default:
		return reject.Trace(reject.UnexpectedProblem(err), err)
	}
}
