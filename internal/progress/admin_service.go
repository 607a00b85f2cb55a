package progress

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kollektive-hackathon/flog-progression/internal/level"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/events"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/reject"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/utils"
)

const (
	adjustmentRequired string = "error.progress.adjustment-required"
	invalidLevel       string = "error.progress.invalid-level"
	avatarRequired     string = "error.progress.avatar-required"
)

// ListProfiles pages through every stored profile. It never creates one.
func (s *ProgressService) ListProfiles(ctx context.Context, page utils.PageRequest) (*utils.PageResponse[*ProfileSnapshot], *reject.ProblemWithTrace) {
	profiles, total, err := s.updater.Store().List(ctx, page.Offset, page.Size)
	if err != nil {
		return nil, problemFrom(err, "")
	}

	items := make([]*ProfileSnapshot, 0, len(profiles))
	for _, p := range profiles {
		level.Refresh(p)
		items = append(items, s.snapshot(p))
	}

	return utils.PageOf(items, total, page), nil
}

// FindProfile is GetProfile without the create-on-demand.
func (s *ProgressService) FindProfile(ctx context.Context, username string) (*ProfileSnapshot, *reject.ProblemWithTrace) {
	p, err := s.updater.Store().Get(ctx, username)
	if err != nil {
		return nil, problemFrom(err, username)
	}
	level.Refresh(p)
	return s.snapshot(p), nil
}

// AdjustBalance adds delta to the balance, flooring it at zero.
func (s *ProgressService) AdjustBalance(ctx context.Context, username string, delta int64, reason string, updatedBy string) (*ProfileSnapshot, *reject.ProblemWithTrace) {
	p, err := s.updater.UpdateExisting(ctx, username, func(p *model.Profile) (bool, error) {
		p.FlogBalance = max(0, p.FlogBalance+delta)
		return delta != 0, nil
	})
	if err != nil {
		return nil, problemFrom(err, username)
	}

	s.publisher.Publish(ctx, events.UserProgressAdjustedEvent, events.UserProgressAdjusted{
		Username:     username,
		BalanceDelta: &delta,
		Reason:       reason,
		UpdatedBy:    updatedBy,
		UpdatedAt:    p.UpdatedAt,
	})
	return s.snapshot(p), nil
}

// AdjustExperience shifts experience by delta on top of hero power, or moves the user to
// the start of setLevel when given. Both may be combined; the level is applied last.
func (s *ProgressService) AdjustExperience(ctx context.Context, username string, delta *int64, setLevel *int64, reason string, updatedBy string) (*ProfileSnapshot, *reject.ProblemWithTrace) {
	if delta == nil && setLevel == nil {
		return nil, badRequest("An experience delta or level is required", adjustmentRequired)
	}
	if setLevel != nil && *setLevel < 1 {
		return nil, badRequest("Level must be at least 1", invalidLevel)
	}

	p, err := s.updater.UpdateExisting(ctx, username, func(p *model.Profile) (bool, error) {
		if delta != nil {
			p.ExperienceAdjustment += *delta
		}
		if setLevel != nil {
			power := level.ComputeHeroPower(p.OwnedHeroes)
			p.ExperienceAdjustment = level.NextLevelAt(*setLevel-1) - power
		}
		level.Refresh(p)
		return true, nil
	})
	if err != nil {
		return nil, problemFrom(err, username)
	}

	resultingLevel := p.Level
	s.publisher.Publish(ctx, events.UserProgressAdjustedEvent, events.UserProgressAdjusted{
		Username:  username,
		XpDelta:   delta,
		Level:     &resultingLevel,
		Reason:    reason,
		UpdatedBy: updatedBy,
		UpdatedAt: p.UpdatedAt,
	})
	return s.snapshot(p), nil
}

func (s *ProgressService) SetAvatar(ctx context.Context, username string, avatarUrl string, updatedBy string) (*ProfileSnapshot, *reject.ProblemWithTrace) {
	avatarUrl = strings.TrimSpace(avatarUrl)
	if avatarUrl == "" {
		return nil, badRequest("Avatar url is required", avatarRequired)
	}

	p, err := s.updater.UpdateExisting(ctx, username, func(p *model.Profile) (bool, error) {
		changed := p.AvatarURL != avatarUrl
		p.AvatarURL = avatarUrl
		return changed, nil
	})
	if err != nil {
		return nil, problemFrom(err, username)
	}

	s.publisher.Publish(ctx, events.UserAvatarUpdatedEvent, events.UserAvatarUpdated{
		Username:  username,
		AvatarUrl: avatarUrl,
		UpdatedBy: updatedBy,
		UpdatedAt: p.UpdatedAt,
	})
	return s.snapshot(p), nil
}

// ResetCooldowns clears the daily-login and mystery-box audit fields.
func (s *ProgressService) ResetCooldowns(ctx context.Context, username string, updatedBy string) (*ProfileSnapshot, *reject.ProblemWithTrace) {
	p, err := s.updater.UpdateExisting(ctx, username, func(p *model.Profile) (bool, error) {
		changed := p.LastDailyRewardAt != nil || p.LastMysteryRewardAt != nil ||
			p.LastMysteryRewardXp != nil || p.LastMysteryRewardCoins != nil
		p.LastDailyRewardAt = nil
		p.LastMysteryRewardAt = nil
		p.LastMysteryRewardXp = nil
		p.LastMysteryRewardCoins = nil
		return changed, nil
	})
	if err != nil {
		return nil, problemFrom(err, username)
	}

	s.publisher.Publish(ctx, events.UserCooldownResetEvent, events.UserCooldownReset{
		Username:  username,
		UpdatedBy: updatedBy,
		UpdatedAt: p.UpdatedAt,
	})
	return s.snapshot(p), nil
}

func badRequest(title string, code string) *reject.ProblemWithTrace {
	problem := reject.NewProblem().
		WithTitle(title).
		WithStatus(http.StatusBadRequest).
		WithCode(code).
		Build()
	return reject.Trace(problem, errors.New(title))
}
