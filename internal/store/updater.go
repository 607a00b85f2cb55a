package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/kollektive-hackathon/flog-progression/internal/level"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/metrics"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/rs/zerolog/log"
)

const DefaultMaxAttempts = 3

// Mutation applies one logical operation to a freshly read profile. It reports whether
// it changed anything; unchanged profiles are not written.
type Mutation func(p *model.Profile) (bool, error)

// Updater runs read-modify-write cycles against a ProfileStore, re-reading and
// re-applying the mutation when another writer got there first.
type Updater struct {
	store       ProfileStore
	maxAttempts int
	minBackoff  time.Duration
	maxBackoff  time.Duration
	prepare     Mutation
	now         func() time.Time
}

type UpdaterOption func(*Updater)

func WithMaxAttempts(n int) UpdaterOption {
	return func(u *Updater) {
		if n > 0 {
			u.maxAttempts = n
		}
	}
}

func WithBackoff(min, max time.Duration) UpdaterOption {
	return func(u *Updater) {
		u.minBackoff = min
		u.maxBackoff = max
	}
}

// WithPrepare installs a mutation that runs on every loaded profile before the
// operation itself, e.g. granting the starter pack.
func WithPrepare(prepare Mutation) UpdaterOption {
	return func(u *Updater) {
		u.prepare = prepare
	}
}

func WithClock(now func() time.Time) UpdaterOption {
	return func(u *Updater) {
		u.now = now
	}
}

func NewUpdater(store ProfileStore, opts ...UpdaterOption) *Updater {
	u := &Updater{
		store:       store,
		maxAttempts: DefaultMaxAttempts,
		minBackoff:  10 * time.Millisecond,
		maxBackoff:  200 * time.Millisecond,
		now:         model.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Updater) Store() ProfileStore {
	return u.store
}

// Update applies fn to the user's profile, creating the profile on first use.
func (u *Updater) Update(ctx context.Context, username string, fn Mutation) (*model.Profile, error) {
	return u.update(ctx, username, true, fn)
}

// UpdateExisting is Update for profiles that must already exist; it returns
// ErrNotFound instead of creating one.
func (u *Updater) UpdateExisting(ctx context.Context, username string, fn Mutation) (*model.Profile, error) {
	return u.update(ctx, username, false, fn)
}

func (u *Updater) update(ctx context.Context, username string, create bool, fn Mutation) (*model.Profile, error) {
	b := &backoff.Backoff{
		Min:    u.minBackoff,
		Max:    u.maxBackoff,
		Factor: 2,
		Jitter: true,
	}

	for attempt := 1; ; attempt++ {
		saved, err := u.attempt(ctx, username, create, fn)
		if !errors.Is(err, ErrVersionConflict) {
			return saved, err
		}

		if attempt >= u.maxAttempts {
			metrics.WriteConflictsExhausted.Inc()
			log.Warn().Str("username", username).Int("attempts", attempt).Msg("Giving up on profile update after repeated version conflicts")
			return nil, fmt.Errorf("%w: %s after %d attempts", ErrConflict, username, attempt)
		}

		metrics.WriteConflicts.Inc()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}

func (u *Updater) attempt(ctx context.Context, username string, create bool, fn Mutation) (*model.Profile, error) {
	now := u.now()
	created := false

	p, err := u.store.Get(ctx, username)
	switch {
	case errors.Is(err, ErrNotFound) && create:
		p = model.NewProfile(username, now)
		created = true
	case err != nil:
		return nil, err
	}
	p.Normalize()

	changed := created
	if u.prepare != nil {
		prepared, err := u.prepare(p)
		if err != nil {
			return nil, err
		}
		changed = changed || prepared
	}

	mutated, err := fn(p)
	if err != nil {
		return nil, err
	}
	changed = changed || mutated

	level.Refresh(p)
	if !changed {
		return p, nil
	}

	p.UpdatedAt = now
	return u.store.Upsert(ctx, p, p.Version)
}
