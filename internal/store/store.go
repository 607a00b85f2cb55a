// Package store persists progression profiles with optimistic concurrency.
package store

import (
	"context"
	"errors"

	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
)

var (
	ErrNotFound = errors.New("store: profile not found")
	// ErrVersionConflict is returned by Upsert when the stored version is not the
	// expected one. Callers re-read and re-apply.
	ErrVersionConflict = errors.New("store: version conflict")
	// ErrConflict is returned by the Updater once every attempt hit a version conflict.
	ErrConflict = errors.New("store: profile modified concurrently")
)

// ProfileStore is the persistence contract shared by every backend.
// Returned profiles are copies owned by the caller.
type ProfileStore interface {
	Get(ctx context.Context, username string) (*model.Profile, error)
	// Upsert writes the profile if the stored version equals expectedVersion. An
	// expectedVersion of 0 inserts and fails with ErrVersionConflict when the username
	// already exists. The stored copy, with its new version, is returned.
	Upsert(ctx context.Context, p *model.Profile, expectedVersion int64) (*model.Profile, error)
	// FindByHold returns the usernames holding FLOG against the auction.
	FindByHold(ctx context.Context, auctionID string) ([]string, error)
	// List pages through profiles ordered by username. A limit of 0 returns everything
	// from offset on. The total number of profiles is returned alongside the page.
	List(ctx context.Context, offset, limit int) ([]*model.Profile, int64, error)
}
