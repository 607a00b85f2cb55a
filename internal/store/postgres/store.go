// Package postgres stores profiles in a single gorm-mapped table with jsonb collections.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ store.ProfileStore = (*Store)(nil)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the profile table.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&profileRow{})
}

func (s *Store) Get(ctx context.Context, username string) (*model.Profile, error) {
	var row profileRow
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get profile %s: %w", username, err)
	}
	return row.toProfile()
}

func (s *Store) Upsert(ctx context.Context, p *model.Profile, expectedVersion int64) (*model.Profile, error) {
	row, err := toRow(p)
	if err != nil {
		return nil, err
	}
	row.Version = expectedVersion + 1

	db := s.db.WithContext(ctx)
	var result *gorm.DB
	if expectedVersion == 0 {
		result = db.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	} else {
		result = db.Model(&profileRow{}).
			Where("username = ? AND version = ?", p.Username, expectedVersion).
			Select("*").
			Updates(row)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("postgres: upsert profile %s: %w", p.Username, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, store.ErrVersionConflict
	}

	return row.toProfile()
}

func (s *Store) FindByHold(ctx context.Context, auctionID string) ([]string, error) {
	var usernames []string
	err := s.db.WithContext(ctx).
		Model(&profileRow{}).
		Where("jsonb_exists(held_bids, ?)", auctionID).
		Order("username").
		Pluck("username", &usernames).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: find holders of %s: %w", auctionID, err)
	}
	return usernames, nil
}

func (s *Store) List(ctx context.Context, offset, limit int) ([]*model.Profile, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&profileRow{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("postgres: count profiles: %w", err)
	}

	query := db.Order("username").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []profileRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("postgres: list profiles: %w", err)
	}

	profiles := make([]*model.Profile, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toProfile()
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, p)
	}
	return profiles, total, nil
}
