// Package mongo stores one document per profile, keyed by username.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/internal/store"
)

const colProfiles = "user_progress"

var _ store.ProfileStore = (*Store)(nil)

type Store struct {
	col *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{col: db.Collection(colProfiles)}
}

// Migrate creates the indexes the store queries rely on.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "held_bids.auction_id", Value: 1}}},
		{Keys: bson.D{{Key: "experience", Value: -1}, {Key: "level", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: migrate %s indexes: %w", colProfiles, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, username string) (*model.Profile, error) {
	var m profileModel
	err := s.col.FindOne(ctx, bson.M{"_id": username}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: get profile %s: %w", username, err)
	}
	return fromProfileModel(&m), nil
}

func (s *Store) Upsert(ctx context.Context, p *model.Profile, expectedVersion int64) (*model.Profile, error) {
	m := toProfileModel(p)
	m.Version = expectedVersion + 1

	if expectedVersion == 0 {
		if _, err := s.col.InsertOne(ctx, m); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, store.ErrVersionConflict
			}
			return nil, fmt.Errorf("mongo: insert profile %s: %w", p.Username, err)
		}
		return fromProfileModel(m), nil
	}

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": p.Username, "version": expectedVersion}, m)
	if err != nil {
		return nil, fmt.Errorf("mongo: replace profile %s: %w", p.Username, err)
	}
	if res.MatchedCount == 0 {
		return nil, store.ErrVersionConflict
	}
	return fromProfileModel(m), nil
}

func (s *Store) FindByHold(ctx context.Context, auctionID string) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := s.col.Find(ctx, bson.M{"held_bids.auction_id": auctionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find holders of %s: %w", auctionID, err)
	}

	var docs []struct {
		Username string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode holders of %s: %w", auctionID, err)
	}

	usernames := make([]string, 0, len(docs))
	for _, d := range docs {
		usernames = append(usernames, d.Username)
	}
	return usernames, nil
}

func (s *Store) List(ctx context.Context, offset, limit int) ([]*model.Profile, int64, error) {
	total, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("mongo: count profiles: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("mongo: list profiles: %w", err)
	}

	var models []profileModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, 0, fmt.Errorf("mongo: decode profiles: %w", err)
	}

	profiles := make([]*model.Profile, 0, len(models))
	for i := range models {
		profiles = append(profiles, fromProfileModel(&models[i]))
	}
	return profiles, total, nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
