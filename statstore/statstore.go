// Package statstore persists per-day solved-problem snapshots in MongoDB.
// The relational store keeps identities and settings; the write-heavy daily
// stat documents live here, one per (user, date).
package statstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dsagrinders/dsagrinders/config"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "daily_stats"

// Problem is a single solved-problem event attached to a daily stat.
type Problem struct {
	ID        string `bson:"id" json:"id"`
	Title     string `bson:"title" json:"title"`
	TitleSlug string `bson:"title_slug" json:"titleSlug"`
	// Timestamp is the unix time the problem was accepted.
	Timestamp int64 `bson:"timestamp" json:"timestamp"`
}

// DailyStat is the per-(user, date) snapshot of cumulative solved counts
// and the points earned that day.
type DailyStat struct {
	UserID uint `bson:"user_id" json:"userId"`
	// Date is the calendar day as "YYYY-MM-DD" in the configured zone.
	Date string `bson:"date" json:"date"`

	Easy    int `bson:"easy" json:"easy"`
	Medium  int `bson:"medium" json:"medium"`
	Hard    int `bson:"hard" json:"hard"`
	Total   int `bson:"total" json:"total"`
	Ranking int `bson:"ranking" json:"ranking"`

	// PreviousTotal is the baseline the day's points are measured against.
	// It is fixed at the first write of the day and never overwritten by
	// later same-day refreshes.
	PreviousTotal int `bson:"previous_total" json:"previousTotal"`
	// TodayPoints is max(0, Total-PreviousTotal).
	TodayPoints int `bson:"today_points" json:"todayPoints"`

	RecentProblems []Problem `bson:"recent_problems" json:"recentProblems"`

	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Store provides access to the daily stat collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New connects to MongoDB and ensures the (user_id, date) unique index.
func New(ctx context.Context, cfg *config.MongoConfig) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(collectionName)

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create daily stat index: %w", err)
	}

	return &Store{client: client, coll: coll}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// GetForDate returns the stat document for the given user and day, or nil
// when none exists.
func (s *Store) GetForDate(ctx context.Context, userID uint, date string) (*DailyStat, error) {
	var stat DailyStat
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID, "date": date}).Decode(&stat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stat for %s: %w", date, err)
	}
	return &stat, nil
}

// GetLatestBefore returns the most recent stat document strictly before the
// given day, or nil when the user has no prior history.
func (s *Store) GetLatestBefore(ctx context.Context, userID uint, date string) (*DailyStat, error) {
	var stat DailyStat
	err := s.coll.FindOne(ctx,
		bson.M{"user_id": userID, "date": bson.M{"$lt": date}},
		options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}}),
	).Decode(&stat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest stat before %s: %w", date, err)
	}
	return &stat, nil
}

// GetLatest returns the user's most recent stat document, or nil when the
// user has no history at all.
func (s *Store) GetLatest(ctx context.Context, userID uint) (*DailyStat, error) {
	var stat DailyStat
	err := s.coll.FindOne(ctx,
		bson.M{"user_id": userID},
		options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}}),
	).Decode(&stat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest stat: %w", err)
	}
	return &stat, nil
}

// Upsert writes the stat document for (stat.UserID, stat.Date), replacing
// any existing one, and returns the stored document.
func (s *Store) Upsert(ctx context.Context, stat *DailyStat) (*DailyStat, error) {
	stat.UpdatedAt = time.Now().UTC()

	var stored DailyStat
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"user_id": stat.UserID, "date": stat.Date},
		bson.M{"$set": stat},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert stat for %s: %w", stat.Date, err)
	}
	return &stored, nil
}

// ListSince returns stat documents on or after the given day across all
// users, newest first, used to build the activity feed.
func (s *Store) ListSince(ctx context.Context, date string, limit int64) ([]DailyStat, error) {
	cursor, err := s.coll.Find(ctx,
		bson.M{"date": bson.M{"$gte": date}},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats since %s: %w", date, err)
	}
	defer cursor.Close(ctx) //nolint:errcheck

	var stats []DailyStat
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

// DeleteForUser removes all stat documents of a user, cascading an account
// deletion.
func (s *Store) DeleteForUser(ctx context.Context, userID uint) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete stats for user %d: %w", userID, err)
	}
	return nil
}
