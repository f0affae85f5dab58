// Package mongorepo stores posts and accounts in MongoDB. Documents use the
// UUID string as _id so ids look the same on every backend.
package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/blogspace/internal/observability"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	postsCollection    = "posts"
	accountsCollection = "accounts"
)

// Connect dials the server and pings the primary before returning.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the unique email index and the feed ordering index.
// Safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(accountsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("accounts_email_key"),
	})
	if err != nil {
		return fmt.Errorf("accounts email index: %w", err)
	}

	_, err = db.Collection(postsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("posts_created_at_idx"),
	})
	if err != nil {
		return fmt.Errorf("posts created_at index: %w", err)
	}

	return nil
}

func observe(prom *observability.Prom, op string, fn func() error) error {
	if prom != nil {
		return prom.ObserveDB(op, fn)
	}
	return fn()
}

// canonicalID parses id and returns its lowercase hyphenated form, so braced,
// urn and bare-hex spellings address the same record.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// BSON dates keep milliseconds only.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
