package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/nft-ticketing-go/models"
)

type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection(UsersCollection)}
}

// FindOrCreate upserts with $setOnInsert so an existing user's role and name
// are never overwritten.
func (s *UserStore) FindOrCreate(ctx context.Context, did, name string, now time.Time) (*models.User, error) {
	update := bson.M{"$setOnInsert": bson.M{
		"role":       models.RoleAttendee,
		"name":       name,
		"created_at": now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"did": did}, update, opts).Decode(&user)
	if err != nil {
		// Two concurrent first logins race on the did index; the loser reads
		// the winner's record.
		if mongo.IsDuplicateKeyError(err) {
			return s.FindByDID(ctx, did)
		}
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) FindByDID(ctx context.Context, did string) (*models.User, error) {
	var user models.User
	if err := s.col.FindOne(ctx, bson.M{"did": did}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) SetEmail(ctx context.Context, did, email string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"did": did}, bson.M{"$set": bson.M{"email": email}})
	if err != nil {
		return fmt.Errorf("set user email: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
