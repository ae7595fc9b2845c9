package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EventsCollection  = "events"
	TicketsCollection = "tickets"
	UsersCollection   = "users"

	TicketPairIndex  = "event_attendee_unique"
	TicketTokenIndex = "nft_token_unique"
	UserDIDIndex     = "did_unique"
)

// EnsureIndexes creates the indexes the stores depend on. The unique ticket
// pair index is what enforces one ticket per attendee per event.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "did", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(UserDIDIndex),
			},
		},
		TicketsCollection: {
			{
				Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "attendee_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(TicketPairIndex),
			},
			{
				Keys:    bson.D{{Key: "nft_token_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true).SetName(TicketTokenIndex),
			},
			{
				Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "purchase_date", Value: -1}},
			},
		},
		EventsCollection: {
			{
				Keys: bson.D{{Key: "organizer_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
			{
				Keys: bson.D{{Key: "created_at", Value: -1}},
			},
		},
	}

	for name, indexes := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}
