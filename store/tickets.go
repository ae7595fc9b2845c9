package store

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/nft-ticketing-go/models"
)

type TicketStore struct {
	col *mongo.Collection
}

func NewTicketStore(db *mongo.Database) *TicketStore {
	return &TicketStore{col: db.Collection(TicketsCollection)}
}

// Insert relies on the event_attendee_unique index: a duplicate key error on
// it means another request already issued a ticket for the pair.
func (s *TicketStore) Insert(ctx context.Context, ticket *models.Ticket) error {
	if ticket.ID.IsZero() {
		ticket.ID = primitive.NewObjectID()
	}

	_, err := s.col.InsertOne(ctx, ticket)
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), TicketTokenIndex) {
			return fmt.Errorf("%w: %s", models.ErrDuplicateToken, ticket.NFTTokenID)
		}
		return models.ErrDuplicateTicket
	}
	return fmt.Errorf("insert ticket: %w", err)
}

func (s *TicketStore) ExistsForAttendee(ctx context.Context, eventID, attendeeID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return false, nil
	}

	n, err := s.col.CountDocuments(ctx,
		bson.M{"event_id": oid, "attendee_id": attendeeID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count tickets: %w", err)
	}
	return n > 0, nil
}

func (s *TicketStore) ListByEvent(ctx context.Context, eventID string) ([]models.Ticket, error) {
	return s.ListByEvents(ctx, []string{eventID})
}

func (s *TicketStore) ListByEvents(ctx context.Context, eventIDs []string) ([]models.Ticket, error) {
	oids := objectIDs(eventIDs)
	if len(oids) == 0 {
		return []models.Ticket{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "purchase_date", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{"event_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find tickets: %w", err)
	}

	tickets := []models.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketStore) CountSold(ctx context.Context, eventID string) (int, error) {
	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return 0, models.ErrEventNotFound
	}

	n, err := s.col.CountDocuments(ctx, bson.M{
		"event_id": oid,
		"status":   bson.M{"$in": []models.TicketStatus{models.TicketConfirmed, models.TicketUsed}},
	})
	if err != nil {
		return 0, fmt.Errorf("count sold tickets: %w", err)
	}
	return int(n), nil
}

// objectIDs drops malformed ids; they cannot match any document.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
