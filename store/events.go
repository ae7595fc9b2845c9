package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/nft-ticketing-go/models"
)

type EventStore struct {
	col *mongo.Collection
}

func NewEventStore(db *mongo.Database) *EventStore {
	return &EventStore{col: db.Collection(EventsCollection)}
}

// ---------------- CREATE ----------------
func (s *EventStore) Create(ctx context.Context, event *models.Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Status == "" {
		event.Status = models.EventUpcoming
	}
	if _, err := s.col.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ---------------- GET ----------------
func (s *EventStore) FindByID(ctx context.Context, id string) (*models.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrEventNotFound
	}

	var event models.Event
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

// ---------------- LIST ----------------
func (s *EventStore) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	query := bson.M{}
	if filter.OrganizerID != "" {
		query["organizer_id"] = filter.OrganizerID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}

	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// ---------------- UPDATE ----------------
func (s *EventStore) UpdateDetails(ctx context.Context, id string, d models.EventDetails, updatedAt time.Time) (*models.Event, error) {
	return s.findAndSet(ctx, id, bson.M{
		"name":        d.Name,
		"description": d.Description,
		"location":    d.Location,
		"image_url":   d.ImageURL,
		"start_time":  d.StartTime,
		"updated_at":  updatedAt,
	})
}

func (s *EventStore) UpdateStatus(ctx context.Context, id string, status models.EventStatus, updatedAt time.Time) (*models.Event, error) {
	return s.findAndSet(ctx, id, bson.M{"status": status, "updated_at": updatedAt})
}

func (s *EventStore) IncrementTicketsSold(ctx context.Context, id string, delta int) error {
	return s.updateCounter(ctx, id, bson.M{"$inc": bson.M{"tickets_sold": delta}})
}

func (s *EventStore) SetTicketsSold(ctx context.Context, id string, sold int) error {
	return s.updateCounter(ctx, id, bson.M{"$set": bson.M{"tickets_sold": sold}})
}

func (s *EventStore) findAndSet(ctx context.Context, id string, set bson.M) (*models.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrEventNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Event
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return &updated, nil
}

func (s *EventStore) updateCounter(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrEventNotFound
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update event counter: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrEventNotFound
	}
	return nil
}
