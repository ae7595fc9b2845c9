package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
)

// Active reports whether tickets can still be sold for the status.
func (s EventStatus) Active() bool {
	return s == EventUpcoming || s == EventOngoing
}

func (s EventStatus) Valid() bool {
	return s == EventUpcoming || s == EventOngoing || s == EventCompleted
}

// CanTransitionTo allows forward moves only: upcoming -> ongoing -> completed,
// plus upcoming -> completed for cancelled or skipped events.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	switch s {
	case EventUpcoming:
		return next == EventOngoing || next == EventCompleted
	case EventOngoing:
		return next == EventCompleted
	}
	return false
}

type Event struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Location      string             `bson:"location" json:"location"`
	ImageURL      string             `bson:"image_url" json:"imageUrl"`
	StartTime     time.Time          `bson:"start_time" json:"startTime"`
	OrganizerID   string             `bson:"organizer_id" json:"organizerId"` // DID of the organizer
	TicketsIssued int                `bson:"tickets_issued" json:"ticketsIssued"`
	TicketsSold   int                `bson:"tickets_sold" json:"ticketsSold"`
	Status        EventStatus        `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

// EventDetails are the organizer-editable fields. Status and counters are
// never part of an update.
type EventDetails struct {
	Name        string
	Description string
	Location    string
	ImageURL    string
	StartTime   time.Time
}

// EventFilter narrows List. An empty OrganizerID lists every event.
type EventFilter struct {
	OrganizerID string
}
