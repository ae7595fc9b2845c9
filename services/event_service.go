package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/nft-ticketing-go/clock"
	"github.com/phillip/nft-ticketing-go/models"
)

type CreateEventInput struct {
	models.EventDetails
	OrganizerID string
}

type UpdateEventInput struct {
	EventID string
	models.EventDetails
	// ActorID is the authenticated caller, empty when the request carried no
	// identity. A non-empty ActorID must own the event.
	ActorID string
}

type SetStatusInput struct {
	EventID string
	Status  models.EventStatus
	ActorID string
}

type EventService struct {
	repos    Repositories
	clock    clock.Clock
	recorder Recorder
	cache    MetricsCache
	logger   *slog.Logger
}

type EventOption func(*EventService)

// WithEventMetricsCache drops an organizer's cached dashboard whenever one of
// their events is created or changed.
func WithEventMetricsCache(c MetricsCache) EventOption {
	return func(s *EventService) { s.cache = c }
}

func NewEventService(repos Repositories, clk clock.Clock, recorder Recorder, opts ...EventOption) *EventService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	s := &EventService{repos: repos, clock: clk, recorder: recorder, cache: noopCache{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = noopCache{}
	}
	return s
}

func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	if err := validateDetails(in.EventDetails); err != nil {
		return nil, err
	}
	if in.OrganizerID == "" {
		return nil, models.MissingField("organizerId")
	}

	now := s.clock.Now()
	event := &models.Event{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		Description: in.Description,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		StartTime:   in.StartTime.UTC(),
		OrganizerID: in.OrganizerID,
		Status:      models.EventUpcoming,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.Events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.recorder.ObserveEventCreated()
	s.invalidate(ctx, event.OrganizerID)
	s.logger.Info("event created", "event_id", event.ID.Hex(), "organizer_id", event.OrganizerID)
	return event, nil
}

// Update overwrites the editable details. Status and counters are untouched.
func (s *EventService) Update(ctx context.Context, in UpdateEventInput) (*models.Event, error) {
	if in.EventID == "" {
		return nil, models.MissingField("eventId")
	}
	if err := validateDetails(in.EventDetails); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, in.EventID, in.ActorID); err != nil {
		return nil, err
	}

	details := in.EventDetails
	details.StartTime = details.StartTime.UTC()
	updated, err := s.repos.Events.UpdateDetails(ctx, in.EventID, details, s.clock.Now())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, updated.OrganizerID)
	return updated, nil
}

// SetStatus moves an event forward through upcoming, ongoing and completed.
// Nothing advances status automatically.
func (s *EventService) SetStatus(ctx context.Context, in SetStatusInput) (*models.Event, error) {
	if in.EventID == "" {
		return nil, models.MissingField("eventId")
	}
	if in.Status == "" {
		return nil, models.MissingField("status")
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, in.Status)
	}

	event, err := s.repos.Events.FindByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if in.ActorID != "" && event.OrganizerID != in.ActorID {
		return nil, models.ErrForbidden
	}
	if !event.Status.CanTransitionTo(in.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidStatusTransition, event.Status, in.Status)
	}

	updated, err := s.repos.Events.UpdateStatus(ctx, in.EventID, in.Status, s.clock.Now())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, event.OrganizerID)
	s.logger.Info("event status changed", "event_id", in.EventID, "from", event.Status, "to", in.Status)
	return updated, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	if id == "" {
		return nil, models.MissingField("eventId")
	}
	return s.repos.Events.FindByID(ctx, id)
}

func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	events, err := s.repos.Events.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *EventService) authorize(ctx context.Context, eventID, actorID string) error {
	event, err := s.repos.Events.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if actorID != "" && event.OrganizerID != actorID {
		return models.ErrForbidden
	}
	return nil
}

func (s *EventService) invalidate(ctx context.Context, organizerID string) {
	if err := s.cache.Invalidate(ctx, organizerID); err != nil {
		s.logger.Warn("invalidate metrics cache", "organizer_id", organizerID, "error", err)
	}
}

func validateDetails(d models.EventDetails) error {
	switch {
	case d.Name == "":
		return models.MissingField("name")
	case d.Description == "":
		return models.MissingField("description")
	case d.Location == "":
		return models.MissingField("location")
	case d.ImageURL == "":
		return models.MissingField("imageUrl")
	case d.StartTime.IsZero():
		return models.MissingField("startTime")
	}
	return nil
}
