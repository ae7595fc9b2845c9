package services

import (
	"context"
	"time"

	"github.com/phillip/nft-ticketing-go/models"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	UpdateDetails(ctx context.Context, id string, details models.EventDetails, updatedAt time.Time) (*models.Event, error)
	UpdateStatus(ctx context.Context, id string, status models.EventStatus, updatedAt time.Time) (*models.Event, error)
	// List returns events newest first.
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	IncrementTicketsSold(ctx context.Context, id string, delta int) error
	SetTicketsSold(ctx context.Context, id string, sold int) error
}

type TicketRepository interface {
	// Insert returns models.ErrDuplicateTicket when the (event, attendee)
	// pair already holds a ticket.
	Insert(ctx context.Context, ticket *models.Ticket) error
	ExistsForAttendee(ctx context.Context, eventID, attendeeID string) (bool, error)
	// ListByEvent returns tickets newest purchase first.
	ListByEvent(ctx context.Context, eventID string) ([]models.Ticket, error)
	ListByEvents(ctx context.Context, eventIDs []string) ([]models.Ticket, error)
	CountSold(ctx context.Context, eventID string) (int, error)
}

type UserRepository interface {
	// FindOrCreate inserts the user when absent and never modifies an
	// existing record.
	FindOrCreate(ctx context.Context, did, name string, now time.Time) (*models.User, error)
	FindByDID(ctx context.Context, did string) (*models.User, error)
	SetEmail(ctx context.Context, did, email string) error
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// Atomic reports whether writes made inside fn are rolled back when fn fails.
	Atomic() bool
}

// Repositories bundles the stores shared by every service.
type Repositories struct {
	Events  EventRepository
	Tickets TicketRepository
	Users   UserRepository
	Tx      Transactor
}

type MetricsCache interface {
	Get(ctx context.Context, organizerID string) (*models.DashboardMetrics, bool, error)
	Set(ctx context.Context, organizerID string, metrics *models.DashboardMetrics) error
	Invalidate(ctx context.Context, organizerID string) error
}

type Broadcaster interface {
	TicketPurchased(ctx context.Context, msg models.TicketPurchased) error
}

type Mailer interface {
	// SendTicketConfirmation mails to, a verified address of the attendee.
	SendTicketConfirmation(ctx context.Context, to string, ticket *models.Ticket, event *models.Event) error
}

// Recorder receives purchase outcomes for monitoring.
type Recorder interface {
	ObservePurchase(outcome string, elapsed time.Duration)
	ObserveEventCreated()
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*models.DashboardMetrics, bool, error) {
	return nil, false, nil
}
func (noopCache) Set(context.Context, string, *models.DashboardMetrics) error { return nil }
func (noopCache) Invalidate(context.Context, string) error                   { return nil }

type noopBroadcaster struct{}

func (noopBroadcaster) TicketPurchased(context.Context, models.TicketPurchased) error { return nil }

type noopMailer struct{}

func (noopMailer) SendTicketConfirmation(context.Context, string, *models.Ticket, *models.Event) error {
	return nil
}

type noopRecorder struct{}

func (noopRecorder) ObservePurchase(string, time.Duration) {}
func (noopRecorder) ObserveEventCreated()                  {}
