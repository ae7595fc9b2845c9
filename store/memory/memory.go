// Package memory keeps events, tickets and users in process memory. It backs
// STORE_DRIVER=memory for local runs and the service and controller tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/nft-ticketing-go/models"
)

type pairKey struct {
	eventID    primitive.ObjectID
	attendeeID string
}

type Store struct {
	mu      sync.RWMutex
	events  map[primitive.ObjectID]models.Event
	tickets map[primitive.ObjectID]models.Ticket
	pairs   map[pairKey]primitive.ObjectID
	tokens  map[string]primitive.ObjectID
	users   map[string]models.User
}

func New() *Store {
	return &Store{
		events:  make(map[primitive.ObjectID]models.Event),
		tickets: make(map[primitive.ObjectID]models.Ticket),
		pairs:   make(map[pairKey]primitive.ObjectID),
		tokens:  make(map[string]primitive.ObjectID),
		users:   make(map[string]models.User),
	}
}

func (s *Store) Events() *EventRepo   { return &EventRepo{s: s} }
func (s *Store) Tickets() *TicketRepo { return &TicketRepo{s: s} }
func (s *Store) Users() *UserRepo     { return &UserRepo{s: s} }
func (s *Store) Tx() Transactor       { return Transactor{} }

// ---------------- EVENTS ----------------

type EventRepo struct{ s *Store }

func (r *EventRepo) Create(ctx context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Status == "" {
		event.Status = models.EventUpcoming
	}
	r.s.events[event.ID] = *event
	return nil
}

func (r *EventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrEventNotFound
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ev, ok := r.s.events[oid]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	return &ev, nil
}

func (r *EventRepo) UpdateDetails(ctx context.Context, id string, d models.EventDetails, updatedAt time.Time) (*models.Event, error) {
	return r.mutate(id, func(ev *models.Event) {
		ev.Name = d.Name
		ev.Description = d.Description
		ev.Location = d.Location
		ev.ImageURL = d.ImageURL
		ev.StartTime = d.StartTime
		ev.UpdatedAt = updatedAt
	})
}

func (r *EventRepo) UpdateStatus(ctx context.Context, id string, status models.EventStatus, updatedAt time.Time) (*models.Event, error) {
	return r.mutate(id, func(ev *models.Event) {
		ev.Status = status
		ev.UpdatedAt = updatedAt
	})
}

func (r *EventRepo) IncrementTicketsSold(ctx context.Context, id string, delta int) error {
	_, err := r.mutate(id, func(ev *models.Event) { ev.TicketsSold += delta })
	return err
}

func (r *EventRepo) SetTicketsSold(ctx context.Context, id string, sold int) error {
	_, err := r.mutate(id, func(ev *models.Event) { ev.TicketsSold = sold })
	return err
}

func (r *EventRepo) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	events := []models.Event{}
	for _, ev := range r.s.events {
		if filter.OrganizerID != "" && ev.OrganizerID != filter.OrganizerID {
			continue
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].ID.Hex() > events[j].ID.Hex()
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func (r *EventRepo) mutate(id string, fn func(*models.Event)) (*models.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrEventNotFound
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev, ok := r.s.events[oid]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	fn(&ev)
	r.s.events[oid] = ev
	return &ev, nil
}

// ---------------- TICKETS ----------------

type TicketRepo struct{ s *Store }

func (r *TicketRepo) Insert(ctx context.Context, ticket *models.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pairKey{eventID: ticket.EventID, attendeeID: ticket.AttendeeID}
	if _, taken := r.s.pairs[key]; taken {
		return models.ErrDuplicateTicket
	}
	if ticket.NFTTokenID != "" {
		if _, taken := r.s.tokens[ticket.NFTTokenID]; taken {
			return models.ErrDuplicateToken
		}
	}

	if ticket.ID.IsZero() {
		ticket.ID = primitive.NewObjectID()
	}
	r.s.tickets[ticket.ID] = *ticket
	r.s.pairs[key] = ticket.ID
	if ticket.NFTTokenID != "" {
		r.s.tokens[ticket.NFTTokenID] = ticket.ID
	}
	return nil
}

func (r *TicketRepo) ExistsForAttendee(ctx context.Context, eventID, attendeeID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return false, nil
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.pairs[pairKey{eventID: oid, attendeeID: attendeeID}]
	return ok, nil
}

func (r *TicketRepo) ListByEvent(ctx context.Context, eventID string) ([]models.Ticket, error) {
	return r.ListByEvents(ctx, []string{eventID})
}

func (r *TicketRepo) ListByEvents(ctx context.Context, eventIDs []string) ([]models.Ticket, error) {
	wanted := make(map[primitive.ObjectID]bool, len(eventIDs))
	for _, id := range eventIDs {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			wanted[oid] = true
		}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tickets := []models.Ticket{}
	for _, t := range r.s.tickets {
		if wanted[t.EventID] {
			tickets = append(tickets, t)
		}
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].PurchaseDate.After(tickets[j].PurchaseDate)
	})
	return tickets, nil
}

func (r *TicketRepo) CountSold(ctx context.Context, eventID string) (int, error) {
	tickets, err := r.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	sold := 0
	for _, t := range tickets {
		if t.Status.Sold() {
			sold++
		}
	}
	return sold, nil
}

// ---------------- USERS ----------------

type UserRepo struct{ s *Store }

func (r *UserRepo) FindOrCreate(ctx context.Context, did, name string, now time.Time) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[did]; ok {
		return &u, nil
	}
	u := models.User{DID: did, Role: models.RoleAttendee, Name: name, CreatedAt: now}
	r.s.users[did] = u
	return &u, nil
}

func (r *UserRepo) FindByDID(ctx context.Context, did string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[did]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepo) SetEmail(ctx context.Context, did, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[did]
	if !ok {
		return models.ErrUserNotFound
	}
	u.Email = email
	r.s.users[did] = u
	return nil
}

// Put stores a user as given, replacing any existing record. Used to seed
// organizers, which the auth callback never creates.
func (r *UserRepo) Put(user models.User) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.DID] = user
}

// Transactor runs fn directly. Writes are not rolled back on failure.
type Transactor struct{}

func (Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (Transactor) Atomic() bool { return false }
