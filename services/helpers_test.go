package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phillip/nft-ticketing-go/clock"
	"github.com/phillip/nft-ticketing-go/models"
	"github.com/phillip/nft-ticketing-go/store/memory"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newRepos(st *memory.Store) Repositories {
	return Repositories{
		Events:  st.Events(),
		Tickets: st.Tickets(),
		Users:   st.Users(),
		Tx:      st.Tx(),
	}
}

func seedEvent(t *testing.T, st *memory.Store, organizerID string, status models.EventStatus) *models.Event {
	t.Helper()
	ev := &models.Event{
		Name:        "Meetup",
		Description: "Monthly meetup",
		Location:    "Nairobi",
		ImageURL:    "https://img.example/meetup.png",
		StartTime:   testNow.Add(30 * 24 * time.Hour),
		OrganizerID: organizerID,
		Status:      status,
		CreatedAt:   testNow,
	}
	require.NoError(t, st.Events().Create(context.Background(), ev))
	return ev
}

func seedUser(st *memory.Store, did, name string) {
	st.Users().Put(models.User{DID: did, Role: models.RoleAttendee, Name: name, CreatedAt: testNow})
}

// approveAll is a gateway that never fails.
type approveAll struct{ calls int }

func (g *approveAll) Charge(context.Context, PaymentRequest) error {
	g.calls++
	return nil
}

type fixedMinter struct{ n int }

func (m *fixedMinter) Mint(_ context.Context, req MintRequest) (*Mint, error) {
	m.n++
	token := "SOL_1778414400000_tok" + string(rune('0'+m.n))
	return &Mint{TokenID: token, TransactionHash: "simulated_1778414400000", Metadata: ticketMetadata(req)}, nil
}

// racingTickets hides existing tickets from the pre-check, the way a
// concurrent request sees the store before the other insert lands.
type racingTickets struct {
	TicketRepository
}

func (racingTickets) ExistsForAttendee(context.Context, string, string) (bool, error) {
	return false, nil
}

type failingCounter struct {
	EventRepository
}

func (failingCounter) IncrementTicketsSold(context.Context, string, int) error {
	return errors.New("connection reset")
}

// rollbackTx pretends to be transactional; it records whether fn failed.
type rollbackTx struct{ aborted bool }

func (tx *rollbackTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	tx.aborted = err != nil
	return err
}

func (*rollbackTx) Atomic() bool { return true }

type spyCache struct {
	mu          sync.Mutex
	stored      map[string]*models.DashboardMetrics
	invalidated []string
	gets        int
}

func newSpyCache() *spyCache {
	return &spyCache{stored: map[string]*models.DashboardMetrics{}}
}

func (c *spyCache) Get(_ context.Context, id string) (*models.DashboardMetrics, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	m, ok := c.stored[id]
	return m, ok, nil
}

func (c *spyCache) Set(_ context.Context, id string, m *models.DashboardMetrics) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored[id] = m
	return nil
}

func (c *spyCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stored, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type spyBroadcaster struct {
	mu      sync.Mutex
	msgs    []models.TicketPurchased
	ctxErrs []error
	err     error
}

func (b *spyBroadcaster) TicketPurchased(ctx context.Context, msg models.TicketPurchased) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
	b.ctxErrs = append(b.ctxErrs, ctx.Err())
	return b.err
}

type sentMail struct {
	to       string
	ticketID string
}

type spyMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *spyMailer) SendTicketConfirmation(_ context.Context, to string, ticket *models.Ticket, _ *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, ticketID: ticket.ID.Hex()})
	return nil
}

type spyRecorder struct {
	outcomes []string
	created  int
}

func (r *spyRecorder) ObservePurchase(outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *spyRecorder) ObserveEventCreated() { r.created++ }

func fixedClock() clock.Clock { return clock.NewFixed(testNow) }
