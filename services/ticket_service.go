package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/nft-ticketing-go/clock"
	"github.com/phillip/nft-ticketing-go/models"
)

const PurchaseSuccessMessage = "Ticket purchased successfully! Your NFT ticket has been minted on Solana."

// Purchase outcomes reported to the Recorder.
const (
	OutcomeConfirmed     = "confirmed"
	OutcomeDuplicate     = "duplicate"
	OutcomePaymentFailed = "payment_failed"
	OutcomeRejected      = "rejected"
	OutcomeError         = "error"
)

type PurchaseInput struct {
	EventID       string
	AttendeeID    string
	TicketType    string
	Price         float64
	PaymentMethod string
	WalletAddress string
}

type PurchaseResult struct {
	Ticket  *models.Ticket
	Message string
}

type TicketService struct {
	repos       Repositories
	payments    PaymentGateway
	minter      TokenMinter
	clock       clock.Clock
	cache       MetricsCache
	broadcaster Broadcaster
	mailer      Mailer
	recorder    Recorder
	logger      *slog.Logger

	notifyTimeout time.Duration
	pending       sync.WaitGroup
}

const defaultNotifyTimeout = 15 * time.Second

type TicketOption func(*TicketService)

func WithMetricsCache(c MetricsCache) TicketOption {
	return func(s *TicketService) { s.cache = c }
}

func WithBroadcaster(b Broadcaster) TicketOption {
	return func(s *TicketService) { s.broadcaster = b }
}

func WithMailer(m Mailer) TicketOption {
	return func(s *TicketService) { s.mailer = m }
}

func WithRecorder(r Recorder) TicketOption {
	return func(s *TicketService) { s.recorder = r }
}

func WithLogger(l *slog.Logger) TicketOption {
	return func(s *TicketService) { s.logger = l }
}

// WithNotifyTimeout bounds the broadcast and confirmation mail sent after a
// purchase commits.
func WithNotifyTimeout(d time.Duration) TicketOption {
	return func(s *TicketService) { s.notifyTimeout = d }
}

func NewTicketService(repos Repositories, payments PaymentGateway, minter TokenMinter, clk clock.Clock, opts ...TicketOption) *TicketService {
	s := &TicketService{
		repos:       repos,
		payments:    payments,
		minter:      minter,
		clock:       clk,
		cache:       noopCache{},
		broadcaster: noopBroadcaster{},
		mailer:      noopMailer{},
		recorder:    noopRecorder{},
		logger:      slog.Default(),

		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until the notifications of earlier purchases have finished.
func (s *TicketService) Wait() {
	s.pending.Wait()
}

// Purchase issues a confirmed ticket for the attendee. The (event, attendee)
// unique index is the authoritative duplicate guard; the lookup before
// payment only avoids charging for a ticket that already exists.
func (s *TicketService) Purchase(ctx context.Context, in PurchaseInput) (*PurchaseResult, error) {
	started := time.Now()

	res, err := s.purchase(ctx, in)

	s.recorder.ObservePurchase(purchaseOutcome(err), time.Since(started))
	return res, err
}

func (s *TicketService) purchase(ctx context.Context, in PurchaseInput) (*PurchaseResult, error) {
	if err := validatePurchase(in); err != nil {
		return nil, err
	}
	ticketType, ok := models.ParseTicketType(in.TicketType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidTicketType, in.TicketType)
	}

	event, err := s.repos.Events.FindByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if event.Status == models.EventCompleted {
		return nil, models.ErrEventClosed
	}

	eventID := event.ID.Hex()

	user, err := s.repos.Users.FindByDID(ctx, in.AttendeeID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repos.Tickets.ExistsForAttendee(ctx, eventID, user.DID)
	if err != nil {
		return nil, fmt.Errorf("check existing ticket: %w", err)
	}
	if exists {
		return nil, models.ErrDuplicateTicket
	}

	method := in.PaymentMethod
	if method == "" {
		method = models.DefaultPaymentMethod
	}

	err = s.payments.Charge(ctx, PaymentRequest{
		EventID:       eventID,
		AttendeeID:    user.DID,
		Amount:        decimal.NewFromFloat(in.Price),
		Currency:      priceCurrency,
		Method:        method,
		WalletAddress: in.WalletAddress,
	})
	if err != nil {
		return nil, err
	}

	mint, err := s.minter.Mint(ctx, MintRequest{Event: event, TicketType: ticketType, Price: in.Price})
	if err != nil {
		return nil, fmt.Errorf("mint ticket token: %w", err)
	}

	now := s.clock.Now()
	ticket := &models.Ticket{
		ID:              primitive.NewObjectID(),
		EventID:         event.ID,
		AttendeeID:      user.DID,
		AttendeeName:    user.Name,
		AttendeeEmail:   user.Name + "@example.com",
		TicketType:      ticketType,
		Price:           in.Price,
		Status:          models.TicketConfirmed,
		PurchaseDate:    now,
		NFTTokenID:      mint.TokenID,
		NFTMetadata:     &mint.Metadata,
		QRCode:          qrPayload(eventID, user.DID, mint.TokenID),
		PaymentMethod:   method,
		WalletAddress:   in.WalletAddress,
		TransactionHash: mint.TransactionHash,
		CreatedAt:       now,
	}

	err = s.repos.Tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Tickets.Insert(txCtx, ticket); err != nil {
			return err
		}
		if err := s.repos.Events.IncrementTicketsSold(txCtx, eventID, 1); err != nil {
			if s.repos.Tx.Atomic() {
				return fmt.Errorf("increment tickets sold: %w", err)
			}
			s.logger.Warn("tickets_sold not incremented, counter drifts until reconciled",
				"event_id", eventID, "ticket_id", ticket.ID.Hex(), "error", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateTicket) {
			return nil, models.ErrDuplicateTicket
		}
		return nil, fmt.Errorf("save ticket: %w", err)
	}

	s.afterPurchase(ctx, ticket, event, user)

	return &PurchaseResult{Ticket: ticket, Message: PurchaseSuccessMessage}, nil
}

// afterPurchase runs the side effects that must not fail a committed purchase.
// The cache is cleared before the response so the next dashboard read is
// fresh; broadcast and mail run in the background, detached from the request.
func (s *TicketService) afterPurchase(ctx context.Context, ticket *models.Ticket, event *models.Event, user *models.User) {
	if err := s.cache.Invalidate(ctx, event.OrganizerID); err != nil {
		s.logger.Warn("invalidate metrics cache", "organizer_id", event.OrganizerID, "error", err)
	}

	msg := models.TicketPurchased{
		TicketID:     ticket.ID.Hex(),
		EventID:      event.ID.Hex(),
		EventName:    event.Name,
		OrganizerID:  event.OrganizerID,
		AttendeeID:   ticket.AttendeeID,
		TicketType:   ticket.TicketType,
		Price:        ticket.Price,
		NFTTokenID:   ticket.NFTTokenID,
		PurchaseDate: ticket.PurchaseDate,
	}
	s.logger.Info("ticket purchased",
		"ticket_id", msg.TicketID, "event_id", msg.EventID,
		"attendee_id", ticket.AttendeeID, "ticket_type", ticket.TicketType)

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		s.notify(notifyCtx, msg, ticket, event, user.Email)
	}()
}

func (s *TicketService) notify(ctx context.Context, msg models.TicketPurchased, ticket *models.Ticket, event *models.Event, email string) {
	if err := s.broadcaster.TicketPurchased(ctx, msg); err != nil {
		s.logger.Warn("broadcast ticket purchase", "ticket_id", msg.TicketID, "error", err)
	}

	if email == "" {
		s.logger.Debug("no verified email, confirmation not sent", "ticket_id", msg.TicketID)
		return
	}
	if err := s.mailer.SendTicketConfirmation(ctx, email, ticket, event); err != nil {
		s.logger.Warn("send ticket confirmation", "ticket_id", msg.TicketID, "error", err)
	}
}

// ListAttendees returns the tickets of an event, newest purchase first.
func (s *TicketService) ListAttendees(ctx context.Context, eventID string) ([]models.Ticket, error) {
	if eventID == "" {
		return nil, models.MissingField("eventId")
	}
	tickets, err := s.repos.Tickets.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return tickets, nil
}

func validatePurchase(in PurchaseInput) error {
	switch {
	case in.EventID == "":
		return models.MissingField("eventId")
	case in.AttendeeID == "":
		return models.MissingField("attendeeId")
	case in.TicketType == "":
		return models.MissingField("ticketType")
	case in.Price == 0:
		return models.MissingField("price")
	case in.Price < 0:
		return models.ErrInvalidPrice
	}
	return nil
}

func purchaseOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeConfirmed
	case errors.Is(err, models.ErrDuplicateTicket):
		return OutcomeDuplicate
	case errors.Is(err, models.ErrPaymentFailed):
		return OutcomePaymentFailed
	case errors.Is(err, models.ErrMissingField),
		errors.Is(err, models.ErrInvalidTicketType),
		errors.Is(err, models.ErrInvalidPrice),
		errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrEventClosed):
		return OutcomeRejected
	}
	return OutcomeError
}
