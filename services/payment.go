package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phillip/nft-ticketing-go/models"
)

type PaymentRequest struct {
	EventID       string
	AttendeeID    string
	Amount        decimal.Decimal
	Currency      string
	Method        string
	WalletAddress string
}

// PaymentGateway charges an attendee for a ticket. A failed charge returns
// models.ErrPaymentFailed and leaves no state behind.
type PaymentGateway interface {
	Charge(ctx context.Context, req PaymentRequest) error
}

// SimulatedGateway approves charges at random. No funds move.
type SimulatedGateway struct {
	mu          sync.Mutex
	rng         *rand.Rand
	failureRate float64
}

// NewSimulatedGateway fails a charge with probability failureRate. A zero
// seed draws from a time based source; any other seed makes the sequence of
// outcomes reproducible.
func NewSimulatedGateway(failureRate float64, seed int64) *SimulatedGateway {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedGateway{
		rng:         rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)),
		failureRate: failureRate,
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req PaymentRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	draw := g.rng.Float64()
	g.mu.Unlock()

	if draw < g.failureRate {
		return models.ErrPaymentFailed
	}
	return nil
}
