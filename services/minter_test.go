package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip/nft-ticketing-go/models"
)

func TestSimulatedMinter(t *testing.T) {
	m := NewSimulatedMinter(fixedClock())
	m.suffix = func() string { return "k3x9q" }

	ev := &models.Event{Name: "Gig", Location: "Online", StartTime: testNow}
	mint, err := m.Mint(context.Background(), MintRequest{Event: ev, TicketType: models.TicketEarlyBird, Price: 0.03})
	require.NoError(t, err)

	assert.Equal(t, "SOL_1778414400000_k3x9q", mint.TokenID)
	assert.Equal(t, "simulated_1778414400000", mint.TransactionHash)
	assert.Equal(t, placeholderImage, mint.Metadata.Image)
	assert.Equal(t, "0.03 SOL", mint.Metadata.Attributes[4].Value)
	assert.Equal(t, "2026-05-10T12:00:00.000Z", mint.Metadata.Attributes[2].Value)
}

func TestSimulatedMinterHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulatedMinter(fixedClock()).Mint(ctx, MintRequest{Event: &models.Event{}})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatedGateway(t *testing.T) {
	ctx := context.Background()
	req := PaymentRequest{EventID: "e", AttendeeID: "a"}

	never := NewSimulatedGateway(0, 42)
	always := NewSimulatedGateway(1, 42)
	for i := 0; i < 50; i++ {
		assert.NoError(t, never.Charge(ctx, req))
		assert.ErrorIs(t, always.Charge(ctx, req), models.ErrPaymentFailed)
	}

	a := NewSimulatedGateway(0.5, 7)
	b := NewSimulatedGateway(0.5, 7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Charge(ctx, req), b.Charge(ctx, req), "same seed, same outcomes")
	}
}
