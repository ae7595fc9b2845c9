package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lucsky/cuid"

	"github.com/phillip/nft-ticketing-go/clock"
	"github.com/phillip/nft-ticketing-go/models"
)

const (
	tokenPrefix      = "SOL_"
	txHashPrefix     = "simulated_"
	placeholderImage = "https://via.placeholder.com/400x300"
	priceCurrency    = "SOL"
	isoMillisLayout  = "2006-01-02T15:04:05.000Z07:00"
)

type MintRequest struct {
	Event      *models.Event
	TicketType models.TicketType
	Price      float64
}

type Mint struct {
	TokenID         string
	TransactionHash string
	Metadata        models.NFTMetadata
}

// TokenMinter issues the NFT that represents a ticket.
type TokenMinter interface {
	Mint(ctx context.Context, req MintRequest) (*Mint, error)
}

// SimulatedMinter fabricates token ids and transaction hashes locally. Nothing
// is submitted to a chain.
type SimulatedMinter struct {
	clock  clock.Clock
	suffix func() string
}

func NewSimulatedMinter(clk clock.Clock) *SimulatedMinter {
	return &SimulatedMinter{clock: clk, suffix: cuid.Slug}
}

func (m *SimulatedMinter) Mint(ctx context.Context, req MintRequest) (*Mint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stamp := strconv.FormatInt(m.clock.Now().UnixMilli(), 10)
	return &Mint{
		TokenID:         tokenPrefix + stamp + "_" + m.suffix(),
		TransactionHash: txHashPrefix + stamp,
		Metadata:        ticketMetadata(req),
	}, nil
}

// ticketMetadata snapshots the event facts at purchase time.
func ticketMetadata(req MintRequest) models.NFTMetadata {
	ev := req.Event
	image := ev.ImageURL
	if image == "" {
		image = placeholderImage
	}

	return models.NFTMetadata{
		Name:        ev.Name + " - Ticket",
		Description: "Access ticket for " + ev.Name,
		Image:       image,
		Attributes: []models.NFTAttribute{
			{TraitType: "Event", Value: ev.Name},
			{TraitType: "Location", Value: ev.Location},
			{TraitType: "Date", Value: ev.StartTime.UTC().Format(isoMillisLayout)},
			{TraitType: "Ticket Type", Value: string(req.TicketType)},
			{TraitType: "Price", Value: formatPrice(req.Price)},
		},
	}
}

func formatPrice(price float64) string {
	return fmt.Sprintf("%s %s", strconv.FormatFloat(price, 'f', -1, 64), priceCurrency)
}

// qrPayload is what the venue scanner reads.
func qrPayload(eventID, attendeeID, tokenID string) string {
	return eventID + "-" + attendeeID + "-" + tokenID
}
