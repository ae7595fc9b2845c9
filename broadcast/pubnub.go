package broadcast

import (
	"context"
	"errors"
	"fmt"

	pubnub "github.com/pubnub/go/v7"

	"github.com/phillip/nft-ticketing-go/models"
)

type publishFunc func(channel string, message map[string]any) error

// PubNub pushes each purchase to the event channel and the organizer channel.
type PubNub struct {
	publish publishFunc
}

func NewPubNub(publishKey, subscribeKey, userID string) *PubNub {
	cfg := pubnub.NewConfigWithUserId(pubnub.UserId(userID))
	cfg.PublishKey = publishKey
	cfg.SubscribeKey = subscribeKey
	pn := pubnub.NewPubNub(cfg)

	return &PubNub{
		publish: func(channel string, message map[string]any) error {
			_, _, err := pn.Publish().
				Channel(channel).
				Message(message).
				Execute()
			return err
		},
	}
}

func EventChannel(eventID string) string {
	return "event-" + eventID
}

func OrganizerChannel(organizerID string) string {
	return "organizer-" + organizerID
}

func (p *PubNub) TicketPurchased(ctx context.Context, msg models.TicketPurchased) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload := map[string]any{
		"type":        "ticket_purchased",
		"ticketId":    msg.TicketID,
		"eventId":     msg.EventID,
		"eventName":   msg.EventName,
		"ticketType":  msg.TicketType,
		"price":       msg.Price,
		"nftTokenId":  msg.NFTTokenID,
		"purchasedAt": msg.PurchaseDate,
	}

	var errs []error
	for _, ch := range []string{EventChannel(msg.EventID), OrganizerChannel(msg.OrganizerID)} {
		if err := p.publish(ch, payload); err != nil {
			errs = append(errs, fmt.Errorf("publish to %s: %w", ch, err))
		}
	}
	return errors.Join(errs...)
}
