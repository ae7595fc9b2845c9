package broadcast

import (
	"context"
	"errors"

	"github.com/phillip/nft-ticketing-go/models"
)

type Target interface {
	TicketPurchased(ctx context.Context, msg models.TicketPurchased) error
}

// Fanout delivers to every target and joins their errors. One failing target
// does not stop the others.
type Fanout []Target

func (f Fanout) TicketPurchased(ctx context.Context, msg models.TicketPurchased) error {
	var errs []error
	for _, t := range f {
		if err := t.TicketPurchased(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
