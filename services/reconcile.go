package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phillip/nft-ticketing-go/models"
)

// Reconciler repairs tickets_sold counters that drifted from the ticket rows,
// e.g. when a purchase inserted its ticket but failed to bump the counter.
type Reconciler struct {
	repos  Repositories
	cache  MetricsCache
	logger *slog.Logger
}

func NewReconciler(repos Repositories, cache MetricsCache) *Reconciler {
	if cache == nil {
		cache = noopCache{}
	}
	return &Reconciler{repos: repos, cache: cache, logger: slog.Default()}
}

// Run recomputes every event's counter and returns how many were rewritten.
// Running it twice in a row rewrites nothing the second time.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	events, err := r.repos.Events.List(ctx, models.EventFilter{})
	if err != nil {
		return 0, fmt.Errorf("list events: %w", err)
	}

	updated := 0
	for _, ev := range events {
		id := ev.ID.Hex()
		sold, err := r.repos.Tickets.CountSold(ctx, id)
		if err != nil {
			return updated, fmt.Errorf("count tickets for %s: %w", id, err)
		}
		if sold == ev.TicketsSold {
			continue
		}

		if err := r.repos.Events.SetTicketsSold(ctx, id, sold); err != nil {
			return updated, fmt.Errorf("set tickets sold for %s: %w", id, err)
		}
		if err := r.cache.Invalidate(ctx, ev.OrganizerID); err != nil {
			r.logger.Warn("invalidate metrics cache", "organizer_id", ev.OrganizerID, "error", err)
		}
		r.logger.Info("tickets_sold reconciled", "event_id", id, "was", ev.TicketsSold, "now", sold)
		updated++
	}
	return updated, nil
}
