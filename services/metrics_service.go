package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/phillip/nft-ticketing-go/models"
)

type MetricsService struct {
	repos  Repositories
	cache  MetricsCache
	logger *slog.Logger
}

func NewMetricsService(repos Repositories, cache MetricsCache) *MetricsService {
	if cache == nil {
		cache = noopCache{}
	}
	return &MetricsService{repos: repos, cache: cache, logger: slog.Default()}
}

// ForOrganizer summarizes the organizer's events and the tickets sold for
// them. Results are cached until the next purchase on one of the events.
func (s *MetricsService) ForOrganizer(ctx context.Context, organizerID string) (*models.DashboardMetrics, error) {
	if organizerID == "" {
		return nil, models.MissingField("organizerId")
	}

	cached, ok, err := s.cache.Get(ctx, organizerID)
	if err != nil {
		s.logger.Warn("read metrics cache", "organizer_id", organizerID, "error", err)
	}
	if ok {
		return cached, nil
	}

	events, err := s.repos.Events.List(ctx, models.EventFilter{OrganizerID: organizerID})
	if err != nil {
		return nil, fmt.Errorf("list organizer events: %w", err)
	}

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID.Hex())
	}

	var tickets []models.Ticket
	if len(ids) > 0 {
		tickets, err = s.repos.Tickets.ListByEvents(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("list organizer tickets: %w", err)
		}
	}

	metrics := summarize(events, tickets)

	if err := s.cache.Set(ctx, organizerID, metrics); err != nil {
		s.logger.Warn("write metrics cache", "organizer_id", organizerID, "error", err)
	}
	return metrics, nil
}

func summarize(events []models.Event, tickets []models.Ticket) *models.DashboardMetrics {
	m := &models.DashboardMetrics{
		EventsOrganized: len(events),
		TicketsIssued:   len(tickets),
	}
	for _, ev := range events {
		if ev.Status.Active() {
			m.ActiveEvents++
		}
	}

	revenue := decimal.Zero
	for _, t := range tickets {
		switch {
		case t.Status.Sold():
			m.TicketsSold++
			revenue = revenue.Add(decimal.NewFromFloat(t.Price))
		case t.Status == models.TicketPending:
			m.TicketsPending++
		}
	}
	m.TotalRevenue = revenue.InexactFloat64()
	return m
}
