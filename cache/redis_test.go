package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip/nft-ticketing-go/models"
)

func TestMetricsCache_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()
	c := NewMetricsCache(db, time.Minute)

	mock.ExpectGet("metrics:organizer:org1").SetVal(`{"eventsOrganized":2,"ticketsSold":3,"totalRevenue":0.15}`)

	m, ok, err := c.Get(context.Background(), "org1")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, m.EventsOrganized)
	assert.Equal(t, 3, m.TicketsSold)
	assert.Equal(t, 0.15, m.TotalRevenue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsCache_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewMetricsCache(db, time.Minute)

	mock.ExpectGet("metrics:organizer:org1").RedisNil()

	m, ok, err := c.Get(context.Background(), "org1")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m)
}

func TestMetricsCache_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewMetricsCache(db, time.Minute)

	mock.ExpectGet("metrics:organizer:org1").SetErr(errors.New("conn refused"))

	_, ok, err := c.Get(context.Background(), "org1")

	assert.Error(t, err)
	assert.False(t, ok)
}

func TestMetricsCache_SetAndInvalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewMetricsCache(db, 30*time.Second)
	ctx := context.Background()

	m := &models.DashboardMetrics{EventsOrganized: 1, ActiveEvents: 1}
	mock.ExpectSet("metrics:organizer:org1",
		[]byte(`{"eventsOrganized":1,"ticketsIssued":0,"ticketsSold":0,"activeEvents":1,"ticketsPending":0,"totalRevenue":0}`),
		30*time.Second).SetVal("OK")
	mock.ExpectDel("metrics:organizer:org1").SetVal(1)

	require.NoError(t, c.Set(ctx, "org1", m))
	require.NoError(t, c.Invalidate(ctx, "org1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	db, mock := redismock.NewClientMock()

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, HealthCheck(context.Background(), db))

	mock.ExpectPing().SetErr(errors.New("down"))
	assert.Error(t, HealthCheck(context.Background(), db))
}
