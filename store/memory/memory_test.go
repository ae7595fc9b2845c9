package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/nft-ticketing-go/models"
)

func TestEventRepo_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, org := range []string{"org1", "org2", "org1"} {
		require.NoError(t, st.Events().Create(ctx, &models.Event{
			Name:        string(rune('A' + i)),
			OrganizerID: org,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}))
	}

	all, err := st.Events().List(ctx, models.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{all[0].Name, all[1].Name, all[2].Name})

	mine, err := st.Events().List(ctx, models.EventFilter{OrganizerID: "org1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "C", mine[0].Name)
	assert.Equal(t, models.EventUpcoming, mine[0].Status)
}

func TestEventRepo_UnknownAndMalformedIDs(t *testing.T) {
	ctx := context.Background()
	events := New().Events()

	_, err := events.FindByID(ctx, "zzz")
	assert.ErrorIs(t, err, models.ErrEventNotFound)

	_, err = events.FindByID(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, models.ErrEventNotFound)

	assert.ErrorIs(t, events.IncrementTicketsSold(ctx, primitive.NewObjectID().Hex(), 1), models.ErrEventNotFound)
}

func TestTicketRepo_UniquePair(t *testing.T) {
	ctx := context.Background()
	tickets := New().Tickets()
	eventID := primitive.NewObjectID()

	require.NoError(t, tickets.Insert(ctx, &models.Ticket{EventID: eventID, AttendeeID: "user1", NFTTokenID: "SOL_1_a"}))

	err := tickets.Insert(ctx, &models.Ticket{EventID: eventID, AttendeeID: "user1", NFTTokenID: "SOL_1_b"})
	assert.ErrorIs(t, err, models.ErrDuplicateTicket)

	err = tickets.Insert(ctx, &models.Ticket{EventID: eventID, AttendeeID: "user2", NFTTokenID: "SOL_1_a"})
	assert.ErrorIs(t, err, models.ErrDuplicateToken)

	ok, err := tickets.ExistsForAttendee(ctx, eventID.Hex(), "user1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tickets.ExistsForAttendee(ctx, eventID.Hex(), "user2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTicketRepo_ListAndCount(t *testing.T) {
	ctx := context.Background()
	tickets := New().Tickets()
	eventID := primitive.NewObjectID()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	statuses := []models.TicketStatus{models.TicketConfirmed, models.TicketPending, models.TicketUsed}
	for i, st := range statuses {
		require.NoError(t, tickets.Insert(ctx, &models.Ticket{
			EventID:      eventID,
			AttendeeID:   string(rune('a' + i)),
			Status:       st,
			PurchaseDate: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := tickets.ListByEvent(ctx, eventID.Hex())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].AttendeeID)
	assert.Equal(t, "a", list[2].AttendeeID)

	sold, err := tickets.CountSold(ctx, eventID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, sold)

	none, err := tickets.ListByEvent(ctx, "bad-id")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUserRepo_FindOrCreateKeepsExisting(t *testing.T) {
	ctx := context.Background()
	users := New().Users()
	now := time.Now()

	users.Put(models.User{DID: "did:org", Role: models.RoleOrganizer, Name: "Org"})

	got, err := users.FindOrCreate(ctx, "did:org", "Renamed", now)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganizer, got.Role)
	assert.Equal(t, "Org", got.Name)

	created, err := users.FindOrCreate(ctx, "did:new", "New", now)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAttendee, created.Role)

	_, err = users.FindByDID(ctx, "did:none")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
