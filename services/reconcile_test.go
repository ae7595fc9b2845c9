package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip/nft-ticketing-go/models"
	"github.com/phillip/nft-ticketing-go/store/memory"
)

func TestReconciler_RepairsDrift(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	drifted := seedEvent(t, st, "org1", models.EventUpcoming)
	clean := seedEvent(t, st, "org2", models.EventUpcoming)
	require.NoError(t, st.Events().SetTicketsSold(ctx, drifted.ID.Hex(), 9))

	cache := newSpyCache()
	r := NewReconciler(newRepos(st), cache)

	n, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"org1"}, cache.invalidated)

	got, _ := st.Events().FindByID(ctx, drifted.ID.Hex())
	assert.Zero(t, got.TicketsSold)
	got, _ = st.Events().FindByID(ctx, clean.ID.Hex())
	assert.Zero(t, got.TicketsSold)

	n, err = r.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
