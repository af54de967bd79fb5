package services

import (
	"context"
	"testing"
	"time"

	"github.com/backsoul/partygames/pkg/engine"
	"github.com/backsoul/partygames/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStateSaveAndLoad(t *testing.T) {
	client, _ := newTestRedis(t)
	ctx := context.Background()
	gs := NewGameStateService(client, "node-a", time.Second)

	_, err := gs.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrGameNotFound)

	m, err := engine.NewMachine("g1", models.VariantDeduction, engine.DefaultSettings(models.VariantDeduction), engine.Options{})
	require.NoError(t, err)
	_, err = m.Join(true, "Ana")
	require.NoError(t, err)
	require.NoError(t, m.Start(true))

	require.NoError(t, gs.Save(ctx, m.Snapshot()))

	state, err := gs.Load(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseIntro, state.Phase)
	assert.Equal(t, models.VariantDeduction, state.Variant)
	require.Len(t, state.Registry.Participants, 1)
	assert.Equal(t, "Ana", state.Registry.Participants[0].Name)

	ids, err := gs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, ids)

	require.NoError(t, gs.Delete(ctx, "g1"))
	_, err = gs.Load(ctx, "g1")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestGameStateLease(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()
	a := NewGameStateService(client, "node-a", time.Second)
	b := NewGameStateService(client, "node-b", time.Second)

	ok, err := a.Acquire(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok, "lease is held by node-a")

	ok, err = a.Refresh(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Refresh(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Second)
	ok, err = b.Acquire(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok, "expired lease can be taken over")

	require.NoError(t, a.Release(ctx, "g1"))
	holder, err := client.AuthorityHolder(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "node-b", holder, "release by a non-holder is a no-op")

	require.NoError(t, b.Release(ctx, "g1"))
	ok, err = a.Acquire(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok)
}
