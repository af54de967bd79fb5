package engine

import (
	"testing"

	"github.com/backsoul/partygames/pkg/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryStableIndices(t *testing.T) {
	r := NewRegistry()
	a := r.Join("ana")
	b := r.Join("beto")
	c := r.Join("caro")
	assert.Equal(t, []int{0, 1, 2}, []int{a.Index, b.Index, c.Index})

	assert.True(t, r.Leave(b.Index))
	assert.False(t, r.Leave(b.Index))
	assert.Equal(t, []int{0, 2}, r.Indices())

	d := r.Join("dani")
	assert.Equal(t, 3, d.Index, "indices are never reused")
	assert.Equal(t, 3, r.Count())

	host, ok := r.Host()
	require.True(t, ok)
	assert.Equal(t, 0, host)

	r.Leave(0)
	host, _ = r.Host()
	assert.Equal(t, 2, host)
}

func TestRegistryRoundAndScoreReset(t *testing.T) {
	r := NewRegistry()
	p := r.Join("ana")
	r.Update(p.Index, func(p *models.Participant) {
		p.Score = 40
		p.HasSubmitted = true
		p.ChosenAnswer = 2
	})

	r.ResetRound()
	got, _ := r.Get(p.Index)
	assert.False(t, got.HasSubmitted)
	assert.Equal(t, -1, got.ChosenAnswer)
	assert.Equal(t, 40, got.Score)

	r.ResetScores()
	got, _ = r.Get(p.Index)
	assert.Zero(t, got.Score)

	_, ok := r.Get(99)
	assert.False(t, ok)
	assert.False(t, r.Update(99, func(*models.Participant) {}))
}

func TestRegistrySnapshotRestore(t *testing.T) {
	r := NewRegistry()
	r.Join("ana")
	r.Join("beto")
	r.Leave(0)

	snap := r.Snapshot()
	other := NewRegistry()
	other.Restore(snap)

	if diff := cmp.Diff(snap, other.Snapshot()); diff != "" {
		t.Errorf("registry mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, other.Join("caro").Index)
}
