package engine

import (
	"testing"
	"time"

	"github.com/backsoul/partygames/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pick(i int) models.Action {
	return models.Action{Kind: models.ActionPickWord, Choice: i}
}

func allocate(complete bool, alloc map[int]int) models.Action {
	return models.Action{Kind: models.ActionAllocate, Allocations: alloc, Complete: complete}
}

func selectMode(mode models.GameMode) models.Action {
	return models.Action{Kind: models.ActionSelectMode, Mode: mode}
}

func TestNameCraftWordSelection(t *testing.T) {
	h := newHarness(t, models.VariantNameCraft, DefaultSettings(models.VariantNameCraft), "ana", "beto", "caro", "dani")
	m := h.m

	require.Equal(t, models.PhaseModeSelection, h.advance(3*time.Second))
	assert.ErrorIs(t, m.Submit(true, 1, selectMode(models.ModeNormal)), ErrNotPermitted)
	assert.ErrorIs(t, m.Submit(true, 0, selectMode("party")), ErrInvalidOption)
	h.submit(t, 0, selectMode(models.ModeNormal))

	require.Equal(t, models.PhaseWordSelection, m.Phase())
	assert.Equal(t, 1, m.Round())
	assert.Equal(t, 0, m.chooser)
	assert.Equal(t, []string{"adjective1", "adjective2", "", ""}, m.options)

	// un jugador que no es el elegidor se ignora sin error
	h.submit(t, 2, pick(0))
	assert.Equal(t, 0, m.step)
	assert.ErrorIs(t, m.Submit(true, 0, pick(3)), ErrInvalidOption)

	h.submit(t, 0, pick(1))
	assert.Equal(t, 1, m.step)
	assert.Equal(t, 1, m.chooser)

	// el turno expira: la palabra queda vacía
	require.Equal(t, models.PhaseWordSelection, h.advance(30*time.Second))
	assert.Equal(t, 2, m.step)
	assert.Equal(t, 2, m.chooser)
	assert.Equal(t, []string{"noun1", "noun2", "", ""}, m.options)

	h.submit(t, 2, pick(0))
	require.Equal(t, models.PhaseAnswerCreation, m.Phase())
	assert.Equal(t, "adjective2 noun1", m.View().Prompt.Text)
	assert.Equal(t, []string{"adjective2", "", "noun1"}, m.words)
	assert.ErrorIs(t, m.Submit(true, 0, pick(0)), ErrWrongPhase)
}

func playWords(t *testing.T, h *harness) {
	t.Helper()
	for step := 0; step < WordSteps; step++ {
		h.submit(t, h.m.chooser, pick(0))
	}
}

func TestNameCraftNormalScoring(t *testing.T) {
	h := newHarness(t, models.VariantNameCraft, DefaultSettings(models.VariantNameCraft), "ana", "beto", "caro", "dani")
	m := h.m

	h.advance(3 * time.Second)
	h.submit(t, 0, selectMode(models.ModeNormal))
	playWords(t, h)
	require.Equal(t, models.PhaseAnswerCreation, m.Phase())

	h.submit(t, 0, answer("Sir Fluff"))
	h.submit(t, 1, answer("Captain Soft"))
	h.submit(t, 2, answer("Lord Fuzz"))
	assert.ErrorIs(t, m.Submit(true, 3, answer("  ")), ErrEmptyAnswer)
	require.Equal(t, models.PhaseVoting, h.advance(90*time.Second))

	assert.ErrorIs(t, m.Submit(true, 1, allocate(false, map[int]int{0: 400})), ErrOverBudget)
	assert.ErrorIs(t, m.Submit(true, 1, allocate(false, map[int]int{1: 100})), ErrSelfVote)
	assert.ErrorIs(t, m.Submit(true, 1, allocate(false, map[int]int{3: 100})), ErrInvalidTarget, "dani has no answer")
	assert.ErrorIs(t, m.Submit(true, 1, allocate(false, map[int]int{0: -5})), ErrInvalidOption)
	assert.ErrorIs(t, m.Submit(true, 2, allocate(true, map[int]int{0: 100})), ErrIncompleteAllocation)

	h.submit(t, 0, allocate(true, map[int]int{1: 200, 2: 100}))
	h.submit(t, 2, allocate(false, map[int]int{0: 100}))
	p, _ := m.registry.Get(0)
	assert.True(t, p.HasVoted)

	require.Equal(t, models.PhaseResults, h.advance(150*time.Second))

	// beto, caro (parcial) y dani (sin votar) reciben el reparto automático
	assert.Equal(t, 400, h.score(0))
	assert.Equal(t, 450, h.score(1))
	assert.Equal(t, 350, h.score(2))
	assert.Equal(t, 0, h.score(3))

	last := m.View().LastResult
	require.NotNil(t, last)
	assert.Equal(t, "Captain Soft", last.MostPopular)
	assert.InDelta(t, 300.0, last.Average, 1e-9)
	assert.Equal(t, models.ModeNormal, last.Mode)

	// la siguiente ronda no vuelve a elegir modo
	require.Equal(t, models.PhaseWordSelection, h.advance(10*time.Second))
	assert.Equal(t, 2, m.Round())
	assert.Equal(t, 3, m.chooser)
	assert.Empty(t, m.ledger.All(KindAnswer))
}

func TestNameCraftDiscardsRemainder(t *testing.T) {
	h := newHarness(t, models.VariantNameCraft, DefaultSettings(models.VariantNameCraft), "ana", "beto", "caro", "dani", "eli")
	m := h.m

	h.advance(3 * time.Second)
	h.submit(t, 0, selectMode(models.ModeNormal))
	playWords(t, h)

	h.submit(t, 0, answer("uno"))
	h.submit(t, 1, answer("dos"))
	h.submit(t, 2, answer("tres"))
	require.Equal(t, models.PhaseVoting, h.advance(90*time.Second))

	h.submit(t, 0, allocate(true, map[int]int{1: 200, 2: 200}))
	h.submit(t, 1, allocate(true, map[int]int{0: 200, 2: 200}))
	h.submit(t, 2, allocate(true, map[int]int{0: 200, 1: 200}))
	require.Equal(t, models.PhaseResults, h.advance(150*time.Second))

	// dani y eli reparten 400 entre 3 objetivos: 133 cada uno, se pierde 1
	for _, index := range []int{0, 1, 2} {
		assert.Equal(t, 400+2*133, h.score(index))
	}
	assert.Zero(t, h.score(3))
	assert.InDelta(t, float64(3*666)/5, m.View().LastResult.Average, 1e-9)
}

func TestNameCraftVotingEndsWhenComplete(t *testing.T) {
	h := newHarness(t, models.VariantNameCraft, DefaultSettings(models.VariantNameCraft), "ana", "beto")
	m := h.m

	h.advance(3 * time.Second)
	h.submit(t, 0, selectMode(models.ModeNormal))
	playWords(t, h)
	h.submit(t, 0, answer("uno"))
	h.submit(t, 1, answer("dos"))
	require.Equal(t, models.PhaseVoting, h.advance(0))

	// borradores que ya suman el presupuesto no cierran la votación
	h.submit(t, 0, allocate(false, map[int]int{1: 100}))
	h.submit(t, 1, allocate(false, map[int]int{0: 100}))
	require.Equal(t, models.PhaseVoting, h.advance(0))
	p, _ := m.registry.Get(0)
	assert.False(t, p.HasVoted)

	h.submit(t, 0, allocate(true, map[int]int{1: 100}))
	require.Equal(t, models.PhaseVoting, h.advance(0))
	h.submit(t, 1, allocate(true, map[int]int{0: 100}))
	require.Equal(t, models.PhaseResults, h.advance(0))
	assert.Equal(t, 100, h.score(0))
	assert.Equal(t, 100, h.score(1))
}

func TestNameCraftSelectionMode(t *testing.T) {
	settings := DefaultSettings(models.VariantNameCraft)
	settings.MaxRounds = 1
	h := newHarness(t, models.VariantNameCraft, settings, "ana", "beto", "caro")
	m := h.m

	h.advance(3 * time.Second)
	h.submit(t, 0, selectMode(models.ModeSelection))
	playWords(t, h)
	require.Equal(t, models.PhaseSelection, m.Phase())
	assert.Equal(t, []string{"opt0", "opt1", "opt2", "opt3"}, m.options)

	h.submit(t, 0, choose(0))
	h.submit(t, 1, choose(0))
	assert.ErrorIs(t, m.Submit(true, 2, answer("free text")), ErrWrongPhase)
	h.submit(t, 2, choose(1))
	require.Equal(t, models.PhaseResults, h.advance(0))

	assert.Equal(t, 50, h.score(0))
	assert.Equal(t, 50, h.score(1))
	assert.Equal(t, 0, h.score(2))
	last := m.View().LastResult
	require.NotNil(t, last)
	assert.Equal(t, "opt0", last.MostPopular)
	assert.InDelta(t, 50.0, last.Highest, 1e-9)

	require.Equal(t, models.PhaseGameOver, h.advance(10*time.Second))
}

func TestNameCraftModeTimeoutDefaultsToNormal(t *testing.T) {
	h := newHarness(t, models.VariantNameCraft, DefaultSettings(models.VariantNameCraft), "ana")

	h.advance(3 * time.Second)
	require.Equal(t, models.PhaseWordSelection, h.advance(30*time.Second))
	assert.Equal(t, models.ModeNormal, h.m.Mode())
	assert.ErrorIs(t, h.m.Submit(true, 0, selectMode(models.ModeSelection)), ErrWrongPhase)
}

func TestNameCraftRestartAsksForModeAgain(t *testing.T) {
	h := newHarness(t, models.VariantNameCraft, DefaultSettings(models.VariantNameCraft), "ana")
	h.advance(3 * time.Second)
	h.submit(t, 0, selectMode(models.ModeSelection))

	require.NoError(t, h.m.Restart(true))
	h.advance(0)
	require.Equal(t, models.PhaseModeSelection, h.advance(3*time.Second))
	assert.Equal(t, models.GameMode(""), h.m.Mode())
}
