package engine

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/backsoul/partygames/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answer(text string) models.Action {
	return models.Action{Kind: models.ActionAnswer, Text: text}
}

func vote(slot int) models.Action {
	return models.Action{Kind: models.ActionVote, Choice: slot}
}

func slotOf(slots []models.Slot, owner int) int {
	for i, s := range slots {
		if s.Owner == owner {
			return i
		}
	}
	return -1
}

func TestDeductionRoundScenario(t *testing.T) {
	h := newHarness(t, models.VariantDeduction, DefaultSettings(models.VariantDeduction), "ana", "beto", "caro")
	m := h.m

	require.Equal(t, models.PhaseAnswer, h.advance(3*time.Second))
	assert.Equal(t, 1, m.Round())
	parent := m.View().Parent
	require.Contains(t, []int{0, 1, 2}, parent)

	h.submit(t, 0, answer("apple"))
	h.submit(t, 1, answer("avocado"))
	assert.ErrorIs(t, m.Submit(true, 2, answer("banana")), ErrPrefixMismatch)
	assert.ErrorIs(t, m.Submit(true, 2, answer("   ")), ErrEmptyAnswer)
	assert.ErrorIs(t, m.Submit(true, 2, vote(0)), ErrWrongPhase)

	// 2 de 3 respondieron: sólo el reloj cierra la fase
	assert.Equal(t, models.PhaseAnswer, h.advance(59*time.Second))
	require.Equal(t, models.PhaseVoting, h.advance(time.Second))

	slots := m.slots
	require.Len(t, slots, SlotCount)
	owners := map[int]bool{}
	for _, s := range slots {
		if s.Owner >= 0 {
			owners[s.Owner] = true
		}
	}
	assert.Equal(t, map[int]bool{0: true, 1: true}, owners, "only submitted answers are voting targets")
	assert.GreaterOrEqual(t, slotOf(slots, models.HiddenOwner), 0)
	empty := slotOf(slots, models.NoOwner)
	require.GreaterOrEqual(t, empty, 0)

	target := slotOf(slots, 1)
	assert.ErrorIs(t, m.Submit(true, 1, vote(target)), ErrSelfVote)
	assert.ErrorIs(t, m.Submit(true, 0, vote(empty)), ErrInvalidTarget)
	assert.ErrorIs(t, m.Submit(true, 0, vote(9)), ErrInvalidOption)
	assert.ErrorIs(t, m.Submit(true, 0, answer("again")), ErrWrongPhase)

	h.submit(t, 0, vote(target))
	h.submit(t, 2, vote(target))

	// las casillas no revelan a sus dueños durante la votación
	for _, s := range m.View().Slots {
		assert.Equal(t, models.NoOwner, s.Owner)
	}

	require.Equal(t, models.PhaseResults, h.advance(30*time.Second))
	want := 2
	if parent == 1 {
		want = 3
	}
	assert.Equal(t, want, h.score(1))
	assert.Zero(t, h.score(0))
	last := m.View().LastResult
	require.NotNil(t, last)
	assert.Equal(t, target, last.WinningSlot)
	assert.Equal(t, "avocado", last.MostPopular)

	require.Equal(t, models.PhaseAnswer, h.advance(5*time.Second))
	assert.Equal(t, 2, m.Round())
	assert.Empty(t, m.ledger.All(KindAnswer))
	assert.Empty(t, m.ledger.All(KindVote))
	assert.Equal(t, m.nextAfter(parent), m.View().Parent, "parent rotates each round")
}

func TestDeductionEarlyTriggers(t *testing.T) {
	h := newHarness(t, models.VariantDeduction, DefaultSettings(models.VariantDeduction), "ana", "beto")
	m := h.m
	h.advance(3 * time.Second)

	h.submit(t, 0, answer("apple"))
	h.submit(t, 1, answer("acorn"))
	require.Equal(t, models.PhaseVoting, h.advance(0))

	h.submit(t, 0, vote(slotOf(m.slots, models.HiddenOwner)))
	h.submit(t, 1, vote(slotOf(m.slots, models.HiddenOwner)))
	require.Equal(t, models.PhaseResults, h.advance(0))

	// gana la respuesta oculta: nadie suma
	assert.Zero(t, h.score(0))
	assert.Zero(t, h.score(1))
}

func TestDeductionParentRotationSkipsLeavers(t *testing.T) {
	h := newHarness(t, models.VariantDeduction, DefaultSettings(models.VariantDeduction), "ana", "beto", "caro")
	m := h.m
	h.advance(3 * time.Second)

	m.parent = 1
	require.NoError(t, m.Leave(true, 2))
	assert.Equal(t, 0, m.nextAfter(1))

	m.parent = 2
	assert.Equal(t, 0, m.pickParent(), "a departed parent hands over to the next index")
}

func TestDeductionGameOver(t *testing.T) {
	settings := DefaultSettings(models.VariantDeduction)
	settings.MaxRounds = 2
	h := newHarness(t, models.VariantDeduction, settings, "ana", "beto")

	require.Equal(t, models.PhaseAnswer, h.advance(3*time.Second))
	for round := 1; round <= 2; round++ {
		assert.Equal(t, round, h.m.Round())
		require.Equal(t, models.PhaseVoting, h.advance(60*time.Second))
		require.Equal(t, models.PhaseResults, h.advance(30*time.Second))
		if round == 1 {
			require.Equal(t, models.PhaseAnswer, h.advance(5*time.Second))
		}
	}
	require.Equal(t, models.PhaseGameOver, h.advance(5*time.Second))
	assert.Len(t, h.m.History(), 2)
}

func TestBuildSlots(t *testing.T) {
	answers := map[int]models.Submission{
		0: {Text: "a0"}, 1: {Text: "a1"}, 2: {Text: "a2"}, 3: {Text: "a3"}, 4: {Text: "a4"},
	}

	for seed := uint64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed+1))
		slots := buildSlots(rng, 3, answers, "hidden")
		require.Len(t, slots, SlotCount)

		assert.GreaterOrEqual(t, slotOf(slots, 3), 0, "parent answer is always included")
		assert.GreaterOrEqual(t, slotOf(slots, models.HiddenOwner), 0)
		seen := map[int]bool{}
		for _, s := range slots {
			require.False(t, seen[s.Owner], "duplicate owner %d", s.Owner)
			seen[s.Owner] = true
			if s.Owner >= 0 {
				assert.Equal(t, answers[s.Owner].Text, s.Text)
			}
		}
	}
}

func TestBuildSlotsPadsMissingAnswers(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	slots := buildSlots(rng, 0, map[int]models.Submission{1: {Text: "only"}}, "")

	require.Len(t, slots, SlotCount)
	empties := 0
	for _, s := range slots {
		if s.Owner == models.NoOwner {
			empties++
		}
	}
	assert.Equal(t, 3, empties)
	assert.GreaterOrEqual(t, slotOf(slots, 1), 0)
}
