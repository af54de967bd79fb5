package engine

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/backsoul/partygames/pkg/models"
	"github.com/backsoul/partygames/pkg/scoring"
)

// Deducción: Intro -> Answer -> Voting -> Results -> ... -> GameOver.
// El padre rota al siguiente participante después de cada resultado.
func deductionRules() variantRules {
	return variantRules{
		begin: deductionStartRound,
		phases: map[models.Phase]phaseRule{
			models.PhaseAnswer: {
				exit: deductionOpenVoting,
				done: func(m *Machine) bool { return m.allSubmitted(KindAnswer) },
			},
			models.PhaseVoting: {
				exit: deductionScore,
				done: func(m *Machine) bool { return m.allSubmitted(KindVote) },
			},
			models.PhaseResults: {
				exit: func(m *Machine) {
					m.parent = m.nextAfter(m.parent)
					deductionStartRound(m)
				},
			},
		},
		submit: deductionSubmit,
	}
}

func deductionStartRound(m *Machine) {
	if m.lastRound() {
		m.gameOver()
		return
	}
	m.beginRound()
	m.parent = m.pickParent()
	m.prompt = m.source.DrawPrompt(models.VariantDeduction)
	m.ledger.RequirePrefix(m.prompt.Constraint)
	m.ledger.Open(KindAnswer)
	m.enter(models.PhaseAnswer)
}

// pickParent conserva al padre actual si sigue conectado. El primero es al azar.
func (m *Machine) pickParent() int {
	indices := m.registry.Indices()
	switch {
	case len(indices) == 0:
		return models.NoOwner
	case m.parent == models.NoOwner:
		return indices[m.rng.IntN(len(indices))]
	case m.registry.Has(m.parent):
		return m.parent
	}
	return m.nextAfter(m.parent)
}

// nextAfter devuelve el siguiente índice en orden de registro, circular
func (m *Machine) nextAfter(index int) int {
	indices := m.registry.Indices()
	if len(indices) == 0 {
		return models.NoOwner
	}
	for _, i := range indices {
		if i > index {
			return i
		}
	}
	return indices[0]
}

func deductionOpenVoting(m *Machine) {
	answers := make(map[int]models.Submission)
	for index, sub := range m.ledger.All(KindAnswer) {
		if m.registry.Has(index) {
			answers[index] = sub
		}
	}
	m.slots = buildSlots(m.rng, m.parent, answers, m.prompt.HiddenAnswer)
	m.ledger.Open(KindVote)
	m.enter(models.PhaseVoting)
}

// buildSlots arma las casillas de votación: la respuesta oculta, la del padre si
// respondió y el resto de respuestas al azar, rellenando con casillas vacías.
// El orden final es una permutación uniforme.
func buildSlots(rng *rand.Rand, parent int, answers map[int]models.Submission, hidden string) []models.Slot {
	slots := make([]models.Slot, 0, SlotCount)
	if hidden != "" {
		slots = append(slots, models.Slot{Text: hidden, Owner: models.HiddenOwner})
	}
	if sub, ok := answers[parent]; ok {
		slots = append(slots, models.Slot{Text: sub.Text, Owner: parent})
	}

	others := make([]int, 0, len(answers))
	for index := range answers {
		if index != parent {
			others = append(others, index)
		}
	}
	sort.Ints(others)
	rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })

	for _, index := range others {
		if len(slots) == SlotCount {
			break
		}
		slots = append(slots, models.Slot{Text: answers[index].Text, Owner: index})
	}
	for len(slots) < SlotCount {
		slots = append(slots, models.Slot{Owner: models.NoOwner})
	}

	rng.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })
	return slots
}

func deductionSubmit(m *Machine, index int, action models.Action) error {
	switch action.Kind {
	case models.ActionAnswer:
		if !m.ledger.Accepting(KindAnswer) {
			return ErrWrongPhase
		}
		text := strings.TrimSpace(action.Text)
		if text == "" {
			return ErrEmptyAnswer
		}
		if err := m.ledger.Submit(KindAnswer, index, models.Submission{Text: text, Choice: models.NoChoice, SubmittedAt: m.now.Now()}); err != nil {
			return err
		}
		m.registry.Update(index, func(p *models.Participant) { p.HasSubmitted = true })
		return nil

	case models.ActionVote:
		if !m.ledger.Accepting(KindVote) {
			return ErrWrongPhase
		}
		if action.Choice < 0 || action.Choice >= len(m.slots) {
			return ErrInvalidOption
		}
		slot := m.slots[action.Choice]
		if slot.Owner == models.NoOwner {
			return ErrInvalidTarget
		}
		if slot.Owner == index {
			return ErrSelfVote
		}
		if err := m.ledger.Submit(KindVote, index, models.Submission{Choice: action.Choice, SubmittedAt: m.now.Now()}); err != nil {
			return err
		}
		m.registry.Update(index, func(p *models.Participant) {
			p.HasVoted = true
			p.ChosenAnswer = action.Choice
		})
		return nil
	}
	return ErrUnsupportedAction
}

func deductionScore(m *Machine) {
	m.ledger.Close()
	votes := make(map[int]int)
	for index, sub := range m.ledger.All(KindVote) {
		votes[index] = sub.Choice
	}
	answers := m.ledger.All(KindAnswer)
	outcome := scoring.TallyDeduction(m.slots, votes, m.parent)

	result := m.newResult(func(p models.Participant, row *models.PlayerRoundResult) {
		answer, ok := answers[p.Index]
		row.Answer = answer.Text
		row.Answered = ok
		row.Score = outcome.Points[p.Index]
		row.Metric = float64(outcome.Received[p.Index])
	})
	result.WinningSlot = outcome.WinningSlot
	if outcome.WinningSlot >= 0 {
		result.MostPopular = m.slots[outcome.WinningSlot].Text
	}
	result.Average = averageScore(result)
	m.applyResult(result)
	m.enter(models.PhaseResults)
}
