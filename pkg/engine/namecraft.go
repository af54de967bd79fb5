package engine

import (
	"strings"

	"github.com/backsoul/partygames/pkg/models"
	"github.com/backsoul/partygames/pkg/scoring"
)

// Name Crafter: Intro -> ModeSelection -> WordSelection x3 ->
// AnswerCreation -> Voting | Selection -> Results -> ... -> GameOver.
// El modo se fija una sola vez por partida.
func nameCraftRules() variantRules {
	return variantRules{
		begin: func(m *Machine) {
			if m.mode == "" {
				m.ledger.Clear()
				m.enter(models.PhaseModeSelection)
				return
			}
			nameCraftStartRound(m)
		},
		phases: map[models.Phase]phaseRule{
			models.PhaseModeSelection: {
				exit: func(m *Machine) {
					m.mode = models.ModeNormal
					nameCraftStartRound(m)
				},
			},
			models.PhaseWordSelection: {exit: nameCraftAdvanceStep},
			models.PhaseAnswerCreation: {
				exit: func(m *Machine) {
					m.ledger.Open(KindAllocation)
					m.enter(models.PhaseVoting)
				},
				done: func(m *Machine) bool { return m.allSubmitted(KindAnswer) },
			},
			models.PhaseVoting: {
				exit: nameCraftScoreNormal,
				done: allocationsComplete,
			},
			models.PhaseSelection: {
				exit: nameCraftScoreSelection,
				done: func(m *Machine) bool { return m.allSubmitted(KindChoice) },
			},
			models.PhaseResults: {exit: nameCraftStartRound},
		},
		submit: nameCraftSubmit,
	}
}

func nameCraftStartRound(m *Machine) {
	if m.lastRound() {
		m.gameOver()
		return
	}
	m.beginRound()
	m.resetWords()
	m.words = make([]string, WordSteps)
	nameCraftBeginStep(m)
}

// nameCraftBeginStep designa al elegidor del turno y sortea sus opciones
func nameCraftBeginStep(m *Machine) {
	order := m.registry.Indices()
	m.chooser = models.NoOwner
	if len(order) > 0 {
		m.chooser = order[((m.round-1)*WordSteps+m.step)%len(order)]
	}
	category := CategoryAdjective
	if m.step == WordSteps-1 {
		category = CategoryNoun
	}
	m.options = pad(m.source.DrawLexicalOptions(category, OptionCount), OptionCount)
	m.enter(models.PhaseWordSelection)
}

// nameCraftAdvanceStep pasa al siguiente turno; tras el último se bifurca según el modo.
// Un turno que expira deja la palabra vacía.
func nameCraftAdvanceStep(m *Machine) {
	m.step++
	if m.step < WordSteps {
		nameCraftBeginStep(m)
		return
	}

	m.chooser = models.NoOwner
	m.prompt = models.Prompt{Text: joinWords(m.words)}
	if m.mode == models.ModeSelection {
		m.options = pad(m.source.DrawSelectionOptions(OptionCount), OptionCount)
		m.ledger.Open(KindChoice)
		m.enter(models.PhaseSelection)
		return
	}
	m.options = nil
	m.ledger.Open(KindAnswer)
	m.enter(models.PhaseAnswerCreation)
}

func joinWords(words []string) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, " ")
}

func nameCraftSubmit(m *Machine, index int, action models.Action) error {
	switch action.Kind {
	case models.ActionSelectMode:
		if m.phase != models.PhaseModeSelection {
			return ErrWrongPhase
		}
		if host, _ := m.registry.Host(); host != index {
			return ErrNotPermitted
		}
		if !action.Mode.Valid() {
			return ErrInvalidOption
		}
		m.mode = action.Mode
		nameCraftStartRound(m)
		return nil

	case models.ActionPickWord:
		if m.phase != models.PhaseWordSelection {
			return ErrWrongPhase
		}
		if index != m.chooser {
			// sólo el elegidor del turno puede elegir; el resto se ignora
			return nil
		}
		if action.Choice < 0 || action.Choice >= len(m.options) || m.options[action.Choice] == "" {
			return ErrInvalidOption
		}
		m.words[m.step] = m.options[action.Choice]
		nameCraftAdvanceStep(m)
		return nil

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

	case models.ActionChoose:
		if !m.ledger.Accepting(KindChoice) {
			return ErrWrongPhase
		}
		if action.Choice < 0 || action.Choice >= len(m.options) || m.options[action.Choice] == "" {
			return ErrInvalidOption
		}
		if err := m.ledger.Submit(KindChoice, index, models.Submission{Choice: action.Choice, SubmittedAt: m.now.Now()}); err != nil {
			return err
		}
		m.registry.Update(index, func(p *models.Participant) {
			p.HasSubmitted = true
			p.ChosenAnswer = action.Choice
		})
		return nil

	case models.ActionAllocate:
		if !m.ledger.Accepting(KindAllocation) {
			return ErrWrongPhase
		}
		budget := scoring.Budget(m.registry.Count())
		if err := m.validateAllocation(index, action.Allocations, action.Complete, budget); err != nil {
			return err
		}
		// un borrador que ya suma el presupuesto sigue abierto hasta que el votante lo confirma
		sub := models.Submission{Choice: models.NoChoice, Allocations: action.Allocations, Complete: action.Complete, SubmittedAt: m.now.Now()}
		if err := m.ledger.Submit(KindAllocation, index, sub); err != nil {
			return err
		}
		m.registry.Update(index, func(p *models.Participant) { p.HasVoted = action.Complete })
		return nil
	}
	return ErrUnsupportedAction
}

// validateAllocation: sin autoasignación, sólo a quienes respondieron, sin
// cantidades negativas y sin superar el presupuesto
func (m *Machine) validateAllocation(voter int, allocations map[int]int, complete bool, budget int) error {
	total := 0
	for target, points := range allocations {
		if target == voter {
			return ErrSelfVote
		}
		if points < 0 {
			return ErrInvalidOption
		}
		if _, answered := m.ledger.Get(KindAnswer, target); !answered || !m.registry.Has(target) {
			return ErrInvalidTarget
		}
		total += points
	}
	if total > budget {
		return ErrOverBudget
	}
	if complete && total != budget {
		return ErrIncompleteAllocation
	}
	return nil
}

func allocationsComplete(m *Machine) bool {
	indices := m.registry.Indices()
	if len(indices) == 0 {
		return false
	}
	for _, index := range indices {
		sub, ok := m.ledger.Get(KindAllocation, index)
		if !ok || !sub.Complete {
			return false
		}
	}
	return true
}

func (m *Machine) answeredParticipants() []int {
	var answered []int
	for _, index := range m.ledger.Submitters(KindAnswer) {
		if m.registry.Has(index) {
			answered = append(answered, index)
		}
	}
	return answered
}

// nameCraftScoreNormal cierra la votación. Los repartos se leen sólo aquí,
// al expirar la fase, y los incompletos se reemplazan por el reparto automático.
func nameCraftScoreNormal(m *Machine) {
	m.ledger.Close()
	voters := m.registry.Indices()
	budget := scoring.Budget(len(voters))

	allocations := make(map[int]map[int]int)
	for index, sub := range m.ledger.All(KindAllocation) {
		allocations[index] = sub.Allocations
	}
	final := scoring.CompleteVoters(voters, allocations, m.answeredParticipants(), budget)
	outcome := scoring.ScoreNormal(voters, final)
	answers := m.ledger.All(KindAnswer)

	result := m.newResult(func(p models.Participant, row *models.PlayerRoundResult) {
		answer, ok := answers[p.Index]
		row.Answer = answer.Text
		row.Answered = ok
		row.Score = outcome.Received[p.Index]
		row.Metric = float64(outcome.Received[p.Index])
	})
	result.Average = outcome.Average
	if outcome.MostPopular >= 0 {
		result.MostPopular = answers[outcome.MostPopular].Text
		result.Highest = float64(outcome.Received[outcome.MostPopular])
	}
	m.applyResult(result)
	m.enter(models.PhaseResults)
}

func nameCraftScoreSelection(m *Machine) {
	m.ledger.Close()
	participants := m.registry.Indices()
	choices := make(map[int]int)
	counts := make([]int, len(m.options))
	for index, sub := range m.ledger.All(KindChoice) {
		if !m.registry.Has(index) {
			continue
		}
		choices[index] = sub.Choice
		counts[sub.Choice]++
	}
	outcome := scoring.ScoreSelection(participants, choices)

	result := m.newResult(func(p models.Participant, row *models.PlayerRoundResult) {
		if choice, ok := choices[p.Index]; ok {
			row.Answer = m.options[choice]
			row.Answered = true
		}
		row.Score = outcome.Scores[p.Index]
		row.Metric = outcome.Rates[p.Index]
	})
	result.Average = outcome.Average
	result.Highest = outcome.Highest

	best := 0
	for i, n := range counts {
		if n > best {
			best = n
			result.MostPopular = m.options[i]
		}
	}
	m.applyResult(result)
	m.enter(models.PhaseResults)
}
