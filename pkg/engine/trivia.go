package engine

import (
	"github.com/backsoul/partygames/pkg/models"
	"github.com/backsoul/partygames/pkg/scoring"
)

// Trivia: Intro -> ShowQuestion -> ShowAnswer -> ... -> GameOver.
// Cada pregunta es una ronda.
func triviaRules() variantRules {
	return variantRules{
		begin: triviaNextQuestion,
		phases: map[models.Phase]phaseRule{
			models.PhaseShowQuestion: {
				exit: triviaReveal,
				done: func(m *Machine) bool { return m.allSubmitted(KindChoice) },
			},
			models.PhaseShowAnswer: {exit: triviaNextQuestion},
		},
		submit: triviaSubmit,
	}
}

func triviaNextQuestion(m *Machine) {
	if m.lastRound() {
		m.gameOver()
		return
	}
	m.beginRound()
	m.prompt = m.source.DrawPrompt(models.VariantTrivia)
	m.prompt.Answers = pad(m.prompt.Answers, OptionCount)
	m.answerOrder = m.rng.Perm(len(m.prompt.Answers))
	m.ledger.Open(KindChoice)
	m.enter(models.PhaseShowQuestion)
}

func triviaSubmit(m *Machine, index int, action models.Action) error {
	if action.Kind != models.ActionChoose {
		return ErrUnsupportedAction
	}
	if !m.ledger.Accepting(KindChoice) {
		return ErrWrongPhase
	}
	if action.Choice < 0 || action.Choice >= len(m.prompt.Answers) || m.prompt.Answers[action.Choice] == "" {
		return ErrInvalidOption
	}

	// la bonificación usa el tiempo restante en el momento del envío
	sub := models.Submission{
		Choice:      action.Choice,
		Fraction:    m.clock.RemainingFraction(),
		SubmittedAt: m.now.Now(),
	}
	if err := m.ledger.Submit(KindChoice, index, sub); err != nil {
		return err
	}
	m.registry.Update(index, func(p *models.Participant) {
		p.HasSubmitted = true
		p.ChosenAnswer = action.Choice
	})
	return nil
}

func triviaReveal(m *Machine) {
	m.ledger.Close()
	choices := m.ledger.All(KindChoice)
	scores := scoring.ScoreTrivia(choices, m.settings.Points, m.settings.TimeBonus)

	result := m.newResult(func(p models.Participant, row *models.PlayerRoundResult) {
		sub, ok := choices[p.Index]
		if !ok {
			return
		}
		row.Answer = m.prompt.Answers[sub.Choice]
		row.Answered = true
		row.Score = scores[p.Index]
		row.Metric = sub.Fraction
	})
	result.Average = averageScore(result)
	if len(m.prompt.Answers) > 0 {
		result.MostPopular = m.prompt.Answers[0]
	}
	m.applyResult(result)
	m.enter(models.PhaseShowAnswer)
}
