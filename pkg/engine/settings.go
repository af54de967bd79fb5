package engine

import (
	"time"

	"github.com/backsoul/partygames/pkg/models"
)

const (
	// OptionCount es la cantidad de opciones por turno y de respuestas por pregunta
	OptionCount = 4
	// SlotCount casillas de votación en deducción
	SlotCount = 4
	// WordSteps turnos de selección de palabras por ronda
	WordSteps = 3
	// WinnerCount ganadores anunciados al terminar una trivia
	WinnerCount = 3
)

// Settings duraciones y límites de una variante
type Settings struct {
	Intro          time.Duration `json:"intro"`
	Question       time.Duration `json:"question"`
	Reveal         time.Duration `json:"reveal"`
	Answer         time.Duration `json:"answer"`
	Voting         time.Duration `json:"voting"`
	Results        time.Duration `json:"results"`
	ModeSelection  time.Duration `json:"modeSelection"`
	WordSelection  time.Duration `json:"wordSelection"`
	AnswerCreation time.Duration `json:"answerCreation"`
	Selection      time.Duration `json:"selection"`
	MaxRounds      int           `json:"maxRounds"`
	Points         int           `json:"points"`
	TimeBonus      int           `json:"timeBonus"`
}

// DefaultSettings devuelve los valores por defecto de cada variante
func DefaultSettings(variant models.Variant) Settings {
	s := Settings{Intro: 3 * time.Second}
	switch variant {
	case models.VariantTrivia:
		s.Question = 30 * time.Second
		s.Reveal = 3 * time.Second
		s.MaxRounds = 2
		s.Points = 100
		s.TimeBonus = 100
	case models.VariantDeduction:
		s.Answer = 60 * time.Second
		s.Voting = 30 * time.Second
		s.Results = 5 * time.Second
		s.MaxRounds = 5
	case models.VariantNameCraft:
		s.ModeSelection = 30 * time.Second
		s.WordSelection = 30 * time.Second
		s.AnswerCreation = 90 * time.Second
		s.Selection = 60 * time.Second
		s.Voting = 150 * time.Second
		s.Results = 10 * time.Second
		s.MaxRounds = 5
	}
	return s
}
