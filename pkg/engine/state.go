package engine

import (
	"fmt"

	"github.com/backsoul/partygames/pkg/logger"
	"github.com/backsoul/partygames/pkg/models"
)

// StateVersion versión del formato de snapshot
const StateVersion = 1

// State es la forma serializable de una partida. No depende de qué nodo tiene
// la autoridad: el reloj guarda tiempo restante y no un deadline.
type State struct {
	Version  int                   `json:"version"`
	ID       string                `json:"id"`
	Variant  models.Variant        `json:"variant"`
	Settings Settings              `json:"settings"`
	Phase    models.Phase          `json:"phase"`
	Round    int                   `json:"round"`
	Prompt   models.Prompt         `json:"prompt"`
	Order    []int                 `json:"answerOrder,omitempty"`
	Mode     models.GameMode       `json:"mode,omitempty"`
	Clock    *ClockState           `json:"clock,omitempty"`
	Ledger   *LedgerState          `json:"ledger,omitempty"`
	Registry RegistryState         `json:"registry"`
	History  []models.RoundResult  `json:"history,omitempty"`
	Parent   int                   `json:"parent"`
	Slots    []models.Slot         `json:"slots,omitempty"`
	Step     int                   `json:"step"`
	Chooser  int                   `json:"chooser"`
	Options  []string              `json:"options,omitempty"`
	Words    []string              `json:"words,omitempty"`
	Last     *models.RoundResult   `json:"last,omitempty"`
	Winners  []models.GameStanding `json:"winners,omitempty"`
}

// Snapshot captura el estado completo de la máquina
func (m *Machine) Snapshot() State {
	clock := m.clock.Snapshot()
	ledger := m.ledger.Snapshot()
	s := State{
		Version:  StateVersion,
		ID:       m.id,
		Variant:  m.variant,
		Settings: m.settings,
		Phase:    m.phase,
		Round:    m.round,
		Prompt:   m.prompt,
		Mode:     m.mode,
		Clock:    &clock,
		Ledger:   &ledger,
		Registry: m.registry.Snapshot(),
		History:  m.results.History(),
		Parent:   m.parent,
		Step:     m.step,
		Chooser:  m.chooser,
		Options:  append([]string(nil), m.options...),
		Words:    append([]string(nil), m.words...),
		Winners:  append([]models.GameStanding(nil), m.winners...),
	}
	if len(m.answerOrder) > 0 {
		s.Order = append([]int(nil), m.answerOrder...)
	}
	s.Prompt.Answers = append([]string(nil), m.prompt.Answers...)
	if m.slots != nil {
		s.Slots = append([]models.Slot(nil), m.slots...)
	}
	if m.lastResult != nil {
		r := cloneResult(*m.lastResult)
		s.Last = &r
	}
	return s
}

// Restore reanuda la partida desde un snapshot. Si la autoridad no puede
// reconstruir el reloj o el ledger, la ronda en curso se reinicia de forma explícita.
func (m *Machine) Restore(s State, isAuthority bool) error {
	if s.Variant != m.variant {
		return fmt.Errorf("%w: snapshot %s, machine %s", ErrUnknownVariant, s.Variant, m.variant)
	}

	m.settings = s.Settings
	m.phase = s.Phase
	m.round = s.Round
	m.prompt = s.Prompt
	m.answerOrder = nil
	if len(s.Order) > 0 {
		m.answerOrder = append([]int(nil), s.Order...)
	}
	m.mode = s.Mode
	m.registry.Restore(s.Registry)
	m.results.Restore(s.History)
	m.parent = s.Parent
	m.slots = append([]models.Slot(nil), s.Slots...)
	if len(m.slots) == 0 {
		m.slots = nil
	}
	m.step = s.Step
	m.chooser = s.Chooser
	m.options = append([]string(nil), s.Options...)
	m.words = append([]string(nil), s.Words...)
	m.winners = append([]models.GameStanding(nil), s.Winners...)
	m.lastResult = nil
	if s.Last != nil {
		r := cloneResult(*s.Last)
		m.lastResult = &r
	}

	if s.Ledger != nil {
		m.ledger.Restore(*s.Ledger)
	} else {
		m.ledger.Clear()
	}
	if s.Clock != nil {
		m.clock.Restore(*s.Clock)
	} else {
		m.clock.Stop()
	}

	if isAuthority && (s.Clock == nil || s.Ledger == nil) {
		m.recover()
	}
	return nil
}

// recover rearma una partida que no pudo reconstruirse por completo
func (m *Machine) recover() {
	switch m.phase {
	case "", models.PhaseGameOver:
		return
	case models.PhaseIntro, models.PhaseNewRound:
		m.enter(m.phase)
		return
	}

	if m.lastResult != nil && m.lastResult.Round == m.round &&
		(m.phase == models.PhaseResults || m.phase == models.PhaseShowAnswer) {
		// la ronda ya fue puntuada; sólo falta el reloj
		m.enter(m.phase)
		return
	}
	m.restartRound()
}

// restartRound vuelve a empezar la ronda actual sin puntuarla
func (m *Machine) restartRound() {
	logger.Warningf("🔁 Partida %s: estado incompleto en fase %s, reiniciando ronda %d", m.id, m.phase, m.round)
	m.emit(models.EventRoundRestarted, map[string]interface{}{"phase": m.phase, "round": m.round})
	if m.round > 0 {
		m.round--
	}
	m.ledger.Clear()
	m.registry.ResetRound()
	m.rules.begin(m)
}
