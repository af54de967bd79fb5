package engine

import (
	"math/rand/v2"
	"time"

	"github.com/backsoul/partygames/pkg/logger"
	"github.com/backsoul/partygames/pkg/models"
	"github.com/backsoul/partygames/pkg/results"
)

// phaseRule define la salida de una fase. done es el disparador temprano
// opcional que se evalúa en cada tick junto con la expiración del reloj.
type phaseRule struct {
	exit func(m *Machine)
	done func(m *Machine) bool
}

// variantRules es la tabla de fases y reglas de envío de una variante
type variantRules struct {
	begin  func(m *Machine)
	phases map[models.Phase]phaseRule
	submit func(m *Machine, index int, action models.Action) error
}

func rulesFor(variant models.Variant) (variantRules, bool) {
	switch variant {
	case models.VariantTrivia:
		return triviaRules(), true
	case models.VariantDeduction:
		return deductionRules(), true
	case models.VariantNameCraft:
		return nameCraftRules(), true
	}
	return variantRules{}, false
}

// Options colaboradores externos de la máquina
type Options struct {
	Clock  Clock
	Source PromptSource
	Sink   Sink
	Rand   *rand.Rand
}

// Machine es el controlador autoritativo de una partida. Todas las mutaciones
// exigen isAuthority y deben ejecutarse desde una sola goroutine.
type Machine struct {
	id       string
	variant  models.Variant
	settings Settings
	rules    variantRules

	clock    *RoundClock
	now      Clock
	registry *Registry
	ledger   *Ledger
	results  *results.Aggregator
	source   PromptSource
	sink     Sink
	rng      *rand.Rand

	phase  models.Phase
	round  int
	prompt models.Prompt
	mode   models.GameMode

	// trivia
	answerOrder []int

	// deducción
	parent int
	slots  []models.Slot

	// name crafter
	step    int
	chooser int
	options []string
	words   []string

	lastResult *models.RoundResult
	winners    []models.GameStanding
}

// NewMachine crea una máquina detenida para la variante indicada
func NewMachine(id string, variant models.Variant, settings Settings, opts Options) (*Machine, error) {
	rules, ok := rulesFor(variant)
	if !ok {
		return nil, ErrUnknownVariant
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Source == nil {
		opts.Source = emptySource{}
	}
	if opts.Sink == nil {
		opts.Sink = discardSink{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}

	return &Machine{
		id:       id,
		variant:  variant,
		settings: settings,
		rules:    rules,
		clock:    NewRoundClock(opts.Clock),
		now:      opts.Clock,
		registry: NewRegistry(),
		ledger:   NewLedger(),
		results:  results.NewAggregator(),
		source:   opts.Source,
		sink:     opts.Sink,
		rng:      opts.Rand,
		parent:   models.NoOwner,
		chooser:  models.NoOwner,
	}, nil
}

// ID identificador de la partida
func (m *Machine) ID() string {
	return m.id
}

func (m *Machine) Variant() models.Variant {
	return m.variant
}

func (m *Machine) Phase() models.Phase {
	return m.phase
}

func (m *Machine) Round() int {
	return m.round
}

func (m *Machine) Mode() models.GameMode {
	return m.mode
}

func (m *Machine) Settings() Settings {
	return m.settings
}

// RemainingFraction fracción de tiempo restante de la fase actual
func (m *Machine) RemainingFraction() float64 {
	return m.clock.RemainingFraction()
}

// Start entra en la introducción de la primera ronda
func (m *Machine) Start(isAuthority bool) error {
	if !isAuthority {
		return ErrNotAuthority
	}
	if m.phase != "" {
		return ErrWrongPhase
	}
	m.enter(models.PhaseIntro)
	return nil
}

// Tick avanza la máquina si el reloj expiró o la fase ya se completó.
// Sin autoridad sólo informa la fase y el tiempo restante.
func (m *Machine) Tick(isAuthority bool) (models.Phase, float64) {
	if isAuthority {
		if rule, ok := m.rule(m.phase); ok {
			if m.clock.Expired() || (rule.done != nil && rule.done(m)) {
				rule.exit(m)
			}
		}
	}
	return m.phase, m.clock.RemainingFraction()
}

// Submit aplica una acción remota de un participante
func (m *Machine) Submit(isAuthority bool, index int, action models.Action) error {
	if !isAuthority {
		return ErrNotAuthority
	}
	if !m.registry.Has(index) {
		return ErrUnknownParticipant
	}
	return m.rules.submit(m, index, action)
}

// Join registra un nuevo participante
func (m *Machine) Join(isAuthority bool, name string) (models.Participant, error) {
	if !isAuthority {
		return models.Participant{}, ErrNotAuthority
	}
	p := m.registry.Join(name)
	m.emit(models.EventParticipantJoined, p)
	return p, nil
}

// Leave elimina a un participante
func (m *Machine) Leave(isAuthority bool, index int) error {
	if !isAuthority {
		return ErrNotAuthority
	}
	p, ok := m.registry.Get(index)
	if !ok {
		return ErrUnknownParticipant
	}
	m.registry.Leave(index)
	m.ledger.Remove(index)
	m.emit(models.EventParticipantLeft, p)
	return nil
}

// Restart reinicia la partida completa: puntajes, historial y número de ronda
func (m *Machine) Restart(isAuthority bool) error {
	if !isAuthority {
		return ErrNotAuthority
	}
	m.round = 0
	m.prompt = models.Prompt{}
	m.answerOrder = nil
	m.mode = ""
	m.parent = models.NoOwner
	m.slots = nil
	m.resetWords()
	m.lastResult = nil
	m.winners = nil
	m.results.Reset()
	m.registry.ResetScores()
	m.registry.ResetRound()
	m.ledger.Clear()
	m.enter(models.PhaseNewRound)
	return nil
}

// Participants devuelve los participantes ordenados por índice
func (m *Machine) Participants() []models.Participant {
	return m.registry.List()
}

// Standings clasificación acumulada
func (m *Machine) Standings() []models.GameStanding {
	return m.results.Standings()
}

// History resultados de cada ronda en orden
func (m *Machine) History() []models.RoundResult {
	return m.results.History()
}

// View devuelve el estado visible para la presentación
func (m *Machine) View() models.GameView {
	v := models.GameView{
		ID:                m.id,
		Variant:           m.variant,
		Phase:             m.phase,
		Round:             m.round,
		MaxRounds:         m.settings.MaxRounds,
		Mode:              m.mode,
		Prompt:            m.prompt,
		RemainingFraction: m.clock.RemainingFraction(),
		Participants:      m.registry.List(),
		Parent:            m.parent,
		Step:              m.step,
		Chooser:           m.chooser,
		Options:           append([]string(nil), m.options...),
		Words:             append([]string(nil), m.words...),
		Winners:           append([]models.GameStanding(nil), m.winners...),
	}
	if len(m.answerOrder) > 0 {
		v.AnswerOrder = append([]int(nil), m.answerOrder...)
	}
	v.Prompt.Answers = append([]string(nil), m.prompt.Answers...)
	if m.phase == models.PhaseAnswer {
		v.Prompt.HiddenAnswer = ""
	}
	if len(m.slots) > 0 {
		v.Slots = make([]models.Slot, len(m.slots))
		copy(v.Slots, m.slots)
		if m.phase == models.PhaseVoting {
			// los dueños se revelan en resultados
			for i := range v.Slots {
				v.Slots[i].Owner = models.NoOwner
			}
		}
	}
	if m.lastResult != nil {
		r := cloneResult(*m.lastResult)
		v.LastResult = &r
	}
	return v
}

func (m *Machine) rule(phase models.Phase) (phaseRule, bool) {
	switch phase {
	case models.PhaseIntro:
		return phaseRule{exit: m.rules.begin}, true
	case models.PhaseNewRound:
		return phaseRule{exit: func(m *Machine) { m.enter(models.PhaseIntro) }}, true
	case "", models.PhaseGameOver:
		return phaseRule{}, false
	}
	r, ok := m.rules.phases[phase]
	return r, ok
}

func (m *Machine) durationFor(phase models.Phase) time.Duration {
	s := m.settings
	switch phase {
	case models.PhaseIntro:
		return s.Intro
	case models.PhaseShowQuestion:
		return s.Question
	case models.PhaseShowAnswer:
		return s.Reveal
	case models.PhaseAnswer:
		return s.Answer
	case models.PhaseVoting:
		return s.Voting
	case models.PhaseResults:
		return s.Results
	case models.PhaseModeSelection:
		return s.ModeSelection
	case models.PhaseWordSelection:
		return s.WordSelection
	case models.PhaseAnswerCreation:
		return s.AnswerCreation
	case models.PhaseSelection:
		return s.Selection
	}
	return 0
}

// enter cambia de fase y arma el reloj con la duración configurada
func (m *Machine) enter(phase models.Phase) {
	m.phase = phase
	d := m.durationFor(phase)
	if d < 0 {
		d = 0
	}
	_ = m.clock.Start(d)
	m.emit(models.EventPhaseChanged, m.View())
}

// beginRound incrementa la ronda y limpia el estado de la anterior
func (m *Machine) beginRound() {
	m.round++
	m.ledger.Clear()
	m.registry.ResetRound()
	m.prompt = models.Prompt{}
	m.slots = nil
}

func (m *Machine) lastRound() bool {
	return m.settings.MaxRounds > 0 && m.round >= m.settings.MaxRounds
}

func (m *Machine) gameOver() {
	m.ledger.Close()
	m.phase = models.PhaseGameOver
	m.clock.Stop()
	m.chooser = models.NoOwner
	m.winners = m.results.Winners(WinnerCount)
	logger.Infof("🏁 Partida %s terminada tras %d rondas", m.id, m.round)
	m.emit(models.EventPhaseChanged, m.View())
	m.emit(models.EventGameOver, GameOverData{Standings: m.results.Standings(), Winners: m.winners})
}

// GameOverData acompaña a EventGameOver
type GameOverData struct {
	Standings []models.GameStanding `json:"standings"`
	Winners   []models.GameStanding `json:"winners"`
}

// newResult arma un resultado con una fila por participante conectado
func (m *Machine) newResult(fill func(p models.Participant, row *models.PlayerRoundResult)) models.RoundResult {
	result := models.RoundResult{Round: m.round, Variant: m.variant, Mode: m.mode, WinningSlot: -1}
	for _, p := range m.registry.List() {
		row := models.PlayerRoundResult{Index: p.Index, Name: p.Name}
		fill(p, &row)
		result.Players = append(result.Players, row)
	}
	return result
}

// applyResult suma los puntajes y registra el resultado en el historial
func (m *Machine) applyResult(result models.RoundResult) {
	for _, row := range result.Players {
		if row.Score == 0 {
			continue
		}
		delta := row.Score
		m.registry.Update(row.Index, func(p *models.Participant) {
			p.Score += delta
			m.emit(models.EventScoreChanged, models.ScoreChange{Index: p.Index, Delta: delta, Total: p.Score})
		})
	}
	m.results.Record(result)
	r := cloneResult(result)
	m.lastResult = &r
	m.emit(models.EventRoundResult, result)
}

// allSubmitted indica si cada participante conectado tiene un envío del tipo
func (m *Machine) allSubmitted(kind Kind) bool {
	indices := m.registry.Indices()
	if len(indices) == 0 {
		return false
	}
	for _, index := range indices {
		if _, ok := m.ledger.Get(kind, index); !ok {
			return false
		}
	}
	return true
}

func (m *Machine) resetWords() {
	m.step = 0
	m.chooser = models.NoOwner
	m.options = nil
	m.words = nil
}

func (m *Machine) emit(t models.EventType, data interface{}) {
	m.sink.Publish(models.Event{Type: t, GameID: m.id, Phase: m.phase, Round: m.round, Data: data})
}

func cloneResult(r models.RoundResult) models.RoundResult {
	players := make([]models.PlayerRoundResult, len(r.Players))
	copy(players, r.Players)
	r.Players = players
	return r
}

func averageScore(r models.RoundResult) float64 {
	if len(r.Players) == 0 {
		return 0
	}
	total := 0
	for _, p := range r.Players {
		total += p.Score
	}
	return float64(total) / float64(len(r.Players))
}

type emptySource struct{}

func (emptySource) DrawPrompt(models.Variant) models.Prompt {
	return models.Prompt{}
}

func (emptySource) DrawLexicalOptions(string, int) []string {
	return nil
}

func (emptySource) DrawSelectionOptions(int) []string {
	return nil
}
