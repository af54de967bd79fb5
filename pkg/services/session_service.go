package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/backsoul/partygames/pkg/engine"
	"github.com/backsoul/partygames/pkg/logger"
	"github.com/backsoul/partygames/pkg/models"
	"github.com/google/uuid"
)

// SessionService administra las partidas en curso de este nodo
type SessionService struct {
	mu      sync.RWMutex
	runners map[string]*gameRunner
	closed  bool

	states   *GameStateService
	source   engine.PromptSource
	sink     engine.Sink
	settings map[models.Variant]engine.Settings
	opts     RunnerOptions

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSessionService crea una nueva instancia del servicio de sesiones.
// Con states nil las partidas viven sólo en memoria y este nodo siempre tiene la autoridad.
func NewSessionService(states *GameStateService, source engine.PromptSource, sink engine.Sink,
	settings map[models.Variant]engine.Settings, opts RunnerOptions) *SessionService {
	ctx, cancel := context.WithCancel(context.Background())
	if sink == nil {
		sink = engine.SinkFunc(func(models.Event) {})
	}
	return &SessionService{
		runners:  make(map[string]*gameRunner),
		states:   states,
		source:   source,
		sink:     sink,
		settings: settings,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// CreateGame crea y arranca una partida nueva
func (s *SessionService) CreateGame(ctx context.Context, variant models.Variant) (models.GameView, error) {
	if !variant.Valid() {
		return models.GameView{}, engine.ErrUnknownVariant
	}

	gameID := uuid.New().String()
	r, err := s.newRunner(gameID, variant)
	if err != nil {
		return models.GameView{}, err
	}
	if s.states != nil && !r.acquire(ctx) {
		return models.GameView{}, engine.ErrNotAuthority
	}
	if err := r.machine.Start(r.authority); err != nil {
		return models.GameView{}, err
	}
	r.persist(ctx, true)

	view := r.view()
	if err := s.launch(r); err != nil {
		return models.GameView{}, err
	}

	logger.Infof("✅ Nueva partida %s creada (ID: %s)", variant, gameID)
	return view, nil
}

// Join agrega un participante a la partida
func (s *SessionService) Join(ctx context.Context, gameID, name string) (models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Participant{}, ErrInvalidName
	}

	var p models.Participant
	err := s.do(ctx, gameID, func(r *gameRunner) error {
		var err error
		p, err = r.machine.Join(r.authority, name)
		return err
	})
	if err != nil {
		return models.Participant{}, err
	}

	logger.Infof("🙋 %s se unió a la partida %s (índice %d)", name, gameID, p.Index)
	return p, nil
}

// Leave saca a un participante de la partida
func (s *SessionService) Leave(ctx context.Context, gameID string, index int) error {
	err := s.do(ctx, gameID, func(r *gameRunner) error {
		if err := r.machine.Leave(r.authority, index); err != nil {
			return err
		}
		delete(r.limiters, index)
		return nil
	})
	if err == nil {
		logger.Infof("👋 Participante %d salió de la partida %s", index, gameID)
	}
	return err
}

// Submit envía la acción de un participante a la máquina de la partida
func (s *SessionService) Submit(ctx context.Context, gameID string, index int, action models.Action) error {
	return s.do(ctx, gameID, func(r *gameRunner) error {
		if !r.authority {
			return engine.ErrNotAuthority
		}
		if !r.allow(index) {
			return ErrRateLimited
		}
		return r.machine.Submit(true, index, action)
	})
}

// Restart comienza la partida de nuevo con los mismos participantes
func (s *SessionService) Restart(ctx context.Context, gameID string) error {
	err := s.do(ctx, gameID, func(r *gameRunner) error {
		return r.machine.Restart(r.authority)
	})
	if err == nil {
		logger.Infof("🔄 Partida %s reiniciada", gameID)
	}
	return err
}

// View devuelve el estado visible de la partida
func (s *SessionService) View(ctx context.Context, gameID string) (models.GameView, error) {
	var view models.GameView
	err := s.do(ctx, gameID, func(r *gameRunner) error {
		view = r.view()
		return nil
	})
	return view, err
}

// Standings devuelve la clasificación acumulada
func (s *SessionService) Standings(ctx context.Context, gameID string) ([]models.GameStanding, error) {
	var standings []models.GameStanding
	err := s.do(ctx, gameID, func(r *gameRunner) error {
		standings = r.machine.Standings()
		return nil
	})
	return standings, err
}

// History devuelve los resultados de cada ronda jugada
func (s *SessionService) History(ctx context.Context, gameID string) ([]models.RoundResult, error) {
	var history []models.RoundResult
	err := s.do(ctx, gameID, func(r *gameRunner) error {
		history = r.machine.History()
		return nil
	})
	return history, err
}

// ListGames lista las partidas de este nodo y las conocidas en el store
func (s *SessionService) ListGames(ctx context.Context) ([]models.GameSummary, error) {
	s.mu.RLock()
	local := make(map[string]*gameRunner, len(s.runners))
	for id, r := range s.runners {
		local[id] = r
	}
	s.mu.RUnlock()

	summaries := make([]models.GameSummary, 0, len(local))
	for _, r := range local {
		var summary models.GameSummary
		err := r.do(ctx, func(r *gameRunner) error {
			summary = r.summary()
			return nil
		})
		if err != nil {
			continue
		}
		summaries = append(summaries, summary)
	}

	if s.states != nil {
		ids, err := s.states.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := local[id]; ok {
				continue
			}
			state, err := s.states.Load(ctx, id)
			if err != nil {
				logger.Debugf("Partida %s sin snapshot: %v", id, err)
				continue
			}
			summaries = append(summaries, models.GameSummary{
				ID:           state.ID,
				Variant:      state.Variant,
				Phase:        state.Phase,
				Round:        state.Round,
				Participants: len(state.Registry.Participants),
			})
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// Close detiene todas las partidas de este nodo liberando su autoridad
func (s *SessionService) Close() {
	s.mu.Lock()
	s.closed = true
	runners := make([]*gameRunner, 0, len(s.runners))
	for _, r := range s.runners {
		runners = append(runners, r)
	}
	s.runners = make(map[string]*gameRunner)
	s.mu.Unlock()

	for _, r := range runners {
		r.stop()
	}
	s.cancel()
	s.wg.Wait()
	logger.Infof("🛑 %d partidas detenidas", len(runners))
}

func (s *SessionService) do(ctx context.Context, gameID string, fn func(r *gameRunner) error) error {
	r, err := s.runner(ctx, gameID)
	if err != nil {
		return err
	}
	return r.do(ctx, fn)
}

// runner devuelve la partida local o adopta una conocida por el store
func (s *SessionService) runner(ctx context.Context, gameID string) (*gameRunner, error) {
	s.mu.RLock()
	r, ok := s.runners[gameID]
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrGameClosed
	}
	if ok {
		return r, nil
	}
	if s.states == nil {
		return nil, ErrGameNotFound
	}

	state, err := s.states.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	r, err = s.newRunner(gameID, state.Variant)
	if err != nil {
		return nil, err
	}
	if err := r.machine.Restore(*state, false); err != nil {
		return nil, err
	}
	if err := s.launch(r); err != nil {
		if errors.Is(err, errAlreadyRunning) {
			return s.runner(ctx, gameID)
		}
		return nil, err
	}

	logger.Infof("📥 Partida %s adoptada por el nodo %s", gameID, s.states.NodeID())
	return r, nil
}

var errAlreadyRunning = errors.New("game already running")

func (s *SessionService) newRunner(gameID string, variant models.Variant) (*gameRunner, error) {
	settings, ok := s.settings[variant]
	if !ok {
		settings = engine.DefaultSettings(variant)
	}

	r := newGameRunner(s.states, s.sink, s.opts)
	m, err := engine.NewMachine(gameID, variant, settings, engine.Options{
		Source: s.source,
		Sink:   r,
	})
	if err != nil {
		return nil, err
	}
	r.machine = m
	return r, nil
}

func (s *SessionService) launch(r *gameRunner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrGameClosed
	}
	if _, ok := s.runners[r.id()]; ok {
		return errAlreadyRunning
	}
	s.runners[r.id()] = r

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		r.run(s.ctx)
	}()
	return nil
}
