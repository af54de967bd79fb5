package services

import (
	"context"
	"errors"
	"time"

	"github.com/backsoul/partygames/pkg/engine"
	"github.com/backsoul/partygames/pkg/logger"
	"github.com/backsoul/partygames/pkg/models"
	"golang.org/x/time/rate"
)

const storeTimeout = 2 * time.Second

// RunnerOptions parámetros de ejecución de cada partida
type RunnerOptions struct {
	TickInterval   time.Duration
	BroadcastEvery int
	SubmitRate     rate.Limit
	SubmitBurst    int
}

type command struct {
	fn    func(r *gameRunner) error
	reply chan error
}

// gameRunner posee una máquina y es la única goroutine que la toca. Los
// comandos llegan por inbox y el reloj avanza con un ticker.
type gameRunner struct {
	machine *engine.Machine
	states  *GameStateService
	sink    engine.Sink
	opts    RunnerOptions

	inbox chan command
	quit  chan struct{}
	done  chan struct{}

	authority bool
	leaseAt   time.Time
	dirty     bool
	ticks     int
	limiters  map[int]*rate.Limiter
}

func newGameRunner(states *GameStateService, sink engine.Sink, opts RunnerOptions) *gameRunner {
	if opts.BroadcastEvery < 1 {
		opts.BroadcastEvery = 1
	}
	return &gameRunner{
		states:    states,
		sink:      sink,
		opts:      opts,
		inbox:     make(chan command),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		authority: states == nil,
		limiters:  make(map[int]*rate.Limiter),
	}
}

func (r *gameRunner) id() string {
	return r.machine.ID()
}

// Publish recibe los eventos de la máquina; cualquier evento marca el snapshot como pendiente
func (r *gameRunner) Publish(event models.Event) {
	r.dirty = true
	r.sink.Publish(event)
}

func (r *gameRunner) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case <-r.quit:
			r.shutdown()
			return
		case cmd := <-r.inbox:
			cmd.reply <- cmd.fn(r)
			r.persist(ctx, false)
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// do ejecuta fn en la goroutine de la partida y espera su resultado
func (r *gameRunner) do(ctx context.Context, fn func(r *gameRunner) error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case r.inbox <- cmd:
	case <-r.done:
		return ErrGameClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-r.done:
		return ErrGameClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *gameRunner) stop() {
	select {
	case <-r.quit:
	default:
		close(r.quit)
	}
	<-r.done
}

func (r *gameRunner) tick(ctx context.Context) {
	r.ticks++
	r.maintainLease(ctx)

	phase, fraction := r.machine.Tick(r.authority)
	if r.ticks%r.opts.BroadcastEvery != 0 {
		r.persist(ctx, false)
		return
	}

	if !r.authority {
		r.mirror(ctx)
		return
	}
	r.sink.Publish(models.Event{
		Type:   models.EventTimer,
		GameID: r.id(),
		Phase:  phase,
		Round:  r.machine.Round(),
		Data:   models.TimerTick{RemainingFraction: fraction},
	})
	// el tiempo restante también forma parte del snapshot
	r.persist(ctx, true)
}

// allow aplica el límite de acciones por participante
func (r *gameRunner) allow(index int) bool {
	l, ok := r.limiters[index]
	if !ok {
		l = rate.NewLimiter(r.opts.SubmitRate, r.opts.SubmitBurst)
		r.limiters[index] = l
	}
	return l.Allow()
}

// acquire intenta tomar la autoridad y, si lo logra, reanuda desde el último snapshot
func (r *gameRunner) acquire(ctx context.Context) bool {
	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	r.leaseAt = time.Now()
	ok, err := r.states.Acquire(opCtx, r.id())
	if err != nil {
		logger.Warningf("⚠️ Error adquiriendo autoridad de %s: %v", r.id(), err)
		return false
	}
	if !ok {
		return false
	}

	state, err := r.states.Load(opCtx, r.id())
	switch {
	case err == nil:
		if err := r.machine.Restore(*state, true); err != nil {
			logger.Criticalf("❌ Snapshot de %s no restaurable: %v", r.id(), err)
			r.release(ctx)
			return false
		}
	case errors.Is(err, ErrGameNotFound):
	default:
		logger.Warningf("⚠️ Error cargando snapshot de %s: %v", r.id(), err)
		r.release(ctx)
		return false
	}

	r.authority = true
	r.dirty = true
	logger.Infof("👑 Nodo %s tiene la autoridad de la partida %s", r.states.NodeID(), r.id())
	return true
}

func (r *gameRunner) maintainLease(ctx context.Context) {
	if r.states == nil {
		return
	}
	if !r.leaseAt.IsZero() && time.Since(r.leaseAt) < r.states.LeaseTTL()/3 {
		return
	}
	if !r.authority {
		r.acquire(ctx)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	r.leaseAt = time.Now()
	ok, err := r.states.Refresh(opCtx, r.id())
	if err != nil {
		logger.Warningf("⚠️ Error renovando autoridad de %s: %v", r.id(), err)
	}
	if err != nil || !ok {
		r.authority = false
		logger.Warningf("🔌 Nodo %s perdió la autoridad de la partida %s", r.states.NodeID(), r.id())
	}
}

// mirror sigue el snapshot publicado por el nodo con autoridad
func (r *gameRunner) mirror(ctx context.Context) {
	if r.states == nil {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	state, err := r.states.Load(opCtx, r.id())
	if err != nil {
		logger.Debugf("Sin snapshot para %s: %v", r.id(), err)
		return
	}
	if err := r.machine.Restore(*state, false); err != nil {
		logger.Warningf("⚠️ Snapshot de %s ignorado: %v", r.id(), err)
	}
}

func (r *gameRunner) persist(ctx context.Context, force bool) {
	if r.states == nil || !r.authority {
		r.dirty = false
		return
	}
	if !force && !r.dirty {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := r.states.Save(opCtx, r.machine.Snapshot()); err != nil {
		logger.Warningf("⚠️ Error guardando snapshot de %s: %v", r.id(), err)
		return
	}
	r.dirty = false
}

func (r *gameRunner) release(ctx context.Context) {
	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := r.states.Release(opCtx, r.id()); err != nil {
		logger.Warningf("⚠️ Error liberando autoridad de %s: %v", r.id(), err)
	}
}

func (r *gameRunner) shutdown() {
	if r.states == nil || !r.authority {
		return
	}
	ctx := context.Background()
	r.persist(ctx, true)
	r.release(ctx)
	r.authority = false
	logger.Infof("🛑 Partida %s detenida en el nodo %s", r.id(), r.states.NodeID())
}

func (r *gameRunner) view() models.GameView {
	view := r.machine.View()
	view.Authority = r.authority
	return view
}

func (r *gameRunner) summary() models.GameSummary {
	return models.GameSummary{
		ID:           r.id(),
		Variant:      r.machine.Variant(),
		Phase:        r.machine.Phase(),
		Round:        r.machine.Round(),
		Participants: len(r.machine.Participants()),
	}
}
