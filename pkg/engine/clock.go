package engine

import (
	"time"
)

// Clock es la fuente de tiempo monotónica
type Clock interface {
	Now() time.Time
}

// SystemClock usa el reloj del sistema
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// RoundClock es la cuenta regresiva usada por todas las fases
type RoundClock struct {
	clock    Clock
	length   time.Duration
	deadline time.Time
	armed    bool
}

// ClockState es la forma persistible del reloj. Guarda el tiempo restante y no
// el deadline, para que otro nodo pueda reanudarlo con su propio reloj.
type ClockState struct {
	Length    time.Duration `json:"length"`
	Remaining time.Duration `json:"remaining"`
	Armed     bool          `json:"armed"`
}

// NewRoundClock crea un reloj detenido
func NewRoundClock(clock Clock) *RoundClock {
	if clock == nil {
		clock = SystemClock{}
	}
	return &RoundClock{clock: clock}
}

// Start arma el reloj. Start(0) expira en la siguiente consulta.
func (r *RoundClock) Start(d time.Duration) error {
	if d < 0 {
		return ErrNegativeDuration
	}
	r.length = d
	r.deadline = r.clock.Now().Add(d)
	r.armed = true
	return nil
}

// Stop desarma el reloj
func (r *RoundClock) Stop() {
	r.armed = false
	r.length = 0
}

// Armed indica si hay una cuenta regresiva activa
func (r *RoundClock) Armed() bool {
	return r.armed
}

// Expired indica si el deadline ya pasó
func (r *RoundClock) Expired() bool {
	return r.armed && !r.clock.Now().Before(r.deadline)
}

// Remaining devuelve el tiempo restante, nunca negativo
func (r *RoundClock) Remaining() time.Duration {
	if !r.armed {
		return 0
	}
	left := r.deadline.Sub(r.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// RemainingFraction devuelve el tiempo restante en [0,1]
func (r *RoundClock) RemainingFraction() float64 {
	if !r.armed || r.length <= 0 {
		return 0
	}
	f := float64(r.Remaining()) / float64(r.length)
	if f > 1 {
		return 1
	}
	return f
}

// Snapshot captura el estado del reloj
func (r *RoundClock) Snapshot() ClockState {
	return ClockState{Length: r.length, Remaining: r.Remaining(), Armed: r.armed}
}

// Restore reanuda el reloj contra el tiempo actual
func (r *RoundClock) Restore(s ClockState) {
	r.length = s.Length
	r.armed = s.Armed
	r.deadline = r.clock.Now().Add(s.Remaining)
}
