package engine

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/backsoul/partygames/pkg/models"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fakeSource struct {
	questions int
}

func (s *fakeSource) DrawPrompt(variant models.Variant) models.Prompt {
	switch variant {
	case models.VariantTrivia:
		s.questions++
		return models.Prompt{Text: "question", Answers: []string{"right", "wrong1", "wrong2", "wrong3"}}
	case models.VariantDeduction:
		return models.Prompt{Text: "fruit", Constraint: "a", HiddenAnswer: "apricot"}
	}
	return models.Prompt{}
}

// devuelve menos opciones de las pedidas para ejercitar el relleno
func (s *fakeSource) DrawLexicalOptions(category string, count int) []string {
	return []string{category + "1", category + "2"}
}

func (s *fakeSource) DrawSelectionOptions(count int) []string {
	return []string{"opt0", "opt1", "opt2", "opt3"}
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingSink) Publish(e models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) count(t models.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type harness struct {
	m     *Machine
	clock *fakeClock
	sink  *recordingSink
}

func newHarness(t *testing.T, variant models.Variant, settings Settings, players ...string) *harness {
	t.Helper()
	h := &harness{clock: newFakeClock(), sink: &recordingSink{}}
	m, err := NewMachine("game-1", variant, settings, Options{
		Clock:  h.clock,
		Source: &fakeSource{},
		Sink:   h.sink,
		Rand:   rand.New(rand.NewPCG(7, 11)),
	})
	require.NoError(t, err)
	h.m = m
	for _, name := range players {
		_, err := m.Join(true, name)
		require.NoError(t, err)
	}
	require.NoError(t, m.Start(true))
	return h
}

// advance mueve el reloj y ejecuta un tick como autoridad
func (h *harness) advance(d time.Duration) models.Phase {
	h.clock.Advance(d)
	phase, _ := h.m.Tick(true)
	return phase
}

func (h *harness) submit(t *testing.T, index int, action models.Action) {
	t.Helper()
	require.NoError(t, h.m.Submit(true, index, action))
}

func (h *harness) score(index int) int {
	p, _ := h.m.registry.Get(index)
	return p.Score
}
