package engine

import (
	"sort"
	"strings"

	"github.com/backsoul/partygames/pkg/models"
)

// Kind es el tipo de entrada que guarda el ledger
type Kind string

const (
	KindAnswer     Kind = "answer"
	KindChoice     Kind = "choice"
	KindVote       Kind = "vote"
	KindAllocation Kind = "allocation"
)

// Ledger guarda los envíos de la ronda por índice de participante.
// Un nuevo envío del mismo participante reemplaza al anterior.
type Ledger struct {
	open    map[Kind]bool
	prefix  string
	entries map[Kind]map[int]models.Submission
}

// LedgerState forma persistible del ledger
type LedgerState struct {
	Open    []Kind                             `json:"open"`
	Prefix  string                             `json:"prefix,omitempty"`
	Entries map[Kind]map[int]models.Submission `json:"entries"`
}

// NewLedger crea un ledger vacío que no acepta envíos
func NewLedger() *Ledger {
	return &Ledger{
		open:    make(map[Kind]bool),
		entries: make(map[Kind]map[int]models.Submission),
	}
}

// Open define los tipos aceptados, reemplazando los anteriores
func (l *Ledger) Open(kinds ...Kind) {
	l.open = make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		l.open[k] = true
	}
}

// Close deja de aceptar envíos
func (l *Ledger) Close() {
	l.open = make(map[Kind]bool)
}

// Accepting indica si el tipo está abierto
func (l *Ledger) Accepting(kind Kind) bool {
	return l.open[kind]
}

// RequirePrefix exige que las respuestas comiencen con prefix
func (l *Ledger) RequirePrefix(prefix string) {
	l.prefix = prefix
}

// Submit valida y guarda un envío
func (l *Ledger) Submit(kind Kind, index int, sub models.Submission) error {
	if !l.open[kind] {
		return ErrWrongPhase
	}
	if kind == KindAnswer {
		sub.Text = strings.TrimSpace(sub.Text)
		if l.prefix != "" && !strings.HasPrefix(sub.Text, l.prefix) {
			return ErrPrefixMismatch
		}
	}
	if sub.Allocations != nil {
		cp := make(map[int]int, len(sub.Allocations))
		for k, v := range sub.Allocations {
			cp[k] = v
		}
		sub.Allocations = cp
	}

	bucket, ok := l.entries[kind]
	if !ok {
		bucket = make(map[int]models.Submission)
		l.entries[kind] = bucket
	}
	bucket[index] = sub
	return nil
}

// Get devuelve el envío de un participante, distinguiendo ausente de vacío
func (l *Ledger) Get(kind Kind, index int) (models.Submission, bool) {
	sub, ok := l.entries[kind][index]
	return sub, ok
}

// All devuelve una copia de los envíos de un tipo
func (l *Ledger) All(kind Kind) map[int]models.Submission {
	out := make(map[int]models.Submission, len(l.entries[kind]))
	for index, sub := range l.entries[kind] {
		out[index] = sub
	}
	return out
}

// Submitters devuelve los índices con envío, ordenados
func (l *Ledger) Submitters(kind Kind) []int {
	out := make([]int, 0, len(l.entries[kind]))
	for index := range l.entries[kind] {
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

// Remove borra los envíos de un participante que salió
func (l *Ledger) Remove(index int) {
	for _, bucket := range l.entries {
		delete(bucket, index)
	}
}

// Clear borra todo al inicio de cada ronda
func (l *Ledger) Clear() {
	l.open = make(map[Kind]bool)
	l.prefix = ""
	l.entries = make(map[Kind]map[int]models.Submission)
}

// Snapshot captura el ledger
func (l *Ledger) Snapshot() LedgerState {
	s := LedgerState{Prefix: l.prefix, Entries: make(map[Kind]map[int]models.Submission, len(l.entries))}
	for k := range l.open {
		s.Open = append(s.Open, k)
	}
	sort.Slice(s.Open, func(i, j int) bool { return s.Open[i] < s.Open[j] })
	for k := range l.entries {
		s.Entries[k] = l.All(k)
	}
	return s
}

// Restore reemplaza el contenido del ledger
func (l *Ledger) Restore(s LedgerState) {
	l.Clear()
	l.Open(s.Open...)
	l.prefix = s.Prefix
	for k, bucket := range s.Entries {
		cp := make(map[int]models.Submission, len(bucket))
		for index, sub := range bucket {
			cp[index] = sub
		}
		l.entries[k] = cp
	}
}
