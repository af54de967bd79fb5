package engine

import (
	"sort"

	"github.com/backsoul/partygames/pkg/models"
)

// Registry es la colección de participantes con índices estables.
// Los índices no se reasignan al salir un jugador.
type Registry struct {
	participants map[int]*models.Participant
	next         int
}

// RegistryState forma persistible del registro
type RegistryState struct {
	Next         int                  `json:"next"`
	Participants []models.Participant `json:"participants"`
}

// NewRegistry crea un registro vacío
func NewRegistry() *Registry {
	return &Registry{participants: make(map[int]*models.Participant)}
}

// Join registra un participante y le asigna el siguiente índice
func (r *Registry) Join(name string) models.Participant {
	p := &models.Participant{Index: r.next, Name: name, ChosenAnswer: models.NoChoice}
	r.participants[p.Index] = p
	r.next++
	return *p
}

// Leave elimina a un participante; su índice no se reutiliza
func (r *Registry) Leave(index int) bool {
	if _, ok := r.participants[index]; !ok {
		return false
	}
	delete(r.participants, index)
	return true
}

// Get devuelve una copia del participante
func (r *Registry) Get(index int) (models.Participant, bool) {
	p, ok := r.participants[index]
	if !ok {
		return models.Participant{}, false
	}
	return *p, true
}

// Has indica si el índice está registrado
func (r *Registry) Has(index int) bool {
	_, ok := r.participants[index]
	return ok
}

// Count cantidad de participantes conectados
func (r *Registry) Count() int {
	return len(r.participants)
}

// Indices devuelve los índices en orden ascendente
func (r *Registry) Indices() []int {
	out := make([]int, 0, len(r.participants))
	for index := range r.participants {
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

// List devuelve copias ordenadas por índice
func (r *Registry) List() []models.Participant {
	out := make([]models.Participant, 0, len(r.participants))
	for _, index := range r.Indices() {
		out = append(out, *r.participants[index])
	}
	return out
}

// Host devuelve el participante con el menor índice
func (r *Registry) Host() (int, bool) {
	indices := r.Indices()
	if len(indices) == 0 {
		return 0, false
	}
	return indices[0], true
}

// Update aplica fn al participante si existe
func (r *Registry) Update(index int, fn func(p *models.Participant)) bool {
	p, ok := r.participants[index]
	if !ok {
		return false
	}
	fn(p)
	return true
}

// ResetRound limpia el estado transitorio de la ronda
func (r *Registry) ResetRound() {
	for _, p := range r.participants {
		p.HasSubmitted = false
		p.HasVoted = false
		p.ChosenAnswer = models.NoChoice
	}
}

// ResetScores pone todos los puntajes en cero
func (r *Registry) ResetScores() {
	for _, p := range r.participants {
		p.Score = 0
	}
}

// Snapshot captura el registro
func (r *Registry) Snapshot() RegistryState {
	return RegistryState{Next: r.next, Participants: r.List()}
}

// Restore reemplaza el contenido del registro
func (r *Registry) Restore(s RegistryState) {
	r.participants = make(map[int]*models.Participant, len(s.Participants))
	r.next = s.Next
	for _, p := range s.Participants {
		cp := p
		r.participants[p.Index] = &cp
		if p.Index >= r.next {
			r.next = p.Index + 1
		}
	}
}
