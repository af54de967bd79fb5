package models

import "time"

// Participant representa a un jugador conectado a una partida
type Participant struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	HasSubmitted bool   `json:"hasSubmitted"`
	HasVoted     bool   `json:"hasVoted"`
	ChosenAnswer int    `json:"chosenAnswer"`
}

// NoChoice indica que el jugador no eligió respuesta
const NoChoice = -1

// ActionKind es el tipo de acción remota enviada por un jugador
type ActionKind string

const (
	ActionAnswer     ActionKind = "answer"      // texto libre (deducción, name crafter)
	ActionChoose     ActionKind = "choose"      // índice (trivia, selección)
	ActionVote       ActionKind = "vote"        // casilla (deducción)
	ActionAllocate   ActionKind = "allocate"    // reparto de puntos (name crafter)
	ActionPickWord   ActionKind = "pick_word"   // palabra del turno (name crafter)
	ActionSelectMode ActionKind = "select_mode" // modo de juego (name crafter)
)

// Action es la carga que llega por el canal remoto
type Action struct {
	Kind        ActionKind  `json:"kind"`
	Text        string      `json:"text,omitempty"`
	Choice      int         `json:"choice"`
	Mode        GameMode    `json:"mode,omitempty"`
	Allocations map[int]int `json:"allocations,omitempty"`
	Complete    bool        `json:"complete,omitempty"`
}

// Submission es lo que guarda el ledger por jugador
type Submission struct {
	Text        string      `json:"text,omitempty"`
	Choice      int         `json:"choice"`
	Fraction    float64     `json:"fraction,omitempty"`
	Allocations map[int]int `json:"allocations,omitempty"`
	Complete    bool        `json:"complete,omitempty"`
	SubmittedAt time.Time   `json:"submittedAt"`
}
