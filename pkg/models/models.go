package models

// APIResponse estructura estándar para respuestas de API
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// EventType es el tipo de notificación enviada a la presentación
type EventType string

const (
	EventPhaseChanged      EventType = "phase_changed"
	EventScoreChanged      EventType = "score_changed"
	EventTimer             EventType = "timer"
	EventRoundResult       EventType = "round_result"
	EventGameOver          EventType = "game_over"
	EventRoundRestarted    EventType = "round_restarted"
	EventParticipantJoined EventType = "participant_joined"
	EventParticipantLeft   EventType = "participant_left"
)

// Event es una notificación emitida por la máquina de fases
type Event struct {
	Type   EventType   `json:"type"`
	GameID string      `json:"gameId"`
	Phase  Phase       `json:"phase,omitempty"`
	Round  int         `json:"round,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// ScoreChange acompaña a EventScoreChanged
type ScoreChange struct {
	Index int `json:"index"`
	Delta int `json:"delta"`
	Total int `json:"total"`
}

// TimerTick acompaña a EventTimer
type TimerTick struct {
	RemainingFraction float64 `json:"remainingFraction"`
}

// CreateGameRequest request para crear partida
type CreateGameRequest struct {
	Variant Variant `json:"variant"`
}

// JoinRequest request para unirse a una partida
type JoinRequest struct {
	Name string `json:"name"`
}

// LeaveRequest request para salir de una partida
type LeaveRequest struct {
	Index int `json:"index"`
}

// ActionRequest request con la acción de un jugador
type ActionRequest struct {
	Index  int    `json:"index"`
	Action Action `json:"action"`
}

// GameSummary entrada del listado de partidas
type GameSummary struct {
	ID           string  `json:"id"`
	Variant      Variant `json:"variant"`
	Phase        Phase   `json:"phase"`
	Round        int     `json:"round"`
	Participants int     `json:"participants"`
}
