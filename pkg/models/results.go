package models

// PlayerRoundResult es el resultado de un jugador en una ronda
type PlayerRoundResult struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Answer string `json:"answer,omitempty"`
	// Answered si el jugador envió algo en la ronda
	Answered bool `json:"answered"`
	Score    int  `json:"score"`
	// Metric son votos recibidos o porcentaje de coincidencia según el modo
	Metric float64 `json:"metric"`
}

// RoundResult se produce una vez por ronda y no se modifica después
type RoundResult struct {
	Round       int                 `json:"round"`
	Variant     Variant             `json:"variant"`
	Mode        GameMode            `json:"mode,omitempty"`
	Players     []PlayerRoundResult `json:"players"`
	Average     float64             `json:"average"`
	Highest     float64             `json:"highest"`
	MostPopular string              `json:"mostPopular,omitempty"`
	// WinningSlot en deducción; -1 si nadie votó
	WinningSlot int `json:"winningSlot"`
}

// GameStanding es la clasificación acumulada de un jugador
type GameStanding struct {
	Position   int     `json:"position"`
	Index      int     `json:"index"`
	Name       string  `json:"name"`
	Total      int     `json:"total"`
	Average    float64 `json:"average"`
	Best       int     `json:"best"`
	Last       int     `json:"last"`
	RoundsSeen int     `json:"roundsSeen"`

	RoundsAnswered int `json:"roundsAnswered"`
	// Participation porcentaje de rondas respondidas sobre las vistas
	Participation float64 `json:"participation"`
	// votos recibidos en rondas de modo normal
	AverageVotes float64 `json:"averageVotes,omitempty"`
	BestVotes    float64 `json:"bestVotes,omitempty"`
	// porcentaje de coincidencia en rondas de modo selección
	AverageMatchRate float64 `json:"averageMatchRate,omitempty"`
	BestMatchRate    float64 `json:"bestMatchRate,omitempty"`
}
