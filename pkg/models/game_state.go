package models

// Variant identifica el juego que corre en una partida
type Variant string

const (
	VariantTrivia    Variant = "trivia"
	VariantDeduction Variant = "deduction"
	VariantNameCraft Variant = "namecraft"
)

// Valid indica si la variante es conocida
func (v Variant) Valid() bool {
	switch v {
	case VariantTrivia, VariantDeduction, VariantNameCraft:
		return true
	}
	return false
}

// Phase representa la fase actual de una partida
type Phase string

const (
	PhaseIntro          Phase = "intro"
	PhaseNewRound       Phase = "new_round"
	PhaseShowQuestion   Phase = "show_question"
	PhaseShowAnswer     Phase = "show_answer"
	PhaseAnswer         Phase = "answer"
	PhaseVoting         Phase = "voting"
	PhaseResults        Phase = "results"
	PhaseModeSelection  Phase = "mode_selection"
	PhaseWordSelection  Phase = "word_selection"
	PhaseAnswerCreation Phase = "answer_creation"
	PhaseSelection      Phase = "selection"
	PhaseGameOver       Phase = "game_over"
)

// GameMode es el modo de Name Crafter, fijado una vez por partida
type GameMode string

const (
	ModeNormal    GameMode = "normal"
	ModeSelection GameMode = "selection"
)

// Valid indica si el modo es conocido
func (m GameMode) Valid() bool {
	return m == ModeNormal || m == ModeSelection
}

// Prompt es el material de la ronda: pregunta, tema o palabras
type Prompt struct {
	Text string `json:"text"`
	// Constraint es el carácter inicial obligatorio en deducción
	Constraint string `json:"constraint,omitempty"`
	// Answers en trivia: el índice 0 es siempre la respuesta correcta
	Answers []string `json:"answers,omitempty"`
	// HiddenAnswer es la respuesta de la IA en deducción
	HiddenAnswer string `json:"hiddenAnswer,omitempty"`
}

// Slot es una de las cuatro casillas de votación de deducción
type Slot struct {
	Text  string `json:"text"`
	Owner int    `json:"owner"`
}

const (
	// NoOwner marca una casilla vacía
	NoOwner = -1
	// HiddenOwner marca la casilla de la respuesta oculta
	HiddenOwner = -2
)

// GameView es lo que se expone a la presentación.
// En trivia AnswerOrder indica en qué orden mostrar Prompt.Answers; las
// acciones siguen usando el índice canónico de la respuesta.
type GameView struct {
	ID                string         `json:"id"`
	Variant           Variant        `json:"variant"`
	Phase             Phase          `json:"phase"`
	Round             int            `json:"round"`
	MaxRounds         int            `json:"maxRounds"`
	Mode              GameMode       `json:"mode,omitempty"`
	Prompt            Prompt         `json:"prompt"`
	AnswerOrder       []int          `json:"answerOrder,omitempty"`
	RemainingFraction float64        `json:"remainingFraction"`
	Participants      []Participant  `json:"participants"`
	Parent            int            `json:"parent"`
	Slots             []Slot         `json:"slots,omitempty"`
	Step              int            `json:"step"`
	Chooser           int            `json:"chooser"`
	Options           []string       `json:"options,omitempty"`
	Words             []string       `json:"words,omitempty"`
	Authority         bool           `json:"authority"`
	LastResult        *RoundResult   `json:"lastResult,omitempty"`
	Winners           []GameStanding `json:"winners,omitempty"`
}
