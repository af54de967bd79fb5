package prompts

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
)

//go:embed default_content.json
var defaultContent []byte

// TriviaQuestion pregunta con una respuesta correcta y tres señuelos
type TriviaQuestion struct {
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correctAnswer"`
	DecoyAnswers  []string `json:"decoyAnswers"`
}

// DeductionTopic tema de deducción con sus caracteres iniciales posibles y
// las respuestas de la IA
type DeductionTopic struct {
	Topic           string   `json:"topic"`
	FirstCharacters []string `json:"firstCharacters"`
	HiddenAnswers   []string `json:"hiddenAnswers"`
}

// Metadata información descriptiva del contenido
type Metadata struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Language    string `json:"language"`
	Description string `json:"description,omitempty"`
}

// Content es el documento con todo el material de juego
type Content struct {
	Metadata         Metadata         `json:"metadata"`
	Trivia           []TriviaQuestion `json:"trivia"`
	Deduction        []DeductionTopic `json:"deduction"`
	Adjectives       []string         `json:"adjectives"`
	Nouns            []string         `json:"nouns"`
	SelectionOptions []string         `json:"selectionOptions"`
}

// Summary conteos por sección, expuesto junto a los metadatos
type Summary struct {
	Metadata         Metadata `json:"metadata"`
	TriviaQuestions  int      `json:"triviaQuestions"`
	DeductionTopics  int      `json:"deductionTopics"`
	Adjectives       int      `json:"adjectives"`
	Nouns            int      `json:"nouns"`
	SelectionOptions int      `json:"selectionOptions"`
}

var ErrInvalidContent = errors.New("invalid content")

// Parse decodifica y valida un documento de contenido
func Parse(data []byte) (*Content, error) {
	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("error parseando contenido: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default devuelve el contenido incluido en el binario
func Default() *Content {
	c, err := Parse(defaultContent)
	if err != nil {
		panic(fmt.Sprintf("contenido por defecto inválido: %v", err))
	}
	return c
}

// Validate sólo revisa la forma; las secciones vacías se toleran
func (c *Content) Validate() error {
	for i, q := range c.Trivia {
		if q.Question == "" || q.CorrectAnswer == "" {
			return fmt.Errorf("%w: trivia %d sin pregunta o respuesta", ErrInvalidContent, i)
		}
	}
	for i, t := range c.Deduction {
		if t.Topic == "" {
			return fmt.Errorf("%w: tema de deducción %d vacío", ErrInvalidContent, i)
		}
	}
	return nil
}

// Summary resume el contenido
func (c *Content) Summary() Summary {
	return Summary{
		Metadata:         c.Metadata,
		TriviaQuestions:  len(c.Trivia),
		DeductionTopics:  len(c.Deduction),
		Adjectives:       len(c.Adjectives),
		Nouns:            len(c.Nouns),
		SelectionOptions: len(c.SelectionOptions),
	}
}
