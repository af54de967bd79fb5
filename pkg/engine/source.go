package engine

import "github.com/backsoul/partygames/pkg/models"

// Categorías léxicas de Name Crafter
const (
	CategoryAdjective = "adjective"
	CategoryNoun      = "noun"
)

// PromptSource provee el contenido de cada ronda
type PromptSource interface {
	DrawPrompt(variant models.Variant) models.Prompt
	DrawLexicalOptions(category string, count int) []string
	DrawSelectionOptions(count int) []string
}

// Sink recibe las notificaciones de la máquina
type Sink interface {
	Publish(event models.Event)
}

// SinkFunc adapta una función a Sink
type SinkFunc func(event models.Event)

func (f SinkFunc) Publish(event models.Event) { f(event) }

type discardSink struct{}

func (discardSink) Publish(models.Event) {}

// pad ajusta la lista a count elementos, completando con cadenas vacías
func pad(options []string, count int) []string {
	out := make([]string, count)
	copy(out, options)
	return out
}
