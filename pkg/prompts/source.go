package prompts

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/backsoul/partygames/pkg/engine"
	"github.com/backsoul/partygames/pkg/models"
)

// DefaultFirstCharacter se usa cuando un tema no define caracteres iniciales
const DefaultFirstCharacter = "あ"

var genericEndings = []string{
	"んど", "んぐ", "んた", "んせい", "んか", "んしょう",
	"いと", "いす", "いん", "いき", "いち", "いしょう",
	"うと", "うす", "うん", "うき", "うち", "うしょう",
	"えと", "えす", "えん", "えき", "えち", "えしょう",
	"おと", "おす", "おん", "おき", "おち", "おしょう",
}

// Source implementa engine.PromptSource sobre un Content. Es seguro para uso
// concurrente: varias partidas comparten la misma instancia.
type Source struct {
	mu      sync.Mutex
	content *Content
	rng     *rand.Rand
	deck    []int
}

var _ engine.PromptSource = (*Source)(nil)

// NewSource crea una fuente con una semilla fija
func NewSource(content *Content, seed uint64) *Source {
	if content == nil {
		content = &Content{}
	}
	return &Source{content: content, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Replace cambia el contenido y reinicia el mazo de trivia
func (s *Source) Replace(content *Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = content
	s.deck = nil
}

// Content devuelve el contenido actual
func (s *Source) Content() *Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// DrawPrompt sortea el material de una ronda
func (s *Source) DrawPrompt(variant models.Variant) models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch variant {
	case models.VariantTrivia:
		return s.drawQuestion()
	case models.VariantDeduction:
		return s.drawTopic()
	}
	return models.Prompt{}
}

// drawQuestion saca preguntas de un mazo barajado sin repetir hasta agotarlo
func (s *Source) drawQuestion() models.Prompt {
	if len(s.content.Trivia) == 0 {
		return models.Prompt{}
	}
	if len(s.deck) == 0 {
		s.deck = s.rng.Perm(len(s.content.Trivia))
	}
	q := s.content.Trivia[s.deck[0]]
	s.deck = s.deck[1:]

	answers := make([]string, 0, 1+len(q.DecoyAnswers))
	answers = append(answers, q.CorrectAnswer)
	answers = append(answers, q.DecoyAnswers...)
	return models.Prompt{Text: q.Question, Answers: answers}
}

func (s *Source) drawTopic() models.Prompt {
	if len(s.content.Deduction) == 0 {
		return models.Prompt{}
	}
	topic := s.content.Deduction[s.rng.IntN(len(s.content.Deduction))]

	first := DefaultFirstCharacter
	if len(topic.FirstCharacters) > 0 {
		first = topic.FirstCharacters[s.rng.IntN(len(topic.FirstCharacters))]
	}
	return models.Prompt{
		Text:         topic.Topic,
		Constraint:   first,
		HiddenAnswer: s.hiddenAnswer(topic, first),
	}
}

// hiddenAnswer elige una respuesta del tema que empiece con first; si no hay,
// arma una con una terminación genérica
func (s *Source) hiddenAnswer(topic DeductionTopic, first string) string {
	var matching []string
	for _, a := range topic.HiddenAnswers {
		if strings.HasPrefix(a, first) {
			matching = append(matching, a)
		}
	}
	if len(matching) > 0 {
		return matching[s.rng.IntN(len(matching))]
	}
	return first + genericEndings[s.rng.IntN(len(genericEndings))]
}

// DrawLexicalOptions devuelve hasta count palabras distintas de la categoría
func (s *Source) DrawLexicalOptions(category string, count int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch category {
	case engine.CategoryAdjective:
		return s.sample(s.content.Adjectives, count)
	case engine.CategoryNoun:
		return s.sample(s.content.Nouns, count)
	}
	return nil
}

// DrawSelectionOptions devuelve hasta count opciones del modo selección
func (s *Source) DrawSelectionOptions(count int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sample(s.content.SelectionOptions, count)
}

func (s *Source) sample(pool []string, count int) []string {
	if count <= 0 || len(pool) == 0 {
		return nil
	}
	if count > len(pool) {
		count = len(pool)
	}
	out := make([]string, 0, count)
	for _, i := range s.rng.Perm(len(pool))[:count] {
		out = append(out, pool[i])
	}
	return out
}
