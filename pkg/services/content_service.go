package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/backsoul/partygames/pkg/logger"
	"github.com/backsoul/partygames/pkg/prompts"
	"github.com/backsoul/partygames/pkg/redis"
)

// ContentStore persistencia del contenido de juego
type ContentStore interface {
	SaveContent(ctx context.Context, content []byte, metadata interface{}) error
	LoadContent(ctx context.Context) ([]byte, error)
	GetMetadata(ctx context.Context) (map[string]interface{}, error)
	HealthCheck(ctx context.Context) error
}

// ContentService maneja la carga del contenido que alimenta a las partidas
type ContentService struct {
	store    ContentStore
	source   *prompts.Source
	filePath string
}

// NewContentService crea una nueva instancia del servicio
func NewContentService(store ContentStore, source *prompts.Source, filePath string) *ContentService {
	return &ContentService{
		store:    store,
		source:   source,
		filePath: filePath,
	}
}

// Source devuelve la fuente de prompts compartida por las partidas
func (s *ContentService) Source() *prompts.Source {
	return s.source
}

// LoadInitialContent usa el contenido guardado en Redis si existe; si no, el
// archivo configurado o el contenido incluido en el binario
func (s *ContentService) LoadInitialContent(ctx context.Context) error {
	data, err := s.store.LoadContent(ctx)
	switch {
	case err == nil:
		content, err := prompts.Parse(data)
		if err != nil {
			logger.Warningf("⚠️ Contenido en Redis inválido, recargando: %v", err)
			return s.Reload(ctx)
		}
		s.source.Replace(content)
		logger.Infof("📚 Contenido cargado desde Redis (%d preguntas)", len(content.Trivia))
		return nil
	case errors.Is(err, redis.ErrNotFound):
		return s.Reload(ctx)
	default:
		return fmt.Errorf("error leyendo contenido: %w", err)
	}
}

// Reload vuelve a cargar el contenido desde el archivo configurado o el por defecto
func (s *ContentService) Reload(ctx context.Context) error {
	logger.Info("🔄 Recargando contenido...")
	if s.filePath != "" {
		return s.LoadContentFromFile(ctx, s.filePath)
	}
	return s.apply(ctx, prompts.Default())
}

// LoadContentFromFile carga el contenido desde un archivo JSON
func (s *ContentService) LoadContentFromFile(ctx context.Context, filePath string) error {
	logger.Infof("📂 Cargando contenido desde: %s", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error leyendo archivo JSON: %w", err)
	}
	content, err := prompts.Parse(data)
	if err != nil {
		return err
	}
	return s.apply(ctx, content)
}

func (s *ContentService) apply(ctx context.Context, content *prompts.Content) error {
	data, err := json.Marshal(content)
	if err != nil {
		return err
	}
	if err := s.store.SaveContent(ctx, data, content.Summary()); err != nil {
		return fmt.Errorf("error guardando contenido en Redis: %w", err)
	}
	s.source.Replace(content)
	logger.Infof("✅ Contenido cargado: %d preguntas, %d temas, %d adjetivos, %d sustantivos",
		len(content.Trivia), len(content.Deduction), len(content.Adjectives), len(content.Nouns))
	return nil
}

// Metadata devuelve los metadatos guardados, o el resumen del contenido en memoria
func (s *ContentService) Metadata(ctx context.Context) (interface{}, error) {
	metadata, err := s.store.GetMetadata(ctx)
	if err == nil {
		return metadata, nil
	}
	if errors.Is(err, redis.ErrNotFound) {
		return s.source.Content().Summary(), nil
	}
	return nil, fmt.Errorf("error obteniendo metadatos: %w", err)
}

// HealthCheck verifica que el servicio esté funcionando
func (s *ContentService) HealthCheck(ctx context.Context) error {
	if err := s.store.HealthCheck(ctx); err != nil {
		return fmt.Errorf("error en health check de Redis: %w", err)
	}
	return nil
}

var _ ContentStore = (*redis.RedisClient)(nil)
