package handlers

import (
	"fmt"

	"github.com/backsoul/partygames/pkg/services"
	"github.com/valyala/fasthttp"
)

// ContentHandler maneja las peticiones HTTP del contenido de juego
type ContentHandler struct {
	contentService *services.ContentService
}

// NewContentHandler crea una nueva instancia del handler
func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
	}
}

// GetMetadata maneja GET /api/content/metadata
func (h *ContentHandler) GetMetadata(ctx *fasthttp.RequestCtx) {
	metadata, err := h.contentService.Metadata(ctx)
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo metadatos: %v", err))
		return
	}

	respondWithSuccess(ctx, metadata, "Metadatos obtenidos exitosamente")
}

// Reload maneja POST /api/content/reload
func (h *ContentHandler) Reload(ctx *fasthttp.RequestCtx) {
	if err := h.contentService.Reload(ctx); err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error recargando contenido: %v", err))
		return
	}

	respondWithSuccess(ctx, h.contentService.Source().Content().Summary(), "Contenido recargado exitosamente")
}

// HealthCheck maneja GET /api/health
func (h *ContentHandler) HealthCheck(ctx *fasthttp.RequestCtx) {
	if err := h.contentService.HealthCheck(ctx); err != nil {
		respondWithError(ctx, fasthttp.StatusServiceUnavailable, fmt.Sprintf("Servicio no disponible: %v", err))
		return
	}

	respondWithSuccess(ctx, map[string]interface{}{
		"status": "healthy",
		"redis":  "connected",
	}, "Servicio funcionando correctamente")
}
