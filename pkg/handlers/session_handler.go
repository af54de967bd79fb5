package handlers

import (
	"encoding/json"

	"github.com/backsoul/partygames/pkg/models"
	"github.com/backsoul/partygames/pkg/services"
	"github.com/valyala/fasthttp"
)

// SessionHandler maneja las peticiones HTTP de las partidas
type SessionHandler struct {
	sessionService *services.SessionService
}

// NewSessionHandler crea una nueva instancia del handler de partidas
func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// CreateGame maneja POST /api/games
func (h *SessionHandler) CreateGame(ctx *fasthttp.RequestCtx) {
	var request models.CreateGameRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}

	view, err := h.sessionService.CreateGame(ctx, request.Variant)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	respondWithSuccess(ctx, view, "Partida creada exitosamente")
}

// ListGames maneja GET /api/games
func (h *SessionHandler) ListGames(ctx *fasthttp.RequestCtx) {
	games, err := h.sessionService.ListGames(ctx)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	respondWithSuccess(ctx, games, "Partidas obtenidas exitosamente")
}

// GetGame maneja GET /api/games/{id}
func (h *SessionHandler) GetGame(ctx *fasthttp.RequestCtx) {
	view, err := h.sessionService.View(ctx, gameID(ctx))
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	respondWithSuccess(ctx, view, "Partida obtenida exitosamente")
}

// Join maneja POST /api/games/{id}/join
func (h *SessionHandler) Join(ctx *fasthttp.RequestCtx) {
	var request models.JoinRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}

	participant, err := h.sessionService.Join(ctx, gameID(ctx), request.Name)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	respondWithSuccess(ctx, participant, "Participante registrado exitosamente")
}

// Leave maneja POST /api/games/{id}/leave
func (h *SessionHandler) Leave(ctx *fasthttp.RequestCtx) {
	var request models.LeaveRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}

	if err := h.sessionService.Leave(ctx, gameID(ctx), request.Index); err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	respondWithSuccess(ctx, nil, "Participante retirado exitosamente")
}

// SubmitAction maneja POST /api/games/{id}/actions
func (h *SessionHandler) SubmitAction(ctx *fasthttp.RequestCtx) {
	var request models.ActionRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}

	if err := h.sessionService.Submit(ctx, gameID(ctx), request.Index, request.Action); err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	respondWithSuccess(ctx, nil, "Acción registrada")
}

// GetStandings maneja GET /api/games/{id}/standings
func (h *SessionHandler) GetStandings(ctx *fasthttp.RequestCtx) {
	standings, err := h.sessionService.Standings(ctx, gameID(ctx))
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	respondWithSuccess(ctx, standings, "Clasificación obtenida exitosamente")
}

// GetHistory maneja GET /api/games/{id}/history
func (h *SessionHandler) GetHistory(ctx *fasthttp.RequestCtx) {
	history, err := h.sessionService.History(ctx, gameID(ctx))
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	respondWithSuccess(ctx, history, "Historial obtenido exitosamente")
}
