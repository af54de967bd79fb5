package handlers

import (
	"encoding/json"

	"github.com/backsoul/partygames/pkg/logger"
	"github.com/backsoul/partygames/pkg/services"
	websocketHub "github.com/backsoul/partygames/pkg/websocket"
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
)

type GameControlHandler struct {
	sessionService *services.SessionService
	hub            *websocketHub.Hub
}

func NewGameControlHandler(sessionService *services.SessionService, hub *websocketHub.Hub) *GameControlHandler {
	return &GameControlHandler{
		sessionService: sessionService,
		hub:            hub,
	}
}

var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true // Permitir conexiones desde cualquier origen en desarrollo
	},
}

// HandleWebSocket maneja GET /ws?game={id}: la pantalla recibe el estado actual y
// después los eventos de esa partida
func (gc *GameControlHandler) HandleWebSocket(ctx *fasthttp.RequestCtx) {
	id := string(ctx.QueryArgs().Peek("game"))

	var initial []byte
	if id != "" {
		view, err := gc.sessionService.View(ctx, id)
		if err != nil {
			respondWithServiceError(ctx, err)
			return
		}
		initial, _ = json.Marshal(websocketHub.Message{Type: "gameState", Data: view})
	}

	err := upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		if initial != nil {
			if err := ws.WriteMessage(websocket.TextMessage, initial); err != nil {
				logger.Warningf("Error enviando estado inicial: %v", err)
				ws.Close()
				return
			}
		}
		gc.hub.Serve(websocketHub.NewClient(ws, id))
	})

	if err != nil {
		logger.Warningf("Error upgrading to WebSocket: %v", err)
	}
}

// Restart maneja POST /api/games/{id}/restart
func (gc *GameControlHandler) Restart(ctx *fasthttp.RequestCtx) {
	id := gameID(ctx)
	if err := gc.sessionService.Restart(ctx, id); err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	respondWithSuccess(ctx, map[string]interface{}{"id": id}, "Partida reiniciada exitosamente")
}
