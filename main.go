package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/backsoul/partygames/pkg/config"
	"github.com/backsoul/partygames/pkg/handlers"
	"github.com/backsoul/partygames/pkg/logger"
	"github.com/backsoul/partygames/pkg/prompts"
	"github.com/backsoul/partygames/pkg/redis"
	"github.com/backsoul/partygames/pkg/services"
	"github.com/backsoul/partygames/pkg/websocket"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var (
	cfg                *config.Config
	redisClient        *redis.RedisClient
	contentService     *services.ContentService
	sessionService     *services.SessionService
	gameStateService   *services.GameStateService
	contentHandler     *handlers.ContentHandler
	sessionHandler     *handlers.SessionHandler
	gameControlHandler *handlers.GameControlHandler
	hub                *websocket.Hub
)

func main() {
	cfg = config.Load()
	logger.SetLevel(cfg.LogLevel)
	logger.Info("🚀 Iniciando servidor de juegos de fiesta")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inicializar Redis
	initRedis(ctx)

	// Inicializar servicios
	initServices()

	// Cargar contenido al inicio
	loadInitialContent(ctx)

	// Configurar el servidor
	server := &fasthttp.Server{
		Handler: requestHandler,
		Name:    "Party Games Server",
	}

	logger.Infof("🎮 Servidor iniciado en %s (nodo %s)", cfg.HTTPAddr, cfg.NodeID)
	logger.Info("🔧 API Health: /api/health")
	logger.Info("🎲 API Partidas: /api/games")
	logger.Info("🔄 Presiona Ctrl+C para detener el servidor")

	go func() {
		if err := server.ListenAndServe(cfg.HTTPAddr); err != nil {
			logger.Fatalf("Error al iniciar el servidor: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 Deteniendo servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warningf("⚠️ Error deteniendo el servidor HTTP: %v", err)
	}
	sessionService.Close()
	hub.Stop()
	if err := redisClient.Close(); err != nil {
		logger.Warningf("⚠️ Error cerrando Redis: %v", err)
	}
	logger.Info("👋 Servidor detenido")
}

func initRedis(ctx context.Context) {
	logger.Infof("🔌 Conectando a Redis en %s...", cfg.RedisAddr)

	client, err := redis.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("❌ No se pudo conectar a Redis: %v", err)
	}
	redisClient = client
}

func initServices() {
	logger.Info("⚙️  Inicializando servicios...")

	if cfg.NodeID == "" {
		cfg.NodeID = defaultNodeID()
	}

	submitRate := rate.Inf
	if cfg.SubmitRate > 0 {
		submitRate = rate.Limit(cfg.SubmitRate)
	}

	// Inicializar WebSocket Hub
	hub = websocket.NewHub()
	go hub.Run()

	source := prompts.NewSource(prompts.Default(), uint64(time.Now().UnixNano()))
	contentService = services.NewContentService(redisClient, source, cfg.ContentFile)
	gameStateService = services.NewGameStateService(redisClient, cfg.NodeID, cfg.AuthorityTTL)
	sessionService = services.NewSessionService(gameStateService, source, hub, cfg.Settings, services.RunnerOptions{
		TickInterval:   cfg.TickInterval(),
		BroadcastEvery: cfg.BroadcastEvery(),
		SubmitRate:     submitRate,
		SubmitBurst:    cfg.SubmitBurst,
	})

	// Inicializar handlers
	contentHandler = handlers.NewContentHandler(contentService)
	sessionHandler = handlers.NewSessionHandler(sessionService)
	gameControlHandler = handlers.NewGameControlHandler(sessionService, hub)
}

func defaultNodeID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "node"
	}
	return host + "-" + uuid.New().String()[:8]
}

func loadInitialContent(ctx context.Context) {
	logger.Info("📚 Cargando contenido inicial...")

	if err := contentService.LoadInitialContent(ctx); err != nil {
		logger.Warningf("⚠️ Error cargando contenido inicial: %v", err)
		logger.Info("💡 Se usará el contenido incluido. Puedes recargarlo usando POST /api/content/reload")
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	// Obtener la ruta solicitada
	path := string(ctx.Path())
	method := string(ctx.Method())

	logger.Debugf("📡 %s %s", method, path)

	ctx.Response.Header.Set("Server", "PartyGames-FastHTTP/1.0")
	ctx.Response.Header.Set("Cache-Control", "no-cache")

	// Headers CORS para desarrollo
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	// Manejar preflight requests
	if method == "OPTIONS" {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	// Enrutamiento
	switch {
	// API Routes - Health
	case path == "/api/health":
		contentHandler.HealthCheck(ctx)

	// API Routes - Content
	case path == "/api/content/metadata" && method == "GET":
		contentHandler.GetMetadata(ctx)
	case path == "/api/content/reload" && method == "POST":
		contentHandler.Reload(ctx)

	// API Routes - Games
	case path == "/api/games" && method == "POST":
		sessionHandler.CreateGame(ctx)
	case path == "/api/games" && method == "GET":
		sessionHandler.ListGames(ctx)

	// WebSocket Route
	case path == "/ws":
		gameControlHandler.HandleWebSocket(ctx)

	// API Routes - Individual games (with parameters)
	case strings.HasPrefix(path, "/api/games/") && method == "GET":
		handleGameGetRoutes(ctx, path)
	case strings.HasPrefix(path, "/api/games/") && method == "POST":
		handleGamePostRoutes(ctx, path)

	default:
		serve404(ctx)
	}
}

func serve404(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBodyString(`
		<!DOCTYPE html>
		<html>
		<head><title>404 - Página no encontrada</title></head>
		<body>
			<h1>🎮 404 - Página no encontrada</h1>
			<h3>🔧 Endpoints API disponibles:</h3>
			<ul>
				<li>GET /api/health</li>
				<li>GET /api/content/metadata</li>
				<li>POST /api/content/reload</li>
				<li>GET|POST /api/games</li>
				<li>GET /api/games/{id}</li>
				<li>GET /api/games/{id}/standings</li>
				<li>GET /api/games/{id}/history</li>
				<li>POST /api/games/{id}/join</li>
				<li>POST /api/games/{id}/leave</li>
				<li>POST /api/games/{id}/actions</li>
				<li>POST /api/games/{id}/restart</li>
				<li>GET /ws?game={id}</li>
			</ul>
		</body>
		</html>
	`)
}

func handleGameGetRoutes(ctx *fasthttp.RequestCtx, path string) {
	parts := strings.Split(path, "/")

	// /api/games/{id}
	if len(parts) == 4 && parts[3] != "" {
		ctx.SetUserValue("id", parts[3])
		sessionHandler.GetGame(ctx)
		return
	}

	if len(parts) == 5 && parts[3] != "" {
		ctx.SetUserValue("id", parts[3])
		switch parts[4] {
		case "standings":
			sessionHandler.GetStandings(ctx)
			return
		case "history":
			sessionHandler.GetHistory(ctx)
			return
		}
	}

	serve404(ctx)
}

func handleGamePostRoutes(ctx *fasthttp.RequestCtx, path string) {
	parts := strings.Split(path, "/")

	if len(parts) == 5 && parts[3] != "" {
		ctx.SetUserValue("id", parts[3])
		switch parts[4] {
		case "join":
			sessionHandler.Join(ctx)
			return
		case "leave":
			sessionHandler.Leave(ctx)
			return
		case "actions":
			sessionHandler.SubmitAction(ctx)
			return
		case "restart":
			gameControlHandler.Restart(ctx)
			return
		}
	}

	serve404(ctx)
}
