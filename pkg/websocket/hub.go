package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/backsoul/partygames/pkg/logger"
	"github.com/backsoul/partygames/pkg/models"
	"github.com/fasthttp/websocket"
)

const (
	broadcastBuffer = 256
	clientBuffer    = 64
	writeWait       = 5 * time.Second
)

// Hub reparte los eventos de las partidas a las pantallas suscritas
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	mutex      sync.RWMutex
}

// Client pantalla conectada; gameID vacío recibe los eventos de todas las partidas
type Client struct {
	conn   *websocket.Conn
	gameID string
	send   chan []byte
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type outbound struct {
	gameID string
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}
}

// NewClient crea un cliente suscrito a una partida
func NewClient(conn *websocket.Conn, gameID string) *Client {
	return &Client{
		conn:   conn,
		gameID: gameID,
		send:   make(chan []byte, clientBuffer),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			logger.Infof("🔌 Cliente WebSocket conectado a %q. Total: %d", client.gameID, total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			logger.Infof("🔌 Cliente WebSocket desconectado. Total: %d", total)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if client.gameID != "" && client.gameID != message.gameID {
					continue
				}
				select {
				case client.send <- message.data:
				default:
					// cliente lento: se desconecta
					logger.Warningf("⚠️ Cliente WebSocket de %q saturado, desconectando", client.gameID)
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Stop detiene el hub y cierra las colas de todos los clientes
func (h *Hub) Stop() {
	close(h.stop)
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// ClientCount cantidad de clientes suscritos a una partida
func (h *Hub) ClientCount(gameID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	n := 0
	for client := range h.clients {
		if client.gameID == gameID {
			n++
		}
	}
	return n
}

// Publish envía un evento de partida sin bloquear a la máquina que lo emite
func (h *Hub) Publish(event models.Event) {
	h.BroadcastMessage(event.GameID, string(event.Type), event)
}

func (h *Hub) BroadcastMessage(gameID, msgType string, data interface{}) {
	msg := Message{
		Type: msgType,
		Data: data,
	}

	msgData, err := json.Marshal(msg)
	if err != nil {
		logger.Warningf("Error serializando mensaje: %v", err)
		return
	}

	select {
	case h.broadcast <- outbound{gameID: gameID, data: msgData}:
	default:
		logger.Warningf("⚠️ Cola de broadcast llena, evento %s descartado", msgType)
	}
}

// Serve atiende la conexión hasta que el cliente se desconecta
func (h *Hub) Serve(client *Client) {
	h.Register(client)
	go client.writePump()

	defer func() {
		h.Unregister(client)
		client.conn.Close()
	}()
	for {
		// las pantallas sólo escuchan; lo leído se descarta
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Warningf("Error enviando mensaje WebSocket: %v", err)
			c.conn.Close()
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
