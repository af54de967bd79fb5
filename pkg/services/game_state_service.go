package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/backsoul/partygames/pkg/engine"
	"github.com/backsoul/partygames/pkg/redis"
)

// StateTTL tiempo de vida de un snapshot sin actividad
const StateTTL = 24 * time.Hour

// StateStore persistencia de snapshots y del lease de autoridad
type StateStore interface {
	SaveState(ctx context.Context, gameID string, state []byte, ttl time.Duration) error
	LoadState(ctx context.Context, gameID string) ([]byte, error)
	DeleteState(ctx context.Context, gameID string) error
	ListGames(ctx context.Context) ([]string, error)
	AcquireAuthority(ctx context.Context, gameID, nodeID string, ttl time.Duration) (bool, error)
	RefreshAuthority(ctx context.Context, gameID, nodeID string, ttl time.Duration) (bool, error)
	ReleaseAuthority(ctx context.Context, gameID, nodeID string) error
}

// GameStateService guarda los snapshots de las partidas y administra qué nodo
// tiene la autoridad sobre cada una
type GameStateService struct {
	store    StateStore
	nodeID   string
	leaseTTL time.Duration
}

func NewGameStateService(store StateStore, nodeID string, leaseTTL time.Duration) *GameStateService {
	return &GameStateService{
		store:    store,
		nodeID:   nodeID,
		leaseTTL: leaseTTL,
	}
}

// NodeID identificador de este nodo en los leases
func (gs *GameStateService) NodeID() string {
	return gs.nodeID
}

// LeaseTTL duración del lease de autoridad
func (gs *GameStateService) LeaseTTL() time.Duration {
	return gs.leaseTTL
}

func (gs *GameStateService) Save(ctx context.Context, state engine.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("error serializando estado del juego: %w", err)
	}
	return gs.store.SaveState(ctx, state.ID, data, StateTTL)
}

func (gs *GameStateService) Load(ctx context.Context, gameID string) (*engine.State, error) {
	data, err := gs.store.LoadState(ctx, gameID)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error obteniendo estado del juego: %w", err)
	}

	var state engine.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("error deserializando estado del juego: %w", err)
	}
	return &state, nil
}

func (gs *GameStateService) Delete(ctx context.Context, gameID string) error {
	return gs.store.DeleteState(ctx, gameID)
}

func (gs *GameStateService) List(ctx context.Context) ([]string, error) {
	return gs.store.ListGames(ctx)
}

// Acquire intenta tomar (o conservar) la autoridad sobre la partida
func (gs *GameStateService) Acquire(ctx context.Context, gameID string) (bool, error) {
	return gs.store.AcquireAuthority(ctx, gameID, gs.nodeID, gs.leaseTTL)
}

// Refresh extiende el lease; false significa que se perdió la autoridad
func (gs *GameStateService) Refresh(ctx context.Context, gameID string) (bool, error) {
	return gs.store.RefreshAuthority(ctx, gameID, gs.nodeID, gs.leaseTTL)
}

func (gs *GameStateService) Release(ctx context.Context, gameID string) error {
	return gs.store.ReleaseAuthority(ctx, gameID, gs.nodeID)
}

var _ StateStore = (*redis.RedisClient)(nil)
