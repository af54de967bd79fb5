package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/backsoul/partygames/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	contentKey  = "party:content"
	metadataKey = "party:content:metadata"
	gamesKey    = "party:games"
)

// ErrNotFound la clave no existe
var ErrNotFound = errors.New("not found")

// RedisClient estructura para manejar conexiones con Redis
type RedisClient struct {
	client *redis.Client
}

// refreshScript extiende el lease sólo si el nodo sigue siendo el dueño
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// releaseScript borra el lease sólo si el nodo sigue siendo el dueño
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient crea una nueva instancia del cliente Redis y verifica la conexión
func NewRedisClient(ctx context.Context, addr, password string, db int) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Verificar conexión
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("error conectando a Redis: %w", err)
	}

	logger.Info("✅ Conexión exitosa a Redis")
	return &RedisClient{client: rdb}, nil
}

func stateKey(gameID string) string {
	return fmt.Sprintf("party:game:%s:state", gameID)
}

func authorityKey(gameID string) string {
	return fmt.Sprintf("party:game:%s:authority", gameID)
}

// SaveContent guarda el documento de contenido y sus metadatos
func (r *RedisClient) SaveContent(ctx context.Context, content []byte, metadata interface{}) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("error serializando metadatos: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, contentKey, content, 0)
	pipe.Set(ctx, metadataKey, metadataJSON, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error guardando contenido: %w", err)
	}
	return nil
}

// LoadContent obtiene el documento de contenido guardado
func (r *RedisClient) LoadContent(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, contentKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error obteniendo contenido: %w", err)
	}
	return data, nil
}

// GetMetadata obtiene los metadatos del contenido
func (r *RedisClient) GetMetadata(ctx context.Context) (map[string]interface{}, error) {
	metadataJSON, err := r.client.Get(ctx, metadataKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error obteniendo metadatos: %w", err)
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
		return nil, fmt.Errorf("error parseando metadatos: %w", err)
	}
	return metadata, nil
}

// SaveState guarda el snapshot de una partida y la registra en el índice
func (r *RedisClient) SaveState(ctx context.Context, gameID string, state []byte, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, stateKey(gameID), state, ttl)
	pipe.SAdd(ctx, gamesKey, gameID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error guardando estado de %s: %w", gameID, err)
	}
	return nil
}

// LoadState obtiene el snapshot de una partida
func (r *RedisClient) LoadState(ctx context.Context, gameID string) ([]byte, error) {
	data, err := r.client.Get(ctx, stateKey(gameID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error obteniendo estado de %s: %w", gameID, err)
	}
	return data, nil
}

// DeleteState borra el snapshot y la saca del índice
func (r *RedisClient) DeleteState(ctx context.Context, gameID string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, stateKey(gameID))
	pipe.SRem(ctx, gamesKey, gameID)
	_, err := pipe.Exec(ctx)
	return err
}

// ListGames devuelve los ids registrados en el índice de partidas
func (r *RedisClient) ListGames(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, gamesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("error listando partidas: %w", err)
	}
	return ids, nil
}

// AcquireAuthority toma el lease de autoridad de una partida (SET NX PX).
// Si el nodo ya es el dueño, sólo lo extiende.
func (r *RedisClient) AcquireAuthority(ctx context.Context, gameID, nodeID string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, authorityKey(gameID), nodeID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("error tomando autoridad de %s: %w", gameID, err)
	}
	if ok {
		return true, nil
	}
	return r.RefreshAuthority(ctx, gameID, nodeID, ttl)
}

// RefreshAuthority extiende el lease si el nodo sigue siendo el dueño
func (r *RedisClient) RefreshAuthority(ctx context.Context, gameID, nodeID string, ttl time.Duration) (bool, error) {
	n, err := refreshScript.Run(ctx, r.client, []string{authorityKey(gameID)}, nodeID, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("error renovando autoridad de %s: %w", gameID, err)
	}
	return n == 1, nil
}

// ReleaseAuthority libera el lease si el nodo es el dueño
func (r *RedisClient) ReleaseAuthority(ctx context.Context, gameID, nodeID string) error {
	if err := releaseScript.Run(ctx, r.client, []string{authorityKey(gameID)}, nodeID).Err(); err != nil {
		return fmt.Errorf("error liberando autoridad de %s: %w", gameID, err)
	}
	return nil
}

// AuthorityHolder devuelve el nodo que tiene el lease
func (r *RedisClient) AuthorityHolder(ctx context.Context, gameID string) (string, error) {
	holder, err := r.client.Get(ctx, authorityKey(gameID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNotFound
		}
		return "", err
	}
	return holder, nil
}

// Close cierra la conexión con Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// HealthCheck verifica que Redis esté funcionando
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if _, err := r.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
