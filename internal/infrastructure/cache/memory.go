package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
)

var _ ports.Cache = (*MemoryCache)(nil)

// MemoryCache caché en proceso sobre go-cache. Guarda los valores como JSON para que
// los lectores nunca compartan punteros con el escritor.
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache crea la caché con la expiración por defecto y el intervalo de limpieza dados.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := m.c.Get(key)
	if !ok {
		return false, nil
	}
	payload, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("cache: valor inesperado para %s", key)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	m.c.Set(key, payload, ttl)
	return nil
}

func (m *MemoryCache) Invalidate(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *MemoryCache) InvalidatePattern(_ context.Context, pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("cache: patrón inválido %q: %w", pattern, err)
	}
	for key := range m.c.Items() {
		if ok, _ := path.Match(pattern, key); ok {
			m.c.Delete(key)
		}
	}
	return nil
}

func (m *MemoryCache) Clear(_ context.Context) error {
	m.c.Flush()
	return nil
}

func (m *MemoryCache) Close() error { return nil }

// Len número de claves vivas (incluye expiradas aún no purgadas).
func (m *MemoryCache) Len() int { return m.c.ItemCount() }
