package ports

import (
	"context"
	"time"
)

// Cache almacén clave-valor de lecturas derivadas. Nunca es fuente de verdad.
// Los valores se serializan como JSON; Get decodifica sobre dest.
type Cache interface {
	// Get devuelve false (sin error) si la clave no existe o expiró.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	// InvalidatePattern elimina las claves que coinciden con el patrón glob (p. ej. "sales:*").
	InvalidatePattern(ctx context.Context, pattern string) error
	Clear(ctx context.Context) error
	Close() error
}
