package club

import "context"

// Repository describes club registry lookups needed by the engine.
type Repository interface {
	List(ctx context.Context) ([]Club, error)
	GetByID(ctx context.Context, clubID string) (Club, bool, error)
}
