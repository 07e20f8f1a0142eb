package repository

import (
	"context"

	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/internal/query"
	"github.com/dogshouse/dogs-api/pkg/apperror"
)

// ErrNotFound is returned by every repository when an id or lookup key does
// not resolve to a row. It is an operational 404 already, so callers may
// forward it as-is and the error pipeline renders it uniformly.
var ErrNotFound = apperror.NotFound("Resource not found")

// DogRepository defines the interface for dog catalogue persistence.
// List executes a composed query request and returns projection-shaped
// documents; the typed read/write operations work on full entities.
type DogRepository interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, req query.Request) ([]map[string]any, error)
	GetByID(ctx context.Context, id string) (*entity.Dog, error)
	Create(ctx context.Context, d *entity.Dog) error
	Update(ctx context.Context, d *entity.Dog) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) ([]entity.BreedStats, error)
	TopSmart(ctx context.Context, n int) ([]entity.Dog, error)
}
