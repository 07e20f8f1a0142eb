package repository

import (
	"context"
	"time"

	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/internal/query"
)

// UserRepository defines the interface for account persistence. Every read
// appends the active-only predicate, so deactivated accounts are invisible
// on all default paths (list, id and email lookups, token lookups alike).
// Password hashes are only populated by the WithPassword variants.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, req query.Request) ([]map[string]any, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByIDWithPassword(ctx context.Context, id string) (*entity.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*entity.User, error)

	// Profile and lifecycle
	UpdateProfile(ctx context.Context, u *entity.User) error
	Deactivate(ctx context.Context, id, reason string) error

	// Password rotation: stores the new hash, records the change time and
	// clears any pending reset token in the same statement.
	UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error

	// Reset-password flow
	SetResetToken(ctx context.Context, id, tokenHash string, timeout time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error)

	// Email-verify flow
	SetVerifyOTP(ctx context.Context, id, otpHash string, timeout time.Time) error
	ClearVerifyOTP(ctx context.Context, id string) error
	GetByIDWithOTP(ctx context.Context, id string, now time.Time) (*entity.User, error)
	MarkVerified(ctx context.Context, id string) error
}
