package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/internal/domain/repository"
	"github.com/dogshouse/dogs-api/internal/query"
)

const usersTable = "users"

// userCols is the default read projection: no password hash, no transient
// token fields.
const userCols = `id, name, email, role, COALESCE(avatar, ''), password_changed_at, created_at, email_verify, active`

// activeOnly is the soft-delete predicate appended to every read. It lives
// here, at the call sites, rather than in an invisible pre-query hook.
var activeOnly = query.Condition{Column: "active", Op: query.OpEq, Value: true}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Avatar,
		&u.PasswordChangedAt, &u.CreatedAt, &u.EmailVerify, &u.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, role, password_hash, avatar, password_changed_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id, created_at
	`, u.Name, u.Email, u.Role, u.Password, u.Avatar, u.PasswordChangedAt)
	return row.Scan(&u.ID, &u.CreatedAt)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE active`).Scan(&n)
	return n, err
}

func (r *UserRepository) List(ctx context.Context, req query.Request) ([]map[string]any, error) {
	sql, args := req.SQL(usersTable, activeOnly)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	raw, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(raw))
	for _, row := range raw {
		out = append(out, req.Remap(row))
	}
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1 AND active`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email = $1 AND active`, email))
}

func (r *UserRepository) GetByIDWithPassword(ctx context.Context, id string) (*entity.User, error) {
	return r.withPassword(ctx, `id = $1`, id)
}

func (r *UserRepository) GetByEmailWithPassword(ctx context.Context, email string) (*entity.User, error) {
	return r.withPassword(ctx, `email = $1`, email)
}

func (r *UserRepository) withPassword(ctx context.Context, cond string, arg any) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+userCols+`, password_hash
		FROM users
		WHERE `+cond+` AND active
	`, arg)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Avatar,
		&u.PasswordChangedAt, &u.CreatedAt, &u.EmailVerify, &u.Active, &u.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *entity.User) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, avatar = NULLIF($3, '')
		WHERE id = $4 AND active
	`, u.Name, u.Email, u.Avatar, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id, reason string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET active = FALSE, reason_delete_account = NULLIF($1, '')
		WHERE id = $2 AND active
	`, reason, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1,
		    password_changed_at = $2,
		    password_reset_token = NULL,
		    password_reset_token_timeout = NULL
		WHERE id = $3 AND active
	`, hash, changedAt, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, timeout time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_reset_token = $1, password_reset_token_timeout = $2
		WHERE id = $3 AND active
	`, tokenHash, timeout, id)
	return err
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_reset_token = NULL, password_reset_token_timeout = NULL
		WHERE id = $1
	`, id)
	return err
}

func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE password_reset_token = $1
		  AND password_reset_token_timeout > $2
		  AND active
	`, tokenHash, now))
}

func (r *UserRepository) SetVerifyOTP(ctx context.Context, id, otpHash string, timeout time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email_verify_otp = $1, email_verify_otp_timeout = $2
		WHERE id = $3 AND active
	`, otpHash, timeout, id)
	return err
}

func (r *UserRepository) ClearVerifyOTP(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email_verify_otp = NULL, email_verify_otp_timeout = NULL
		WHERE id = $1
	`, id)
	return err
}

func (r *UserRepository) GetByIDWithOTP(ctx context.Context, id string, now time.Time) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+userCols+`, email_verify_otp
		FROM users
		WHERE id = $1
		  AND email_verify_otp_timeout > $2
		  AND active
	`, id, now)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Avatar,
		&u.PasswordChangedAt, &u.CreatedAt, &u.EmailVerify, &u.Active, &u.EmailVerifyOTP); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email_verify = TRUE,
		    email_verify_otp = NULL,
		    email_verify_otp_timeout = NULL
		WHERE id = $1 AND active
	`, id)
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
