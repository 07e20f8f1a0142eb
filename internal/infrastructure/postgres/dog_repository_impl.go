package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/internal/domain/repository"
	"github.com/dogshouse/dogs-api/internal/query"
)

const dogsTable = "dogs"

type DogRepository struct {
	pool *pgxpool.Pool
}

func NewDogRepository(pool *pgxpool.Pool) *DogRepository {
	return &DogRepository{pool: pool}
}

func (r *DogRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM dogs`).Scan(&n)
	return n, err
}

func (r *DogRepository) List(ctx context.Context, req query.Request) ([]map[string]any, error) {
	sql, args := req.SQL(dogsTable)
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

func (r *DogRepository) GetByID(ctx context.Context, id string) (*entity.Dog, error) {
	d := &entity.Dog{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, owner, breed, breed_type, popularity, intelligence, photo, created_at
		FROM dogs
		WHERE id = $1
	`, id)
	if err := row.Scan(&d.ID, &d.Name, &d.Owner, &d.Breed, &d.BreedType,
		&d.Popularity, &d.Intelligence, &d.Photo, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *DogRepository) Create(ctx context.Context, d *entity.Dog) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO dogs (name, owner, breed, breed_type, popularity, intelligence, photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, d.Name, d.Owner, d.Breed, d.BreedType, d.Popularity, d.Intelligence, d.Photo)
	return row.Scan(&d.ID, &d.CreatedAt)
}

func (r *DogRepository) Update(ctx context.Context, d *entity.Dog) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE dogs
		SET name = $1, owner = $2, breed = $3, breed_type = $4,
		    popularity = $5, intelligence = $6, photo = $7
		WHERE id = $8
	`, d.Name, d.Owner, d.Breed, d.BreedType, d.Popularity, d.Intelligence, d.Photo, d.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM dogs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DogRepository) Stats(ctx context.Context) ([]entity.BreedStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT breed_type,
		       AVG(popularity), SUM(popularity),
		       SUM(intelligence), AVG(intelligence)
		FROM dogs
		GROUP BY breed_type
		ORDER BY SUM(popularity) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []entity.BreedStats
	for rows.Next() {
		var s entity.BreedStats
		if err := rows.Scan(&s.BreedType, &s.AvgPopularity, &s.Popularity,
			&s.Intelligence, &s.AvgIntelligence); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *DogRepository) TopSmart(ctx context.Context, n int) ([]entity.Dog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, owner, breed, breed_type, popularity, intelligence, photo, created_at
		FROM dogs
		ORDER BY intelligence DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dogs []entity.Dog
	for rows.Next() {
		var d entity.Dog
		if err := rows.Scan(&d.ID, &d.Name, &d.Owner, &d.Breed, &d.BreedType,
			&d.Popularity, &d.Intelligence, &d.Photo, &d.CreatedAt); err != nil {
			return nil, err
		}
		dogs = append(dogs, d)
	}
	return dogs, rows.Err()
}

var _ repository.DogRepository = (*DogRepository)(nil)
