package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/domain"
)

// Repository provides Postgres-backed persistence for users and exercises.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pool for url and verifies it answers.
func Connect(ctx context.Context, url string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewRepository(pool), nil
}

// Migrate creates the schema if it does not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exercises (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL REFERENCES users (id),
		description TEXT NOT NULL,
		duration INTEGER NOT NULL CHECK (duration > 0),
		date DATE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS exercises_user_seq_idx ON exercises (user_id, seq);
	`
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// InsertUser implements domain.UserRepository.
func (r *Repository) InsertUser(ctx context.Context, user domain.User) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO users (id, username) VALUES ($1, $2)`, user.ID, user.Username)
	return err
}

// FindUserByID implements domain.UserRepository.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	row := r.pool.QueryRow(ctx, `SELECT id, username FROM users WHERE id=$1`, id)
	if err := row.Scan(&user.ID, &user.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, username FROM users ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// InsertExercise implements domain.ExerciseRepository.
func (r *Repository) InsertExercise(ctx context.Context, exercise domain.Exercise) error {
	const stmt = `INSERT INTO exercises (id, user_id, description, duration, date)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, stmt,
		exercise.ID,
		exercise.UserID,
		exercise.Description,
		exercise.Duration,
		exercise.Date,
	)
	return err
}

// FindExercises implements domain.ExerciseRepository.
func (r *Repository) FindExercises(ctx context.Context, userID string, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	var query strings.Builder
	query.WriteString(`SELECT id, user_id, description, duration, date FROM exercises WHERE user_id=$1`)
	args := []any{userID}

	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&query, ` AND date >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&query, ` AND date <= $%d`, len(args))
	}
	query.WriteString(` ORDER BY seq`)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, ` LIMIT $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]domain.Exercise, 0)
	for rows.Next() {
		var ex domain.Exercise
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Description, &ex.Duration, &ex.Date); err != nil {
			return nil, err
		}
		ex.Date = ex.Date.UTC()
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

// Ping checks the pool can reach the server.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the pool.
func (r *Repository) Close(context.Context) error {
	r.pool.Close()
	return nil
}
