package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/stocktrack/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository handles database operations for identities
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateAnonymous creates a new anonymous user
func (r *UserRepository) CreateAnonymous(ctx context.Context) (*models.User, error) {
	query := `
		INSERT INTO app_user (id, anonymous)
		VALUES ($1, TRUE)
		RETURNING id, anonymous, created_at
	`
	u := &models.User{}
	err := r.pool.QueryRow(ctx, query, uuid.NewString()).Scan(&u.ID, &u.Anonymous, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, anonymous, created_at
		FROM app_user
		WHERE id = $1
	`
	u := &models.User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Anonymous, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
