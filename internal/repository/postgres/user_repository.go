package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"user-service/internal/domain"
	"user-service/internal/repository"
)

const (
	createUsersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`

	selectAllUsers = `
		SELECT id, username, email, created_at, updated_at
		FROM users
	`

	selectUserByID = `
		SELECT id, username, email, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	selectUserByUsername = `
		SELECT id, username, email, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	insertUser = `
		INSERT INTO users (username, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	updateUser = `
		UPDATE users
		SET username = $2, email = $3, updated_at = $4
		WHERE id = $1
	`

	deleteUser = `DELETE FROM users WHERE id = $1`
)

// uniqueViolation is the SQLSTATE Postgres reports for UNIQUE constraint failures.
const uniqueViolation = "23505"

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *userRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectAllUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, selectUserByID, id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, selectUserByUsername, username)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return user, nil
}

func (r *userRepository) Insert(ctx context.Context, user *domain.User) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(
		ctx,
		insertUser,
		user.Username,
		user.Email,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", translateError(err))
	}

	user.ID = id
	return 1, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) (int64, error) {
	result, err := r.db.ExecContext(
		ctx,
		updateUser,
		user.ID,
		user.Username,
		user.Email,
		user.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("update user: %w", translateError(err))
	}

	return result.RowsAffected()
}

func (r *userRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, deleteUser, id)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}

	return result.RowsAffected()
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %w", domain.ErrUsernameTaken, err)
	}
	return err
}
