package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ruslanbektulqinov01/todo-api/domain"
	"github.com/ruslanbektulqinov01/todo-api/repository"
)

type userRepository struct {
	db DB
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(db DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, username, hashedPassword string) (*domain.User, error) {
	const query = `
	INSERT INTO users (username, hashed_password)
	VALUES ($1, $2)
	RETURNING id
	`
	user := domain.User{
		Username:       username,
		HashedPassword: hashedPassword,
	}
	if err := r.db.QueryRow(ctx, query, username, hashedPassword).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
	SELECT id, username, hashed_password
	FROM users
	WHERE username = $1
	`
	row := r.db.QueryRow(ctx, query, username)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Username, &user.HashedPassword); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
	SELECT id, username, hashed_password
	FROM users
	WHERE id = $1
	`
	row := r.db.QueryRow(ctx, query, id)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Username, &user.HashedPassword); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Delete relies on the ON DELETE CASCADE constraint declared in the
// schema to remove the user's tasks in the same statement.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
