package repository

import (
	"context"

	"github.com/ruslanbektulqinov01/todo-api/domain"
)

type UserRepository interface {
	Create(ctx context.Context, username, hashedPassword string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// Delete removes the user together with every task the user owns.
	Delete(ctx context.Context, id int64) error
}
