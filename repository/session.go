package repository

import (
	"context"

	"github.com/ruslanbektulqinov01/todo-api/domain"
)

type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired sweeps sessions past their expiry. Backends whose
	// keys expire on their own may implement this as a no-op.
	DeleteExpired(ctx context.Context, limit int) (int, error)
}
