package repository

import (
	"context"

	"github.com/ruslanbektulqinov01/todo-api/domain"
)

// TaskPatch carries the fields of a partial update. A nil field is
// left untouched by the store.
type TaskPatch struct {
	Content   *string
	Completed *bool
}

func (p TaskPatch) IsEmpty() bool {
	return p.Content == nil && p.Completed == nil
}

// TaskRepository scopes every operation to an owner. A task belonging
// to a different owner behaves exactly like a task that does not exist.
type TaskRepository interface {
	// ListByOwner returns the owner's tasks, incomplete first, then
	// newest (highest id) first within each group.
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error)
	Create(ctx context.Context, ownerID int64, content string) (*domain.Task, error)
	// Update applies the patch atomically and returns the stored row.
	Update(ctx context.Context, ownerID, taskID int64, patch TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID int64) error
}
