package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/ruslanbektulqinov01/todo-api/domain"
	"github.com/ruslanbektulqinov01/todo-api/repository"
)

// UseCase exposes the task operations, each scoped to the owner the
// middleware resolved for the request.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	return uc.tasks.ListByOwner(ctx, ownerID)
}

func (uc *UseCase) CreateTask(ctx context.Context, ownerID int64, content string) (*domain.Task, error) {
	created, err := uc.tasks.Create(ctx, ownerID, content)
	if err != nil {
		return nil, err
	}
	uc.logger.Debug("task created", zap.Int64("task_id", created.ID), zap.Int64("owner_id", ownerID))
	return created, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, ownerID, taskID int64, patch repository.TaskPatch) (*domain.Task, error) {
	return uc.tasks.Update(ctx, ownerID, taskID, patch)
}

func (uc *UseCase) DeleteTask(ctx context.Context, ownerID, taskID int64) error {
	return uc.tasks.Delete(ctx, ownerID, taskID)
}
