package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ruslanbektulqinov01/todo-api/domain"
	"github.com/ruslanbektulqinov01/todo-api/repository"
)

type taskRepository struct {
	db DB
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(db DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	const query = `
	SELECT id, content, completed, owner_id
	FROM tasks
	WHERE owner_id = $1
	ORDER BY completed ASC, id DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.ID, &task.Content, &task.Completed, &task.OwnerID); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, ownerID int64, content string) (*domain.Task, error) {
	const query = `
	INSERT INTO tasks (content, completed, owner_id)
	VALUES ($1, FALSE, $2)
	RETURNING id
	`
	task := domain.Task{
		Content: content,
		OwnerID: ownerID,
	}
	if err := r.db.QueryRow(ctx, query, content, ownerID).Scan(&task.ID); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies the patch in a single conditional UPDATE so concurrent
// partial updates of the same row cannot lose each other's fields. An
// empty patch degrades to a plain ownership-checked read.
func (r *taskRepository) Update(ctx context.Context, ownerID, taskID int64, patch repository.TaskPatch) (*domain.Task, error) {
	if patch.IsEmpty() {
		return r.getOwned(ctx, ownerID, taskID)
	}

	const query = `
	UPDATE tasks
	SET content = COALESCE($3, content),
		completed = COALESCE($4, completed)
	WHERE id = $1 AND owner_id = $2
	RETURNING id, content, completed, owner_id
	`
	row := r.db.QueryRow(ctx, query, taskID, ownerID, patch.Content, patch.Completed)

	var task domain.Task
	if err := row.Scan(&task.ID, &task.Content, &task.Completed, &task.OwnerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) getOwned(ctx context.Context, ownerID, taskID int64) (*domain.Task, error) {
	const query = `
	SELECT id, content, completed, owner_id
	FROM tasks
	WHERE id = $1 AND owner_id = $2
	`
	row := r.db.QueryRow(ctx, query, taskID, ownerID)

	var task domain.Task
	if err := row.Scan(&task.ID, &task.Content, &task.Completed, &task.OwnerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, taskID int64) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`
	tag, err := r.db.Exec(ctx, query, taskID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
