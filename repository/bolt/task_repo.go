package bolt

import (
	"context"
	"encoding/json"
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/ruslanbektulqinov01/todo-api/domain"
	"github.com/ruslanbektulqinov01/todo-api/repository"
)

// taskRecord is the persisted encoding. domain.Task keeps owner_id out
// of API responses, so the bucket stores its own shape.
type taskRecord struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
	OwnerID   int64  `json:"owner_id"`
}

func (rec taskRecord) toDomain() domain.Task {
	return domain.Task{
		ID:        rec.ID,
		Content:   rec.Content,
		Completed: rec.Completed,
		OwnerID:   rec.OwnerID,
	}
}

func encodeTask(task *domain.Task) ([]byte, error) {
	return json.Marshal(taskRecord{
		ID:        task.ID,
		Content:   task.Content,
		Completed: task.Completed,
		OwnerID:   task.OwnerID,
	})
}

type taskRepository struct {
	store *Store
}

// NewTaskRepository returns a file-backed task repository.
func NewTaskRepository(store *Store) repository.TaskRepository {
	return &taskRepository{store: store}
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0)
	err := r.store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTasks).ForEach(func(k, v []byte) error {
			var rec taskRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.OwnerID == ownerID {
				tasks = append(tasks, rec.toDomain())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Incomplete first, newest first within each group.
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Completed != tasks[j].Completed {
			return !tasks[i].Completed
		}
		return tasks[i].ID > tasks[j].ID
	})
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, ownerID int64, content string) (*domain.Task, error) {
	task := domain.Task{
		Content: content,
		OwnerID: ownerID,
	}
	err := r.store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		task.ID = int64(seq)

		payload, err := encodeTask(&task)
		if err != nil {
			return err
		}
		return bucket.Put(itob(task.ID), payload)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update performs the read-modify-write inside a single bolt
// transaction, so a concurrent patch cannot interleave.
func (r *taskRepository) Update(ctx context.Context, ownerID, taskID int64, patch repository.TaskPatch) (*domain.Task, error) {
	var task domain.Task
	err := r.store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		raw := bucket.Get(itob(taskID))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		var rec taskRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		if rec.OwnerID != ownerID {
			return domain.ErrTaskNotFound
		}
		task = rec.toDomain()

		// An empty patch changes nothing; skip the write.
		if patch.IsEmpty() {
			return nil
		}

		if patch.Content != nil {
			task.Content = *patch.Content
		}
		if patch.Completed != nil {
			task.Completed = *patch.Completed
		}

		payload, err := encodeTask(&task)
		if err != nil {
			return err
		}
		return bucket.Put(itob(taskID), payload)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, taskID int64) error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		raw := bucket.Get(itob(taskID))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		var rec taskRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		if rec.OwnerID != ownerID {
			return domain.ErrTaskNotFound
		}
		return bucket.Delete(itob(taskID))
	})
}
