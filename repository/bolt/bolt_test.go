package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ruslanbektulqinov01/todo-api/domain"
	"github.com/ruslanbektulqinov01/todo-api/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "todo.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)

	alice, err := users.Create(ctx, "alice", "hash-a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if alice.ID == 0 {
		t.Fatal("expected a store-assigned id")
	}

	t.Run("duplicate username", func(t *testing.T) {
		if _, err := users.Create(ctx, "alice", "hash-b"); !errors.Is(err, domain.ErrUsernameTaken) {
			t.Fatalf("expected ErrUsernameTaken, got %v", err)
		}
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := users.GetByUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("GetByUsername failed: %v", err)
		}
		if got.ID != alice.ID || got.HashedPassword != "hash-a" {
			t.Fatalf("unexpected user: %+v", got)
		}

		if _, err := users.GetByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("delete cascades to tasks", func(t *testing.T) {
		tasks := NewTaskRepository(store)
		bob, err := users.Create(ctx, "bob", "hash-b")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := tasks.Create(ctx, bob.ID, "doomed"); err != nil {
			t.Fatalf("task Create failed: %v", err)
		}
		kept, err := tasks.Create(ctx, alice.ID, "kept")
		if err != nil {
			t.Fatalf("task Create failed: %v", err)
		}

		if err := users.Delete(ctx, bob.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := users.GetByUsername(ctx, "bob"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
		}

		remaining, err := tasks.ListByOwner(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListByOwner failed: %v", err)
		}
		if len(remaining) != 0 {
			t.Fatalf("expected no tasks left for deleted user, got %d", len(remaining))
		}

		aliceTasks, err := tasks.ListByOwner(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListByOwner failed: %v", err)
		}
		if len(aliceTasks) != 1 || aliceTasks[0].ID != kept.ID {
			t.Fatalf("alice's tasks should be untouched, got %+v", aliceTasks)
		}
	})
}

// The domain structs hide hashed_password and owner_id from API
// responses, so the buckets must persist their own record shapes.
func TestStoreRoundTripsHiddenFields(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todo.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	alice, err := NewUserRepository(store).Create(ctx, "alice", "hash-a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	task, err := NewTaskRepository(store).Create(ctx, alice.ID, "buy milk")
	if err != nil {
		t.Fatalf("task Create failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store, err = Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	got, err := NewUserRepository(store).GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if got.HashedPassword != "hash-a" {
		t.Fatalf("password hash lost on disk, got %q", got.HashedPassword)
	}

	tasks := NewTaskRepository(store)
	list, err := tasks.ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != task.ID {
		t.Fatalf("ownership lost on disk, got %+v", list)
	}
	if _, err := tasks.Update(ctx, alice.ID, task.ID, repository.TaskPatch{Completed: boolPtr(true)}); err != nil {
		t.Fatalf("owner Update after reopen failed: %v", err)
	}
	if err := tasks.Delete(ctx, alice.ID, task.ID); err != nil {
		t.Fatalf("owner Delete after reopen failed: %v", err)
	}
}

func TestTaskRepositoryOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)
	tasks := NewTaskRepository(store)

	owner, err := users.Create(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var created []*domain.Task
	for _, content := range []string{"first", "second", "third"} {
		task, err := tasks.Create(ctx, owner.ID, content)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if task.Completed {
			t.Fatal("new tasks must default to incomplete")
		}
		created = append(created, task)
	}

	// Complete the newest task; it should sort after all incomplete ones.
	if _, err := tasks.Update(ctx, owner.ID, created[2].ID, repository.TaskPatch{Completed: boolPtr(true)}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	list, err := tasks.ListByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}

	wantOrder := []int64{created[1].ID, created[0].ID, created[2].ID}
	if len(list) != len(wantOrder) {
		t.Fatalf("expected %d tasks, got %d", len(wantOrder), len(list))
	}
	for i, want := range wantOrder {
		if list[i].ID != want {
			t.Fatalf("position %d: expected task %d, got %d", i, want, list[i].ID)
		}
	}
}

func TestTaskRepositoryOwnership(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)
	tasks := NewTaskRepository(store)

	alice, _ := users.Create(ctx, "alice", "hash")
	bob, _ := users.Create(ctx, "bob", "hash")

	task, err := tasks.Create(ctx, alice.ID, "private")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("foreign update is not found", func(t *testing.T) {
		_, err := tasks.Update(ctx, bob.ID, task.ID, repository.TaskPatch{Content: strPtr("stolen")})
		if !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}

		got, err := tasks.Update(ctx, alice.ID, task.ID, repository.TaskPatch{})
		if err != nil {
			t.Fatalf("owner Update failed: %v", err)
		}
		if got.Content != "private" {
			t.Fatalf("content changed by foreign update: %q", got.Content)
		}
	})

	t.Run("foreign delete is not found", func(t *testing.T) {
		if err := tasks.Delete(ctx, bob.ID, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
	})

	t.Run("foreign list is empty", func(t *testing.T) {
		list, err := tasks.ListByOwner(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListByOwner failed: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("bob must not see alice's tasks, got %+v", list)
		}
	})
}

func TestTaskRepositoryPartialUpdate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)
	tasks := NewTaskRepository(store)

	owner, _ := users.Create(ctx, "alice", "hash")
	task, err := tasks.Create(ctx, owner.ID, "buy milk")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := tasks.Update(ctx, owner.ID, task.ID, repository.TaskPatch{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.Completed {
		t.Fatal("completed flag not applied")
	}
	if updated.Content != "buy milk" {
		t.Fatalf("content must survive a completed-only patch, got %q", updated.Content)
	}

	updated, err = tasks.Update(ctx, owner.ID, task.ID, repository.TaskPatch{Content: strPtr("buy oat milk")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Content != "buy oat milk" || !updated.Completed {
		t.Fatalf("content-only patch must keep the completed flag, got %+v", updated)
	}
}

func TestTaskRepositoryDeleteTwice(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)
	tasks := NewTaskRepository(store)

	owner, _ := users.Create(ctx, "alice", "hash")
	task, _ := tasks.Create(ctx, owner.ID, "once")

	if err := tasks.Delete(ctx, owner.ID, task.ID); err != nil {
		t.Fatalf("first Delete failed: %v", err)
	}
	if err := tasks.Delete(ctx, owner.ID, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("second Delete: expected ErrTaskNotFound, got %v", err)
	}

	list, err := tasks.ListByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("deleted task still listed: %+v", list)
	}
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	sessions := NewSessionRepository(store, time.Hour)

	session := &domain.Session{
		ID:        "sid-1",
		Username:  "alice",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := sessions.Save(ctx, session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := sessions.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("unexpected session: %+v", got)
	}

	t.Run("expired sessions are invisible", func(t *testing.T) {
		expired := &domain.Session{
			ID:        "sid-old",
			Username:  "alice",
			CreatedAt: time.Now().Add(-2 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		if err := sessions.Save(ctx, expired); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if _, err := sessions.Get(ctx, "sid-old"); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("sweep removes only expired entries", func(t *testing.T) {
		expired := &domain.Session{
			ID:        "sid-sweep",
			Username:  "alice",
			CreatedAt: time.Now().Add(-2 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		if err := sessions.Save(ctx, expired); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		removed, err := sessions.DeleteExpired(ctx, 100)
		if err != nil {
			t.Fatalf("DeleteExpired failed: %v", err)
		}
		if removed == 0 {
			t.Fatal("expected at least one expired session to be removed")
		}

		if _, err := sessions.Get(ctx, "sid-1"); err != nil {
			t.Fatalf("live session must survive the sweep: %v", err)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		if err := sessions.Delete(ctx, "sid-1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := sessions.Delete(ctx, "sid-1"); err != nil {
			t.Fatalf("repeated Delete failed: %v", err)
		}
	})
}
