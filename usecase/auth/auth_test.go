package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ruslanbektulqinov01/todo-api/domain"
)

type memoryUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) Create(ctx context.Context, username, hashedPassword string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; ok {
		return nil, domain.ErrUsernameTaken
	}
	r.nextID++
	user := &domain.User{ID: r.nextID, Username: username, HashedPassword: hashedPassword}
	r.users[username] = user
	return user, nil
}

func (r *memoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUserRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, user := range r.users {
		if user.ID == id {
			delete(r.users, name)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *memorySessionRepo) Save(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memorySessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *memorySessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memorySessionRepo) DeleteExpired(ctx context.Context, limit int) (int, error) {
	return 0, nil
}

func newTestUseCase() (*UseCase, *memoryUserRepo, *memorySessionRepo) {
	users := newMemoryUserRepo()
	sessions := newMemorySessionRepo()
	return New(users, sessions, time.Hour, nil), users, sessions
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	uc, users, _ := newTestUseCase()

	user, err := uc.Register(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.HashedPassword == "pw1" {
		t.Fatal("password must not be stored in the clear")
	}

	t.Run("duplicate username", func(t *testing.T) {
		if _, err := uc.Register(ctx, "alice", "pw2"); !errors.Is(err, domain.ErrUsernameTaken) {
			t.Fatalf("expected ErrUsernameTaken, got %v", err)
		}
		if len(users.users) != 1 {
			t.Fatalf("store must hold exactly one alice, has %d users", len(users.users))
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestUseCase()

	if _, err := uc.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	session, err := uc.Login(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.ID == "" || session.Username != "alice" {
		t.Fatalf("unexpected session: %+v", session)
	}

	t.Run("wrong password and unknown user fail identically", func(t *testing.T) {
		_, badPassword := uc.Login(ctx, "alice", "wrong")
		_, badUser := uc.Login(ctx, "nobody", "pw1")
		if !errors.Is(badPassword, domain.ErrInvalidCredentials) {
			t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", badPassword)
		}
		if !errors.Is(badUser, domain.ErrInvalidCredentials) {
			t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", badUser)
		}
		if badPassword.Error() != badUser.Error() {
			t.Fatalf("failure shapes differ: %q vs %q", badPassword, badUser)
		}
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	uc, _, sessions := newTestUseCase()

	if _, err := uc.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	session, err := uc.Login(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := uc.Logout(ctx, session.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := sessions.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("session must be destroyed, got %v", err)
	}

	// Idempotent: logging out again (or with no session) succeeds.
	if err := uc.Logout(ctx, session.ID); err != nil {
		t.Fatalf("repeated Logout failed: %v", err)
	}
	if err := uc.Logout(ctx, ""); err != nil {
		t.Fatalf("Logout without a session failed: %v", err)
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	uc, _, sessions := newTestUseCase()

	if _, err := uc.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	session, err := uc.Login(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	user, err := uc.Resolve(ctx, session.ID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("resolved wrong user: %+v", user)
	}

	t.Run("unknown session", func(t *testing.T) {
		if _, err := uc.Resolve(ctx, "no-such-session"); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("expired session", func(t *testing.T) {
		stale := &domain.Session{
			ID:        "stale",
			Username:  "alice",
			CreatedAt: time.Now().Add(-2 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		if err := sessions.Save(ctx, stale); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if _, err := uc.Resolve(ctx, "stale"); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
