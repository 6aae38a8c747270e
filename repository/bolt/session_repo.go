package bolt

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ruslanbektulqinov01/todo-api/domain"
	"github.com/ruslanbektulqinov01/todo-api/repository"
)

type sessionRepository struct {
	store *Store
	ttl   time.Duration
}

// NewSessionRepository returns a file-backed session repository. Bolt
// has no key expiry, so Get filters expired entries and DeleteExpired
// sweeps them out of the bucket.
func NewSessionRepository(store *Store, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{store: store, ttl: ttl}
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.ExpiresAt.Before(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(session.ID), payload)
	})
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := r.store.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSessions).Get([]byte(id))
		if raw == nil {
			return domain.ErrSessionNotFound
		}
		return json.Unmarshal(raw, &session)
	})
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = r.Delete(ctx, id)
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(id))
	})
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	now := time.Now()
	removed := 0
	err := r.store.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSessions).Cursor()
		for k, v := c.First(); k != nil && removed < limit; k, v = c.Next() {
			var session domain.Session
			if err := json.Unmarshal(v, &session); err != nil {
				continue
			}
			if session.IsExpired(now) {
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}
