package bolt

import (
	"context"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/ruslanbektulqinov01/todo-api/domain"
	"github.com/ruslanbektulqinov01/todo-api/repository"
)

// userRecord is the persisted encoding. domain.User hides the password
// hash from API responses, so the bucket stores its own shape.
type userRecord struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password"`
}

func (rec userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:             rec.ID,
		Username:       rec.Username,
		HashedPassword: rec.HashedPassword,
	}
}

func encodeUser(user *domain.User) ([]byte, error) {
	return json.Marshal(userRecord{
		ID:             user.ID,
		Username:       user.Username,
		HashedPassword: user.HashedPassword,
	})
}

func decodeUser(raw []byte) (*domain.User, error) {
	if raw == nil {
		return nil, domain.ErrUserNotFound
	}
	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

type userRepository struct {
	store *Store
}

// NewUserRepository returns a file-backed user repository.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, username, hashedPassword string) (*domain.User, error) {
	user := domain.User{
		Username:       username,
		HashedPassword: hashedPassword,
	}
	err := r.store.db.Update(func(tx *bolt.Tx) error {
		names := tx.Bucket(bucketUsernames)
		if names.Get([]byte(username)) != nil {
			return domain.ErrUsernameTaken
		}

		users := tx.Bucket(bucketUsers)
		seq, err := users.NextSequence()
		if err != nil {
			return err
		}
		user.ID = int64(seq)

		payload, err := encodeUser(&user)
		if err != nil {
			return err
		}
		if err := users.Put(itob(user.ID), payload); err != nil {
			return err
		}
		return names.Put([]byte(username), itob(user.ID))
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user *domain.User
	err := r.store.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketUsernames).Get([]byte(username))
		if id == nil {
			return domain.ErrUserNotFound
		}
		var err error
		user, err = decodeUser(tx.Bucket(bucketUsers).Get(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := r.store.db.View(func(tx *bolt.Tx) error {
		var err error
		user, err = decodeUser(tx.Bucket(bucketUsers).Get(itob(id)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user, the username index entry and every task the
// user owns, all within one transaction.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket(bucketUsers)
		raw := users.Get(itob(id))
		if raw == nil {
			return domain.ErrUserNotFound
		}
		user, err := decodeUser(raw)
		if err != nil {
			return err
		}

		if err := users.Delete(itob(id)); err != nil {
			return err
		}
		if err := tx.Bucket(bucketUsernames).Delete([]byte(user.Username)); err != nil {
			return err
		}

		tasks := tx.Bucket(bucketTasks)
		c := tasks.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec taskRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			if rec.OwnerID == id {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
