package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/dtroode/parley-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const (
	userByEmailPrefix = "user:email:"
	userByIDPrefix    = "user:id:"
)

type userRecord struct {
	ID           string `cbor:"id"`
	Email        string `cbor:"email"`
	PasswordHash string `cbor:"password"`
	CreatedAt    int64  `cbor:"created_at"`
}

func (r userRecord) toModel() (model.User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("invalid user id %q: %w", r.ID, err)
	}
	return model.User{
		ID:           id,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    time.UnixMilli(r.CreatedAt).UTC(),
	}, nil
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{db: conn.db}
}

// Create stores the user under its id and indexes the email. The email
// check and both writes share one transaction, so concurrent signups
// for the same email cannot both succeed.
func (r *UserRepository) Create(_ context.Context, user model.User) (model.User, error) {
	data, err := marshal(userRecord{
		ID:           user.ID.String(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to encode user: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(userByEmailPrefix + user.Email)
		if _, err := txn.Get(emailKey); err == nil {
			return model.ErrDuplicateResource
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(emailKey, []byte(user.ID.String())); err != nil {
			return err
		}
		return txn.Set([]byte(userByIDPrefix+user.ID.String()), data)
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateResource) || errors.Is(err, badger.ErrConflict) {
			return model.User{}, model.ErrDuplicateResource
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (model.User, error) {
	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userByEmailPrefix + email))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getUser(txn, string(id), &rec)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return rec.toModel()
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return getUser(txn, id.String(), &rec)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return rec.toModel()
}

func (r *UserRepository) List(_ context.Context) ([]model.User, error) {
	users := make([]model.User, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userByIDPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec userRecord
			if err := it.Item().Value(func(val []byte) error {
				return unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			user, err := rec.toModel()
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID.String() < users[j].ID.String()
	})

	return users, nil
}

func getUser(txn *badger.Txn, id string, rec *userRecord) error {
	item, err := txn.Get([]byte(userByIDPrefix + id))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshal(val, rec)
	})
}
