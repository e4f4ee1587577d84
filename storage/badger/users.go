package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lostfound/core"
	"github.com/poiesic/lostfound/storage"
)

// UserRepository implements storage.UserRepository for BadgerDB.
type UserRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(backend *Backend) (*UserRepository, error) {
	idSeq, err := backend.GetSequence(userIDSeq)
	if err != nil {
		return nil, err
	}

	return &UserRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *UserRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *UserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddUsers stores one or more users. Email addresses are unique ignoring case;
// users without one are always accepted.
func (r *UserRepository) AddUsers(ctx context.Context, users ...*core.User) ([]*core.User, error) {
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, user := range users {
			user.Email = strings.TrimSpace(user.Email)
			if user.HasEmail() {
				emailKey := makeUserEmailKey(user.Email)
				_, err := tx.Get(emailKey)
				if err == nil {
					return fmt.Errorf("%w: email %q already registered", storage.ErrDuplicateKey, user.Email)
				}
				if err != badger.ErrKeyNotFound {
					return err
				}
			}

			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			user.Id = id
			if user.CreatedAt.IsZero() {
				user.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
			}

			if err := tx.Set(makeUserKey(user.Id), storage.MarshalUser(user)); err != nil {
				return err
			}
			if user.HasEmail() {
				if err := tx.Set(makeUserEmailKey(user.Email), storage.MarshalID(user.Id)); err != nil {
					return err
				}
			}
		}
		return nil
	}, true)

	return users, err
}

// GetUser retrieves a single user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id core.ID) (*core.User, error) {
	var result *core.User
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readUser(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindUserByEmail finds a user by email address, ignoring case.
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	if normalizeEmail(email) == "" {
		return nil, storage.ErrNotFound
	}

	var result *core.User
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		id, err := readValue(tx, makeUserEmailKey(email), func(val []byte) (*core.ID, error) {
			id, err := storage.UnmarshalID(val)
			return &id, err
		})
		if err != nil {
			return err
		}
		if id == nil {
			return storage.ErrNotFound
		}

		result, err = readUser(tx, *id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetUsers returns every user in ID order.
func (r *UserRepository) GetUsers(ctx context.Context) ([]*core.User, error) {
	var results []*core.User
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(userPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var user *core.User
			err := iter.Item().Value(func(val []byte) error {
				var err error
				user, err = storage.UnmarshalUser(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, user)
		}
		return nil
	}, false)
	return results, err
}

func readUser(tx *badger.Txn, id core.ID) (*core.User, error) {
	return readValue(tx, makeUserKey(id), storage.UnmarshalUser)
}
