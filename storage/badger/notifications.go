package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lostfound/core"
	"github.com/poiesic/lostfound/storage"
)

// NotificationRepository implements storage.NotificationRepository for BadgerDB.
type NotificationRepository struct {
	backend *Backend
}

var _ storage.NotificationRepository = (*NotificationRepository)(nil)

// NewNotificationRepository creates a new NotificationRepository.
// Notification IDs are content based, so no sequence is needed.
func NewNotificationRepository(backend *Backend) *NotificationRepository {
	return &NotificationRepository{backend: backend}
}

// Close is a no-op; the backend owns all resources.
func (r *NotificationRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *NotificationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddNotifications stores notifications that do not exist yet.
// Existing ones are returned as stored.
func (r *NotificationRepository) AddNotifications(ctx context.Context, notifications ...*core.Notification) ([]*core.Notification, error) {
	results := make([]*core.Notification, 0, len(notifications))
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, n := range notifications {
			if n.Id == 0 {
				n.Id = core.NotificationID(n.RecipientId, n.MatchItemId)
			}

			existing, err := readNotification(tx, n.Id)
			if err != nil {
				return err
			}
			if existing != nil {
				results = append(results, existing)
				continue
			}

			if n.CreatedAt.IsZero() {
				n.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
			}
			if err := r.write(tx, n); err != nil {
				return err
			}
			results = append(results, n)
		}
		return nil
	}, true)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetNotificationsForUser returns the recipient's notifications, newest first.
func (r *NotificationRepository) GetNotificationsForUser(ctx context.Context, recipient core.ID) ([]*core.Notification, error) {
	var results []*core.Notification
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		ids, err := scanIDs(tx, makePartialNotificationUserKey(recipient))
		if err != nil {
			return err
		}
		// Index order is oldest first
		for i := len(ids) - 1; i >= 0; i-- {
			n, err := readNotification(tx, ids[i])
			if err != nil {
				return err
			}
			if n != nil {
				results = append(results, n)
			}
		}
		return nil
	}, false)
	return results, err
}

// MarkNotificationsRead marks the given notifications of recipient as read.
func (r *NotificationRepository) MarkNotificationsRead(ctx context.Context, recipient core.ID, ids ...core.ID) (int, error) {
	changed := 0
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			n, err := readNotification(tx, id)
			if err != nil {
				return err
			}
			if n == nil || n.RecipientId != recipient || n.Read {
				continue
			}
			n.Read = true
			if err := tx.Set(makeNotificationKey(n.Id), storage.MarshalNotification(n)); err != nil {
				return err
			}
			changed++
		}
		return nil
	}, true)
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func (r *NotificationRepository) write(tx *badger.Txn, n *core.Notification) error {
	if err := tx.Set(makeNotificationKey(n.Id), storage.MarshalNotification(n)); err != nil {
		return err
	}
	return tx.Set(makeNotificationUserKey(n.RecipientId, n.CreatedAt, n.Id), storage.MarshalID(n.Id))
}

func readNotification(tx *badger.Txn, id core.ID) (*core.Notification, error) {
	return readValue(tx, makeNotificationKey(id), storage.UnmarshalNotification)
}
