package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lostfound/core"
	"github.com/poiesic/lostfound/storage"
)

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) (*ItemRepository, error) {
	idSeq, err := backend.GetSequence(itemIDSeq)
	if err != nil {
		return nil, err
	}

	return &ItemRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ItemRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ItemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddItems stores one or more items.
func (r *ItemRepository) AddItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error) {
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, item := range items {
			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			item.Id = id

			if item.CreatedAt.IsZero() {
				item.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
			}
			if item.ImageRef == "" {
				item.ImageRef = core.DefaultImageRef
			}

			if err := tx.Set(makeItemKey(item.Id), storage.MarshalItem(item)); err != nil {
				return err
			}

			idValue := storage.MarshalID(item.Id)
			if err := tx.Set(makeItemCategoryKey(item.Type, item.Category, item.Id), idValue); err != nil {
				return err
			}
			if err := tx.Set(makeItemOwnerKey(item.OwnerId, item.Id), idValue); err != nil {
				return err
			}
		}
		return nil
	}, true)

	return items, err
}

// GetItem retrieves a single item by ID.
func (r *ItemRepository) GetItem(ctx context.Context, id core.ID) (*core.Item, error) {
	var result *core.Item
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readItem(tx, id)
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

// GetItems returns every stored item in ID order.
func (r *ItemRepository) GetItems(ctx context.Context) ([]*core.Item, error) {
	var results []*core.Item
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(itemPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var item *core.Item
			err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalItem(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, item)
		}
		return nil
	}, false)
	return results, err
}

// GetItemsByOwner returns the items reported by owner in ID order.
func (r *ItemRepository) GetItemsByOwner(ctx context.Context, owner core.ID) ([]*core.Item, error) {
	return r.itemsByIndex(ctx, makePartialItemOwnerKey(owner))
}

// LostItemsByCategory returns lost items whose category equals category exactly.
func (r *ItemRepository) LostItemsByCategory(ctx context.Context, category string) ([]*core.Item, error) {
	return r.itemsByIndex(ctx, makePartialItemCategoryKey(core.ItemTypeLost, category))
}

// DeleteItems removes items and their index entries.
func (r *ItemRepository) DeleteItems(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := readItem(tx, id)
			if err != nil {
				return err
			}
			if item == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeItemCategoryKey(item.Type, item.Category, item.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeItemOwnerKey(item.OwnerId, item.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeItemKey(item.Id)); err != nil {
				return err
			}
		}
		return nil
	}, true)
}

// itemsByIndex loads the items referenced by the index entries under prefix.
func (r *ItemRepository) itemsByIndex(ctx context.Context, prefix []byte) ([]*core.Item, error) {
	var results []*core.Item
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		ids, err := scanIDs(tx, prefix)
		if err != nil {
			return err
		}
		for _, id := range ids {
			item, err := readItem(tx, id)
			if err != nil {
				return err
			}
			if item != nil {
				results = append(results, item)
			}
		}
		return nil
	}, false)
	return results, err
}

func readItem(tx *badger.Txn, id core.ID) (*core.Item, error) {
	return readValue(tx, makeItemKey(id), storage.UnmarshalItem)
}
