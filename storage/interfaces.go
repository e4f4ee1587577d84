// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"

	"github.com/poiesic/lostfound/core"
)

type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	Close() error
}

type ItemRepository interface {
	Repository
	// AddItems stores one or more items.
	// Generates IDs from a sequence, sets CreatedAt if zero and ImageRef if empty.
	// Returns the items with generated fields populated.
	AddItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error)

	// GetItem retrieves a single item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id core.ID) (*core.Item, error)

	// GetItems returns every stored item in ID order, which is report order.
	GetItems(ctx context.Context) ([]*core.Item, error)

	// GetItemsByOwner returns the items reported by owner in ID order.
	GetItemsByOwner(ctx context.Context, owner core.ID) ([]*core.Item, error)

	// LostItemsByCategory returns lost items whose category equals category
	// exactly, in ID order.
	LostItemsByCategory(ctx context.Context, category string) ([]*core.Item, error)

	// DeleteItems removes items and their index entries.
	// Returns ErrNotFound if any item doesn't exist.
	DeleteItems(ctx context.Context, ids ...core.ID) error
}

type UserRepository interface {
	Repository
	// AddUsers stores one or more users with IDs generated from a sequence.
	// Returns ErrDuplicateKey if an email address is already registered.
	AddUsers(ctx context.Context, users ...*core.User) ([]*core.User, error)

	// GetUser retrieves a single user by ID.
	// Returns ErrNotFound if the user doesn't exist.
	GetUser(ctx context.Context, id core.ID) (*core.User, error)

	// FindUserByEmail finds a user by email address, ignoring case.
	// Returns ErrNotFound if no user has that address.
	FindUserByEmail(ctx context.Context, email string) (*core.User, error)

	// GetUsers returns every user in ID order.
	GetUsers(ctx context.Context) ([]*core.User, error)
}

type NotificationRepository interface {
	Repository
	// AddNotifications stores notifications.
	// Notifications with ID=0 get core.NotificationID(recipient, match item), so
	// a recipient is told about a given item at most once; re-adding an existing
	// notification leaves the stored one, including its read flag, untouched.
	AddNotifications(ctx context.Context, notifications ...*core.Notification) ([]*core.Notification, error)

	// GetNotificationsForUser returns the recipient's notifications, newest first.
	GetNotificationsForUser(ctx context.Context, recipient core.ID) ([]*core.Notification, error)

	// MarkNotificationsRead marks the given notifications of recipient as read.
	// IDs belonging to other users or not found are ignored.
	// Returns the number of notifications changed.
	MarkNotificationsRead(ctx context.Context, recipient core.ID, ids ...core.ID) (int, error)
}
