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

package lostfound

import (
	"log/slog"

	"github.com/poiesic/lostfound/ai"
	"github.com/poiesic/lostfound/ai/openai"
	"github.com/poiesic/lostfound/match"
	"github.com/poiesic/lostfound/notify"
	"github.com/poiesic/lostfound/report"
	"github.com/poiesic/lostfound/storage"
	"github.com/poiesic/lostfound/storage/badger"
)

// Database wires the badger repositories to an embedding provider.
type Database struct {
	repos    *badger.Repositories
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig configures the OpenAI-compatible embedding provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The Database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory; the path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens (or creates) the database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	repos, err := badger.OpenRepositories(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
	}

	return &Database{
		repos:    repos,
		provider: provider,
		logger:   options.logger.With("component", "database"),
	}, nil
}

// Close releases the provider, then the repositories and backend.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.repos.Close(); err != nil {
		db.logger.Error("error closing repositories", "err", err)
		return err
	}
	return nil
}

func (db *Database) ItemRepository() storage.ItemRepository {
	return db.repos.Items
}

func (db *Database) UserRepository() storage.UserRepository {
	return db.repos.Users
}

func (db *Database) NotificationRepository() storage.NotificationRepository {
	return db.repos.Notifications
}

// NewSemanticMatcher creates a matcher over the database's embedder.
func (db *Database) NewSemanticMatcher(opts ...match.Option) (*match.SemanticMatcher, error) {
	return match.NewSemanticMatcher(db.provider.Embedder(), opts...)
}

// NewNotifier creates a coarse notifier that reads lost items and owners from
// the database. Release must be called on the result.
func (db *Database) NewNotifier(mailer notify.Mailer, opts ...notify.Option) (*notify.Notifier, error) {
	return notify.NewNotifier(db.repos.Items, db.repos.Users, mailer, opts...)
}

// NewReporter creates a reporter over the database's repositories.
func (db *Database) NewReporter(matcher *match.SemanticMatcher, opts ...report.Option) (*report.Reporter, error) {
	return report.NewReporter(db.repos.Items, db.repos.Users, db.repos.Notifications, matcher, opts...)
}
