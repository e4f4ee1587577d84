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

// Package storage provides the storage abstraction layer for lostfound.
//
// This package defines repository interfaces that decouple storage from the
// matching and reporting logic, so that tests and alternative backends can be
// swapped in. The BadgerDB implementation lives in storage/badger:
//
//	backend, err := badger.OpenBackend(path, false)
//	items, err := badger.NewItemRepository(backend)
//
// # Serialization
//
// Records are stored in the compact MUS binary format (github.com/mus-format/mus-go).
// Fields are written in declaration order; timestamps are stored as Unix
// microseconds in UTC.
//
// # Errors
//
// Repositories return the sentinel errors in errors.go, possibly wrapped.
// Callers should test for them with errors.Is.
package storage
