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

package report

import "errors"

var (
	// ErrItemRepositoryRequired is returned when an item repository is not provided.
	ErrItemRepositoryRequired = errors.New("item repository required")

	// ErrUserRepositoryRequired is returned when a user repository is not provided.
	ErrUserRepositoryRequired = errors.New("user repository required")

	// ErrNotificationRepositoryRequired is returned when a notification repository is not provided.
	ErrNotificationRepositoryRequired = errors.New("notification repository required")

	// ErrMatcherRequired is returned when a semantic matcher is not provided.
	ErrMatcherRequired = errors.New("semantic matcher required")

	// ErrUnknownUser is returned when the acting user does not exist.
	ErrUnknownUser = errors.New("unknown user")

	// ErrNotOwner is returned when a user tries to resolve someone else's item.
	ErrNotOwner = errors.New("item belongs to another user")
)
