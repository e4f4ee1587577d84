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

package core

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Field limits mirror the columns of the reporting forms.
const (
	MaxTitleLength    = 100
	MaxCategoryLength = 50
	MaxLocationLength = 100
	MaxImageRefLength = 100
	MaxNameLength     = 150
	MaxEmailLength    = 150
)

// ValidateItem validates an Item according to domain rules.
//
// Validation rules:
//   - Title and Category must not be empty
//   - Type must be lost or found
//   - OwnerId must be set
//   - CreatedAt must not be in the future
//
// NOT validated:
//   - Description and Location (may be empty; they compose to empty text)
//   - ID (0 is valid until the repository assigns one)
func ValidateItem(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if err := ValidateItemType(item.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}

	err := validation.ValidateStruct(item,
		validation.Field(&item.Title, validation.Required, validation.RuneLength(1, MaxTitleLength)),
		validation.Field(&item.Category, validation.Required, validation.RuneLength(1, MaxCategoryLength)),
		validation.Field(&item.Location, validation.RuneLength(0, MaxLocationLength)),
		validation.Field(&item.ImageRef, validation.RuneLength(0, MaxImageRefLength)),
		validation.Field(&item.OwnerId, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}

	if !IsValidTimestamp(item.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateUser validates a User. Email is optional but must be well formed when present.
func ValidateUser(user *User) error {
	if user == nil {
		return fmt.Errorf("%w: user is nil", ErrInvalidUser)
	}

	err := validation.ValidateStruct(user,
		validation.Field(&user.Name, validation.Required, validation.RuneLength(1, MaxNameLength)),
		validation.Field(&user.Email, validation.RuneLength(0, MaxEmailLength), is.EmailFormat),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}
	return nil
}

// ValidateItemType validates that an ItemType has a valid value.
func ValidateItemType(t ItemType) error {
	if t != ItemTypeLost && t != ItemTypeFound {
		return fmt.Errorf("%w: value %d", ErrInvalidItemType, t)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
