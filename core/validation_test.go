package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validItem() *Item {
	return &Item{
		Title:       "Black Wallet",
		Description: "leather wallet with cards",
		Category:    "Wallet",
		Location:    "Library",
		Type:        ItemTypeLost,
		CreatedAt:   time.Now().UTC().Add(-time.Minute),
		OwnerId:     1,
	}
}

func TestValidateItem(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Item)
		wantErr error
	}{
		{name: "valid item", mutate: func(*Item) {}},
		{name: "empty description allowed", mutate: func(i *Item) { i.Description = "" }},
		{name: "empty location allowed", mutate: func(i *Item) { i.Location = "" }},
		{name: "empty title", mutate: func(i *Item) { i.Title = "" }, wantErr: ErrInvalidItem},
		{name: "empty category", mutate: func(i *Item) { i.Category = "" }, wantErr: ErrInvalidItem},
		{name: "title too long", mutate: func(i *Item) { i.Title = strings.Repeat("x", MaxTitleLength+1) }, wantErr: ErrInvalidItem},
		{name: "missing owner", mutate: func(i *Item) { i.OwnerId = 0 }, wantErr: ErrInvalidItem},
		{name: "invalid type", mutate: func(i *Item) { i.Type = 0 }, wantErr: ErrInvalidItemType},
		{name: "future timestamp", mutate: func(i *Item) { i.CreatedAt = time.Now().Add(time.Hour) }, wantErr: ErrInvalidTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(item)
			err := ValidateItem(item)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidItem)
		})
	}

	t.Run("nil item", func(t *testing.T) {
		assert.ErrorIs(t, ValidateItem(nil), ErrInvalidItem)
	})
}

func TestValidateUser(t *testing.T) {
	assert.NoError(t, ValidateUser(&User{Name: "Ada", Email: "ada@example.com"}))
	assert.NoError(t, ValidateUser(&User{Name: "Ada"}), "email is optional")
	assert.ErrorIs(t, ValidateUser(&User{Email: "ada@example.com"}), ErrInvalidUser)
	assert.ErrorIs(t, ValidateUser(&User{Name: "Ada", Email: "not-an-email"}), ErrInvalidUser)
	assert.ErrorIs(t, ValidateUser(nil), ErrInvalidUser)
}

func TestValidateItemType(t *testing.T) {
	assert.NoError(t, ValidateItemType(ItemTypeLost))
	assert.NoError(t, ValidateItemType(ItemTypeFound))
	assert.ErrorIs(t, ValidateItemType(3), ErrInvalidItemType)
}
