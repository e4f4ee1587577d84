package notify

import (
	"context"

	"github.com/poiesic/lostfound/core"
)

// CandidateSource supplies the lost items a found item is compared with.
type CandidateSource interface {
	// LostItemsByCategory returns lost items whose category equals category.
	LostItemsByCategory(ctx context.Context, category string) ([]*core.Item, error)
}

// UserLookup resolves the owner of a lost item.
type UserLookup interface {
	// GetUser returns storage.ErrNotFound for unknown users.
	GetUser(ctx context.Context, id core.ID) (*core.User, error)
}

// Mailer delivers match alerts.
type Mailer interface {
	// SendMatchAlert tells the owner at address to that found may be their
	// lost item titled lostTitle.
	SendMatchAlert(ctx context.Context, to string, found *core.Item, lostTitle string) error
}
