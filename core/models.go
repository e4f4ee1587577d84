package core

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NotificationID derives the identifier of the notification telling recipient
// about matchItem. Reporting the same pair twice yields the same ID.
func NotificationID(recipient, matchItem ID) ID {
	return IDFromContent(fmt.Sprintf("notification:%d:%d", recipient, matchItem))
}

// ItemType distinguishes lost reports from found reports.
type ItemType int

const (
	// ItemTypeLost marks a report of something its owner lost.
	ItemTypeLost ItemType = iota + 1
	// ItemTypeFound marks a report of something its owner found.
	ItemTypeFound
)

// String returns the lowercase name used in messages and on the wire.
func (t ItemType) String() string {
	switch t {
	case ItemTypeLost:
		return "lost"
	case ItemTypeFound:
		return "found"
	default:
		return fmt.Sprintf("ItemType(%d)", int(t))
	}
}

// Opposite returns the type a report of t is matched against.
// Invalid types return themselves.
func (t ItemType) Opposite() ItemType {
	switch t {
	case ItemTypeLost:
		return ItemTypeFound
	case ItemTypeFound:
		return ItemTypeLost
	default:
		return t
	}
}

// ParseItemType parses "lost" or "found" (case-insensitive).
func ParseItemType(s string) (ItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lost":
		return ItemTypeLost, nil
	case "found":
		return ItemTypeFound, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidItemType, s)
	}
}

// DefaultImageRef is stored when a report carries no image.
const DefaultImageRef = "default.jpg"

// Item is a lost or found report.
// Items are immutable once stored; the owner may only delete (resolve) them.
type Item struct {
	Id          ID
	Title       string
	Description string
	Category    string
	Location    string
	Type        ItemType
	CreatedAt   time.Time
	OwnerId     ID
	ImageRef    string // Stored but never compared
}

// User is the owner of reports and the recipient of notifications.
type User struct {
	Id        ID
	Name      string
	Email     string // Empty when no contact address is on file
	CreatedAt time.Time
}

// HasEmail reports whether the user can receive email alerts.
func (u *User) HasEmail() bool {
	return u != nil && strings.TrimSpace(u.Email) != ""
}

// Notification is an in-app alert about a matching counterpart report.
type Notification struct {
	Id          ID
	RecipientId ID
	MatchItemId ID // The report that produced the match
	Message     string
	Read        bool
	CreatedAt   time.Time
}

// ScoredMatch pairs a candidate item with its similarity to a query.
// Scores are produced fresh by every matching call and never stored.
type ScoredMatch struct {
	Item  *Item
	Score float64
}
