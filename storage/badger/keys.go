package badger

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/poiesic/lostfound/core"
)

// Every prefix ends in ':' so that no prefix is a prefix of another.
const (
	itemPrefix         = "item:"
	itemCategoryPrefix = "itemcat:"
	itemOwnerPrefix    = "itemown:"
	itemIDSeq          = "seq:item"
	userPrefix         = "user:"
	userEmailPrefix    = "usermail:"
	userIDSeq          = "seq:user"
	notificationPrefix = "notif:"
	notificationUser   = "notifusr:"
)

func appendID(buf []byte, id core.ID) []byte {
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// IDs are written BigEndian so that key order is ID order.
func makeItemKey(id core.ID) []byte {
	return appendID([]byte(itemPrefix), id)
}

// makePartialItemCategoryKey covers all items of one type in one category.
// The category is NUL terminated so "Watch" never matches "Watches".
func makePartialItemCategoryKey(t core.ItemType, category string) []byte {
	buf := make([]byte, 0, len(itemCategoryPrefix)+1+len(category)+1+8)
	buf = append(buf, itemCategoryPrefix...)
	buf = append(buf, byte(t))
	buf = append(buf, category...)
	return append(buf, 0)
}

func makeItemCategoryKey(t core.ItemType, category string, id core.ID) []byte {
	return appendID(makePartialItemCategoryKey(t, category), id)
}

func makePartialItemOwnerKey(owner core.ID) []byte {
	return appendID([]byte(itemOwnerPrefix), owner)
}

func makeItemOwnerKey(owner, id core.ID) []byte {
	return appendID(makePartialItemOwnerKey(owner), id)
}

func makeUserKey(id core.ID) []byte {
	return appendID([]byte(userPrefix), id)
}

// normalizeEmail is the form email addresses are indexed under.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func makeUserEmailKey(email string) []byte {
	return []byte(userEmailPrefix + normalizeEmail(email))
}

func makeNotificationKey(id core.ID) []byte {
	return appendID([]byte(notificationPrefix), id)
}

func makePartialNotificationUserKey(recipient core.ID) []byte {
	return appendID([]byte(notificationUser), recipient)
}

// makeNotificationUserKey orders a recipient's notifications by creation time.
func makeNotificationUserKey(recipient core.ID, createdAt time.Time, id core.ID) []byte {
	buf := makePartialNotificationUserKey(recipient)
	buf = binary.BigEndian.AppendUint64(buf, uint64(createdAt.UnixMicro()))
	return appendID(buf, id)
}
