package match

import (
	"fmt"

	"github.com/poiesic/lostfound/core"
)

// Query is the comparable part of a report.
// Missing text fields are treated as empty strings; only Type is required.
type Query struct {
	Title       string
	Description string
	Category    string
	Type        core.ItemType
}

// QueryFromItem builds a Query from a stored or pending item.
func QueryFromItem(item *core.Item) Query {
	return Query{
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		Type:        item.Type,
	}
}

// Validate fails fast on a query whose type is neither lost nor found.
func (q Query) Validate() error {
	if err := core.ValidateItemType(q.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedQuery, err)
	}
	return nil
}

// Text returns the query's comparable text.
func (q Query) Text() string {
	return ComparableText(q.Title, q.Description, q.Category)
}

// ComparableText joins title, description and category with single spaces, in
// that order. Category is part of the text so that near-identical titles in
// different categories ("Phone" vs "Phone Case") drift apart.
func ComparableText(title, description, category string) string {
	return title + " " + description + " " + category
}

// ItemText returns the comparable text of an item.
func ItemText(item *core.Item) string {
	return ComparableText(item.Title, item.Description, item.Category)
}

// SelectOpposite returns, in corpus order, every item whose type differs from t.
func SelectOpposite(corpus []*core.Item, t core.ItemType) []*core.Item {
	candidates := make([]*core.Item, 0, len(corpus))
	for _, item := range corpus {
		if item == nil {
			continue
		}
		if item.Type != t {
			candidates = append(candidates, item)
		}
	}
	return candidates
}

// SelectLostInCategory returns, in corpus order, every lost item whose category
// equals category exactly. No case folding or trimming is applied.
func SelectLostInCategory(corpus []*core.Item, category string) []*core.Item {
	candidates := make([]*core.Item, 0, len(corpus))
	for _, item := range corpus {
		if item == nil {
			continue
		}
		if item.Type == core.ItemTypeLost && item.Category == category {
			candidates = append(candidates, item)
		}
	}
	return candidates
}

// Items strips the scores from ranked matches, preserving order.
func Items(matches []core.ScoredMatch) []*core.Item {
	items := make([]*core.Item, len(matches))
	for i, m := range matches {
		items[i] = m.Item
	}
	return items
}
