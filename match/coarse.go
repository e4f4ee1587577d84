package match

import (
	"context"
	"fmt"
	"math"

	"github.com/poiesic/lostfound/core"
)

// DefaultCoarseThreshold is the combined sequence ratio a lost item must exceed
// before its owner is emailed about a found item.
const DefaultCoarseThreshold = 0.50

// CoarseMatcher is the cheap matcher behind email alerts: only lost items in
// exactly the same category are compared, by character sequence similarity.
type CoarseMatcher struct {
	threshold float64
}

// CoarseOption configures a CoarseMatcher.
type CoarseOption func(*CoarseMatcher) error

// WithCoarseThreshold overrides DefaultCoarseThreshold. Ratios lie in [0, 1].
func WithCoarseThreshold(threshold float64) CoarseOption {
	return func(m *CoarseMatcher) error {
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return fmt.Errorf("%w: coarse threshold %v outside [0, 1]", ErrInvalidThreshold, threshold)
		}
		m.threshold = threshold
		return nil
	}
}

// NewCoarseMatcher creates a coarse matcher.
func NewCoarseMatcher(opts ...CoarseOption) (*CoarseMatcher, error) {
	m := &CoarseMatcher{threshold: DefaultCoarseThreshold}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Threshold returns the combined score a pair must exceed.
func (m *CoarseMatcher) Threshold() float64 {
	return m.threshold
}

// Evaluate returns the lost items of corpus that qualify for an alert about
// found, best first.
func (m *CoarseMatcher) Evaluate(ctx context.Context, found *core.Item, corpus []*core.Item) ([]core.ScoredMatch, error) {
	return Run(ctx, m, QueryFromItem(found), corpus)
}

// SelectCandidates keeps lost items whose category equals the query's exactly.
func (m *CoarseMatcher) SelectCandidates(query Query, corpus []*core.Item) []*core.Item {
	return SelectLostInCategory(corpus, query.Category)
}

// Score computes CombinedScore for every candidate and keeps those above the threshold.
func (m *CoarseMatcher) Score(_ context.Context, query Query, candidates []*core.Item) ([]core.ScoredMatch, error) {
	scored := make([]core.ScoredMatch, len(candidates))
	for i, c := range candidates {
		scored[i] = core.ScoredMatch{Item: c, Score: CombinedScore(query, c)}
	}
	return rank(scored, m.threshold), nil
}

// CombinedScore is the mean of the title ratio and the description ratio.
func CombinedScore(query Query, candidate *core.Item) float64 {
	title := SequenceRatio(query.Title, candidate.Title)
	description := SequenceRatio(query.Description, candidate.Description)
	return (title + description) / 2
}
