package match

import (
	"context"
	"sort"

	"github.com/poiesic/lostfound/core"
)

// Matcher is the capability shared by both matching pipelines: narrow a corpus
// to the candidates a query may be compared with, then score them.
type Matcher interface {
	// SelectCandidates applies the matcher's candidate rule to corpus.
	// It never scores and never fails.
	SelectCandidates(query Query, corpus []*core.Item) []*core.Item

	// Score compares query with every candidate and returns the ones above the
	// matcher's threshold, best first. Equal scores keep candidate order.
	Score(ctx context.Context, query Query, candidates []*core.Item) ([]core.ScoredMatch, error)
}

var (
	_ Matcher = (*SemanticMatcher)(nil)
	_ Matcher = (*CoarseMatcher)(nil)
)

// Run selects candidates with m and scores them. Scoring is skipped entirely
// when no candidate survives selection.
func Run(ctx context.Context, m Matcher, query Query, corpus []*core.Item) ([]core.ScoredMatch, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	candidates := m.SelectCandidates(query, corpus)
	if len(candidates) == 0 {
		return []core.ScoredMatch{}, nil
	}
	return m.Score(ctx, query, candidates)
}

// rank keeps scored candidates strictly above threshold and orders them by
// descending score with a stable sort.
func rank(scored []core.ScoredMatch, threshold float64) []core.ScoredMatch {
	kept := make([]core.ScoredMatch, 0, len(scored))
	for _, s := range scored {
		if s.Score > threshold {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}
