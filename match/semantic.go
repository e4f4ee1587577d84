package match

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/poiesic/lostfound/ai"
	"github.com/poiesic/lostfound/core"
)

// DefaultSemanticThreshold is the cosine similarity a candidate must exceed.
const DefaultSemanticThreshold = 0.30

// SemanticMatcher matches a report against opposite-type reports by cosine
// similarity of sentence embeddings.
type SemanticMatcher struct {
	embedder  ai.Embedder
	threshold float64
	logger    *slog.Logger
}

// Option configures a SemanticMatcher.
type Option func(*SemanticMatcher) error

// WithSemanticThreshold overrides DefaultSemanticThreshold.
// Cosine similarity lies in [-1, 1], so the threshold must too.
func WithSemanticThreshold(threshold float64) Option {
	return func(m *SemanticMatcher) error {
		if math.IsNaN(threshold) || threshold < -1 || threshold > 1 {
			return fmt.Errorf("%w: semantic threshold %v outside [-1, 1]", ErrInvalidThreshold, threshold)
		}
		m.threshold = threshold
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *SemanticMatcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewSemanticMatcher creates a matcher around an already loaded embedder.
func NewSemanticMatcher(embedder ai.Embedder, opts ...Option) (*SemanticMatcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	m := &SemanticMatcher{
		embedder:  embedder,
		threshold: DefaultSemanticThreshold,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	m.logger = m.logger.With("component", "semantic-matcher")

	return m, nil
}

// Threshold returns the similarity a candidate must exceed.
func (m *SemanticMatcher) Threshold() float64 {
	return m.threshold
}

// FindMatches returns the opposite-type items of corpus that resemble query,
// most similar first. An empty result with a nil error means matching ran and
// found nothing; ErrEmbeddingUnavailable means it could not run.
func (m *SemanticMatcher) FindMatches(ctx context.Context, query Query, corpus []*core.Item) ([]*core.Item, error) {
	matches, err := m.Match(ctx, query, corpus)
	if err != nil {
		return nil, err
	}
	return Items(matches), nil
}

// Match is FindMatches with scores kept.
func (m *SemanticMatcher) Match(ctx context.Context, query Query, corpus []*core.Item) ([]core.ScoredMatch, error) {
	return Run(ctx, m, query, corpus)
}

// SelectCandidates keeps every item whose type differs from the query's.
func (m *SemanticMatcher) SelectCandidates(query Query, corpus []*core.Item) []*core.Item {
	return SelectOpposite(corpus, query.Type)
}

// Score embeds the query and all candidates in a single batch, query first,
// and ranks candidates by cosine similarity.
func (m *SemanticMatcher) Score(ctx context.Context, query Query, candidates []*core.Item) ([]core.ScoredMatch, error) {
	if len(candidates) == 0 {
		return []core.ScoredMatch{}, nil
	}

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, query.Text())
	for _, c := range candidates {
		texts = append(texts, ItemText(c))
	}

	m.logger.Debug("embedding match batch", "candidates", len(candidates))
	vectors, err := m.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		m.logger.Error("error embedding match batch", "candidates", len(candidates), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, received %d", ErrEmbeddingUnavailable, len(texts), len(vectors))
	}
	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dims {
			return nil, fmt.Errorf("%w: embedding %d has %d dimensions, expected %d", ErrEmbeddingUnavailable, i, len(v), dims)
		}
	}

	target := vectors[0]
	scored := make([]core.ScoredMatch, len(candidates))
	for i, c := range candidates {
		scored[i] = core.ScoredMatch{
			Item:  c,
			Score: CosineSimilarity(target, vectors[i+1]),
		}
	}

	matches := rank(scored, m.threshold)
	m.logger.Debug("semantic matching finished", "candidates", len(candidates), "matches", len(matches))
	return matches, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, in [-1, 1].
// Vectors of different length and zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp rounding error
	return math.Max(-1, math.Min(1, sim))
}
