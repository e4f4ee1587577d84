package match

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/lostfound/ai/mock"
	"github.com/poiesic/lostfound/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vectorsByText returns an EmbedTextsFunc that looks vectors up by text.
// Unknown texts embed to the zero vector.
func vectorsByText(vectors map[string][]float32) func(context.Context, []string) ([][]float32, error) {
	return func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			if v, ok := vectors[text]; ok {
				out[i] = v
			} else {
				out[i] = []float32{0, 0, 0}
			}
		}
		return out, nil
	}
}

func newSemantic(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) *SemanticMatcher {
	t.Helper()
	m, err := NewSemanticMatcher(embedder, opts...)
	require.NoError(t, err)
	return m
}

func TestNewSemanticMatcher(t *testing.T) {
	_, err := NewSemanticMatcher(nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	m, err := NewSemanticMatcher(mock.NewMockEmbedder())
	require.NoError(t, err)
	assert.Equal(t, DefaultSemanticThreshold, m.Threshold())

	m, err = NewSemanticMatcher(mock.NewMockEmbedder(), WithSemanticThreshold(0.5), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, 0.5, m.Threshold())

	for _, bad := range []float64{-1.5, 1.01, math.NaN()} {
		_, err = NewSemanticMatcher(mock.NewMockEmbedder(), WithSemanticThreshold(bad))
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	}
}

func TestSemanticMatcher_ScenarioWallet(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	m := newSemantic(t, embedder)

	found := item(2, core.ItemTypeFound, "Leather Wallet Found", "found near library, has cards inside", "Wallet")
	query := Query{Title: "Black Wallet", Description: "leather wallet with cards", Category: "Wallet", Type: core.ItemTypeLost}

	matches, err := m.Match(context.Background(), query, []*core.Item{found})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, found, matches[0].Item)
	assert.Greater(t, matches[0].Score, DefaultSemanticThreshold)
}

func TestSemanticMatcher_ScenarioCategoryDivergence(t *testing.T) {
	query := Query{Title: "Phone", Category: "Electronics", Type: core.ItemTypeLost}
	found := item(2, core.ItemTypeFound, "Phone Case", "", "Accessories")

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = vectorsByText(map[string][]float32{
		query.Text():    {1, 0, 0},
		ItemText(found): {0.25, 0.97, 0},
	})
	m := newSemantic(t, embedder)

	matches, err := m.FindMatches(context.Background(), query, []*core.Item{found})
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestSemanticMatcher_EmptyCorpus(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	m := newSemantic(t, embedder)

	matches, err := m.FindMatches(context.Background(), Query{Title: "Keys", Type: core.ItemTypeLost}, nil)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestSemanticMatcher_NoOppositeCandidates(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("model offline")
	}
	m := newSemantic(t, embedder)

	corpus := []*core.Item{
		item(1, core.ItemTypeLost, "Keys", "", "Keys"),
		item(2, core.ItemTypeLost, "Keys", "", "Keys"),
	}
	matches, err := m.FindMatches(context.Background(), Query{Title: "Keys", Category: "Keys", Type: core.ItemTypeLost}, corpus)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestSemanticMatcher_SingleBatchQueryFirst(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	m := newSemantic(t, embedder)

	lost := item(1, core.ItemTypeLost, "Umbrella", "blue", "Umbrella")
	found1 := item(2, core.ItemTypeFound, "Umbrella", "red", "Umbrella")
	found2 := item(3, core.ItemTypeFound, "Scarf", "wool", "Clothing")
	query := QueryFromItem(lost)

	_, err := m.Match(context.Background(), query, []*core.Item{lost, found1, found2})
	require.NoError(t, err)

	batches := embedder.Batches()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{query.Text(), ItemText(found1), ItemText(found2)}, batches[0])
}

func TestSemanticMatcher_FiltersByTypeThresholdAndOrders(t *testing.T) {
	query := Query{Title: "q", Type: core.ItemTypeFound}
	lostWeak := item(1, core.ItemTypeLost, "weak", "", "")
	lostStrong := item(2, core.ItemTypeLost, "strong", "", "")
	foundSimilar := item(3, core.ItemTypeFound, "found twin", "", "")
	lostEdge := item(4, core.ItemTypeLost, "edge", "", "")
	lostMid := item(5, core.ItemTypeLost, "mid", "", "")
	lostMidTwin := item(6, core.ItemTypeLost, "mid twin", "", "")

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = vectorsByText(map[string][]float32{
		query.Text():           {1, 0},
		ItemText(lostWeak):     {0.2, 0.98},
		ItemText(lostStrong):   {0.99, 0.1},
		ItemText(foundSimilar): {1, 0},
		ItemText(lostEdge):     {0.8, 0.6},
		ItemText(lostMid):      {0.6, 0.8},
		ItemText(lostMidTwin):  {0.6, 0.8},
	})
	m := newSemantic(t, embedder)

	corpus := []*core.Item{lostWeak, lostMid, lostStrong, foundSimilar, lostEdge, lostMidTwin}
	matches, err := m.Match(context.Background(), query, corpus)
	require.NoError(t, err)

	require.Len(t, matches, 4)
	assert.Equal(t, lostStrong, matches[0].Item)
	assert.Equal(t, lostEdge, matches[1].Item)
	assert.Equal(t, lostMid, matches[2].Item)
	assert.Equal(t, lostMidTwin, matches[3].Item)
	for i, mt := range matches {
		assert.NotEqual(t, core.ItemTypeFound, mt.Item.Type)
		assert.Greater(t, mt.Score, DefaultSemanticThreshold)
		if i > 0 {
			assert.LessOrEqual(t, mt.Score, matches[i-1].Score)
		}
	}
}

func TestSemanticMatcher_ThresholdIsStrict(t *testing.T) {
	query := Query{Title: "q", Type: core.ItemTypeLost}
	found := item(1, core.ItemTypeFound, "f", "", "")

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = vectorsByText(map[string][]float32{
		query.Text():    {1, 0},
		ItemText(found): {3, 4},
	})

	m := newSemantic(t, embedder, WithSemanticThreshold(0.6))
	matches, err := m.Match(context.Background(), query, []*core.Item{found})
	require.NoError(t, err)
	assert.Empty(t, matches)

	m = newSemantic(t, embedder, WithSemanticThreshold(0.59))
	matches, err = m.Match(context.Background(), query, []*core.Item{found})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 0.6, matches[0].Score, 1e-12)
}

func TestSemanticMatcher_Idempotent(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	m := newSemantic(t, embedder)

	corpus := []*core.Item{
		item(1, core.ItemTypeFound, "Black Wallet", "leather", "Wallet"),
		item(2, core.ItemTypeFound, "Wallet", "brown leather wallet", "Wallet"),
		item(3, core.ItemTypeFound, "Keys", "car keys", "Keys"),
	}
	query := Query{Title: "Wallet", Description: "black leather wallet", Category: "Wallet", Type: core.ItemTypeLost}

	first, err := m.Match(context.Background(), query, corpus)
	require.NoError(t, err)
	second, err := m.Match(context.Background(), query, corpus)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSemanticMatcher_EmbeddingUnavailable(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("model offline")
	}
	m := newSemantic(t, embedder)

	corpus := []*core.Item{item(1, core.ItemTypeFound, "Keys", "", "Keys")}
	matches, err := m.FindMatches(context.Background(), Query{Title: "Keys", Type: core.ItemTypeLost}, corpus)
	assert.Nil(t, matches)
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "model offline")
}

func TestSemanticMatcher_ShortBatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}
	m := newSemantic(t, embedder)

	corpus := []*core.Item{item(1, core.ItemTypeFound, "Keys", "", "Keys")}
	_, err := m.Match(context.Background(), Query{Title: "Keys", Type: core.ItemTypeLost}, corpus)
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestSemanticMatcher_BadVectorDimensions(t *testing.T) {
	tests := []struct {
		name    string
		vectors func(n int) [][]float32
	}{
		{"all empty", func(n int) [][]float32 {
			out := make([][]float32, n)
			for i := range out {
				out[i] = []float32{}
			}
			return out
		}},
		{"empty candidate", func(int) [][]float32 {
			return [][]float32{{1, 0}, {}}
		}},
		{"mismatched candidate", func(int) [][]float32 {
			return [][]float32{{1, 0}, {1, 0, 0}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := mock.NewMockEmbedder()
			embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
				return tt.vectors(len(texts)), nil
			}
			m := newSemantic(t, embedder)

			found := item(2, core.ItemTypeFound, "Leather Wallet Found", "found near library, has cards inside", "Wallet")
			query := Query{Title: "Black Wallet", Description: "leather wallet with cards", Category: "Wallet", Type: core.ItemTypeLost}
			matches, err := m.FindMatches(context.Background(), query, []*core.Item{found})
			assert.Nil(t, matches)
			assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
		})
	}
}

func TestSemanticMatcher_MalformedQuery(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	m := newSemantic(t, embedder)

	corpus := []*core.Item{item(1, core.ItemTypeFound, "Keys", "", "Keys")}
	_, err := m.Match(context.Background(), Query{Title: "Keys", Type: core.ItemType(0)}, corpus)
	assert.ErrorIs(t, err, ErrMalformedQuery)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestSemanticMatcher_ZeroVectorScoresZero(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	m := newSemantic(t, embedder, WithSemanticThreshold(-1))

	// Empty query text embeds to the zero vector
	corpus := []*core.Item{item(1, core.ItemTypeFound, "", "", "")}
	matches, err := m.Match(context.Background(), Query{Type: core.ItemTypeLost}, corpus)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0.0, matches[0].Score)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero left", []float32{0, 0}, []float32{1, 0}, 0},
		{"zero right", []float32{1, 0}, []float32{0, 0}, 0},
		{"empty", nil, nil, 0},
		{"length mismatch", []float32{1, 0, 5}, []float32{1, 0}, 0},
		{"sixty degrees", []float32{1, 0}, []float32{0.5, 0.8660254}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}
