package retriever

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// queryTimeout bounds one query embedding. The flight is shared by every
// caller waiting on the same query, so it does not inherit any caller's
// cancellation.
const queryTimeout = 30 * time.Second

// Passage is one indexed chunk of a seed narrative.
type Passage struct {
	Theme string
	Text  string
}

// Index answers nearest-neighbour queries over the corpus chunks.
type Index struct {
	embedder Embedder
	passages []Passage
	vectors  [][]float32

	mu    sync.RWMutex
	cache map[string][]float32
	group singleflight.Group
}

// NewIndex chunks and embeds every seed in corpus. An error here means the
// embedding backend is unusable and the caller should not start.
func NewIndex(ctx context.Context, embedder Embedder, corpus *Corpus) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if corpus == nil || len(corpus.Seeds) == 0 {
		return nil, fmt.Errorf("corpus is empty")
	}

	var passages []Passage
	for _, seed := range corpus.Seeds {
		for _, chunk := range Split(seed.Text, ChunkSize, ChunkOverlap) {
			passages = append(passages, Passage{Theme: seed.Theme, Text: chunk})
		}
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	vectors, err := embedder.Embed(ctx, texts, PurposeDocument)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(passages) {
		return nil, fmt.Errorf("embed corpus: got %d vectors for %d passages", len(vectors), len(passages))
	}

	return &Index{
		embedder: embedder,
		passages: passages,
		vectors:  vectors,
		cache:    make(map[string][]float32),
	}, nil
}

// Len reports the number of indexed passages.
func (ix *Index) Len() int {
	return len(ix.passages)
}

// Search returns the text of the k passages closest to query, best first.
// There is no similarity floor: a query with no good match still gets the k
// nearest passages.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}
	qv, err := ix.queryVector(ctx, query)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(ix.passages))
	scores := make([]float32, len(ix.passages))
	for i, v := range ix.vectors {
		order[i] = i
		scores[i] = dot(qv, v)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]string, k)
	for i := 0; i < k; i++ {
		results[i] = ix.passages[order[i]].Text
	}
	return results, nil
}

func (ix *Index) queryVector(ctx context.Context, query string) ([]float32, error) {
	ix.mu.RLock()
	v, ok := ix.cache[query]
	ix.mu.RUnlock()
	if ok {
		return v, nil
	}

	ch := ix.group.DoChan(query, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queryTimeout)
		defer cancel()

		vectors, err := ix.embedder.Embed(flightCtx, []string{query}, PurposeQuery)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		if len(vectors) != 1 {
			return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
		}
		ix.mu.Lock()
		ix.cache[query] = vectors[0]
		ix.mu.Unlock()
		return vectors[0], nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
