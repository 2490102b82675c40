package retriever

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Purpose tells an embedder whether it is indexing documents or embedding a
// search query. Some backends embed the two differently.
type Purpose int

const (
	PurposeDocument Purpose = iota
	PurposeQuery
)

// Embedder turns texts into vectors, one per input text, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string, purpose Purpose) ([][]float32, error)
}

// DefaultHashDims is the vector width of a HashEmbedder built with zero dims.
const DefaultHashDims = 4096

// HashEmbedder hashes character trigrams into a fixed number of buckets. It
// needs no network access and is deterministic, which makes it the offline
// fallback and the test embedder.
type HashEmbedder struct {
	Dims int
}

// Embed implements Embedder.
func (h HashEmbedder) Embed(_ context.Context, texts []string, _ Purpose) ([][]float32, error) {
	dims := h.Dims
	if dims <= 0 {
		dims = DefaultHashDims
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, dims)
		runes := []rune(" " + strings.ToLower(strings.TrimSpace(text)) + " ")
		for j := 0; j+3 <= len(runes); j++ {
			hasher := fnv.New32a()
			hasher.Write([]byte(string(runes[j : j+3])))
			vec[hasher.Sum32()%uint32(dims)]++
		}
		out[i] = normalize(vec)
	}
	return out, nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var s float32
	for i := 0; i < n; i++ {
		s += a[i] * b[i]
	}
	return s
}
