package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/blevesearch/bleve"
	"github.com/google/uuid"

	"ytchatbot/provider"
)

const rrfK = 60 // reciprocal-rank-fusion constant

// Hit is a ranked retrieval result.
type Hit struct {
	Chunk Chunk
	Score float64
	Rank  int
}

// Index is an in-memory similarity index over one transcript's chunks. It
// holds the chunk sequence, their embedding vectors and a mem-only keyword
// index side by side. An Index is always built whole; there is no
// incremental update path.
type Index struct {
	id      string
	mu      sync.RWMutex
	chunks  []Chunk
	vectors [][]float32
	keyword bleve.Index
	byID    map[string]int
}

func newIndex() (*Index, error) {
	keyword, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword index: %w", err)
	}
	return &Index{
		id:      uuid.NewString(),
		keyword: keyword,
		byID:    make(map[string]int),
	}, nil
}

// ID returns the index handle id.
func (ix *Index) ID() string { return ix.id }

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

func (ix *Index) add(chunk Chunk, vec []float32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.byID[chunk.ID] = len(ix.chunks)
	ix.chunks = append(ix.chunks, chunk)
	ix.vectors = append(ix.vectors, vec)
	return ix.keyword.Index(chunk.ID, chunk)
}

// VectorSearch returns the k chunks most similar to q by cosine similarity,
// best first. Ties keep insertion order.
func (ix *Index) VectorSearch(q []float32, k int) []Hit {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	scored := make([]Hit, 0, len(ix.chunks))
	for i, v := range ix.vectors {
		scored = append(scored, Hit{Chunk: ix.chunks[i], Score: cosine(q, v)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}

// KeywordSearch returns the k best BM25 matches for q, best first.
func (ix *Index) KeywordSearch(q string, k int) ([]Hit, error) {
	query := bleve.NewQueryStringQuery(q)
	searchReq := bleve.NewSearchRequestOptions(query, k, 0, false)
	res, err := ix.keyword.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []Hit
	for _, hit := range res.Hits {
		pos, ok := ix.byID[hit.ID]
		if !ok {
			continue
		}
		out = append(out, Hit{Chunk: ix.chunks[pos], Score: hit.Score, Rank: len(out) + 1})
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

// FuseRRF merges two ranked lists with reciprocal-rank fusion and returns
// the k best fused hits.
func (ix *Index) FuseRRF(a, b []Hit, k int) []Hit {
	type agg struct {
		item  Hit
		score float64
	}
	m := map[string]*agg{}
	add := func(list []Hit) {
		for _, h := range list {
			x, ok := m[h.Chunk.ID]
			if !ok {
				x = &agg{item: h}
				m[h.Chunk.ID] = x
			}
			x.score += 1.0 / float64(rrfK+h.Rank)
		}
	}
	add(a)
	add(b)

	items := make([]agg, 0, len(m))
	for _, v := range m {
		items = append(items, *v)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].item.Chunk.Seq < items[j].item.Chunk.Seq
	})

	if len(items) > k {
		items = items[:k]
	}
	out := make([]Hit, 0, len(items))
	for i, x := range items {
		x.item.Score = x.score
		x.item.Rank = i + 1
		out = append(out, x.item)
	}
	return out
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// embedBatchSize bounds how many chunks go to the embedding API per call.
const embedBatchSize = 64

// BuildIndex embeds every chunk and constructs a fresh index. Any embedding
// failure fails the whole build; a partially populated index is never
// returned.
func BuildIndex(ctx context.Context, p provider.Provider, chunks []Chunk) (*Index, error) {
	ix, err := newIndex()
	if err != nil {
		return nil, err
	}
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		vecs, err := p.CreateEmbedding(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vecs), len(texts))
		}
		for i, vec := range vecs {
			if err := ix.add(chunks[start+i], vec); err != nil {
				return nil, fmt.Errorf("failed to add chunk: %w", err)
			}
		}
	}
	return ix, nil
}
