package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeProvider is a deterministic stand-in for the LLM provider.
type fakeProvider struct {
	embeddings  map[string][]float32
	completion  string
	completeErr error
	embedErr    error
	prompts     []string
	embedCalls  int
}

func (f *fakeProvider) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completion, nil
}

func (f *fakeProvider) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.embeddings[text]; ok {
			vecs[i] = v
		} else {
			vecs[i] = []float32{1, 1}
		}
	}
	return vecs, nil
}

func buildTestIndex(t *testing.T, p *fakeProvider, texts ...string) *Index {
	t.Helper()
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{ID: fmt.Sprintf("c#%03d", i), Seq: i, Text: text}
	}
	ix, err := BuildIndex(context.Background(), p, chunks)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	return ix
}

func TestVectorSearchRanksByCosine(t *testing.T) {
	p := &fakeProvider{embeddings: map[string][]float32{
		"about cats":     {1, 0},
		"about dogs":     {0, 1},
		"cats and dogs":  {0.6, 0.8},
		"something else": {-1, 0},
	}}
	ix := buildTestIndex(t, p, "about cats", "about dogs", "cats and dogs", "something else")

	hits := ix.VectorSearch([]float32{1, 0}, 3)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].Chunk.Text != "about cats" || hits[1].Chunk.Text != "cats and dogs" || hits[2].Chunk.Text != "about dogs" {
		t.Fatalf("unexpected ranking: %q %q %q", hits[0].Chunk.Text, hits[1].Chunk.Text, hits[2].Chunk.Text)
	}
	for i, h := range hits {
		if h.Rank != i+1 {
			t.Fatalf("hit %d has rank %d", i, h.Rank)
		}
	}
}

func TestVectorSearchStableTies(t *testing.T) {
	p := &fakeProvider{embeddings: map[string][]float32{
		"first":  {0, 1},
		"second": {0, 1},
		"third":  {0, 1},
	}}
	ix := buildTestIndex(t, p, "first", "second", "third")

	hits := ix.VectorSearch([]float32{0, 1}, 3)
	for i, want := range []string{"first", "second", "third"} {
		if hits[i].Chunk.Text != want {
			t.Fatalf("tie at position %d broke insertion order: got %q", i, hits[i].Chunk.Text)
		}
	}
}

func TestVectorSearchEmptyIndex(t *testing.T) {
	p := &fakeProvider{}
	ix := buildTestIndex(t, p)
	if hits := ix.VectorSearch([]float32{1, 0}, 5); len(hits) != 0 {
		t.Fatalf("expected no hits from empty index, got %d", len(hits))
	}
}

func TestKeywordSearch(t *testing.T) {
	p := &fakeProvider{}
	ix := buildTestIndex(t, p,
		"the speaker introduces the framework",
		"a long digression about bananas",
		"closing remarks and thanks")

	hits, err := ix.KeywordSearch("bananas", 5)
	if err != nil {
		t.Fatalf("KeywordSearch: %v", err)
	}
	if len(hits) != 1 || hits[0].Chunk.Seq != 1 {
		t.Fatalf("unexpected keyword hits: %+v", hits)
	}
}

func TestFuseRRF(t *testing.T) {
	p := &fakeProvider{}
	ix := buildTestIndex(t, p, "a", "b", "c")
	chunks := []Chunk{
		{ID: "x#000", Seq: 0, Text: "a"},
		{ID: "x#001", Seq: 1, Text: "b"},
		{ID: "x#002", Seq: 2, Text: "c"},
	}

	a := []Hit{{Chunk: chunks[0], Rank: 1}, {Chunk: chunks[1], Rank: 2}}
	b := []Hit{{Chunk: chunks[1], Rank: 1}, {Chunk: chunks[2], Rank: 2}}

	fused := ix.FuseRRF(a, b, 3)
	if len(fused) != 3 {
		t.Fatalf("expected 3 fused hits, got %d", len(fused))
	}
	// b appears in both lists and must rank first.
	if fused[0].Chunk.ID != "x#001" {
		t.Fatalf("expected doubly-ranked chunk first, got %s", fused[0].Chunk.ID)
	}
	// a (rank 1 in one list) outranks c (rank 2 in one list).
	if fused[1].Chunk.ID != "x#000" || fused[2].Chunk.ID != "x#002" {
		t.Fatalf("unexpected fused tail: %s, %s", fused[1].Chunk.ID, fused[2].Chunk.ID)
	}
}

func TestBuildIndexFailsWhole(t *testing.T) {
	p := &fakeProvider{embedErr: errors.New("embedding service down")}
	chunks := []Chunk{{ID: "c#000", Seq: 0, Text: "text"}}
	ix, err := BuildIndex(context.Background(), p, chunks)
	if err == nil {
		t.Fatal("expected build error")
	}
	if ix != nil {
		t.Fatal("failed build must not return an index")
	}
}

func TestBuildIndexBatches(t *testing.T) {
	p := &fakeProvider{}
	texts := make([]string, embedBatchSize+10)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk number %d", i)
	}
	ix := buildTestIndex(t, p, texts...)
	if ix.Len() != len(texts) {
		t.Fatalf("expected %d indexed chunks, got %d", len(texts), ix.Len())
	}
	if p.embedCalls != 2 {
		t.Fatalf("expected 2 embedding batches, got %d", p.embedCalls)
	}
}

func TestCosine(t *testing.T) {
	t.Parallel()
	if got := cosine([]float32{1, 0}, []float32{1, 0}); got != 1 {
		t.Fatalf("identical vectors: got %v", got)
	}
	if got := cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors: got %v", got)
	}
	if got := cosine(nil, []float32{1}); got != 0 {
		t.Fatalf("empty vector: got %v", got)
	}
}
