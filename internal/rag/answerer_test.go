package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAnswerGroundsPromptInTopChunks(t *testing.T) {
	p := &fakeProvider{
		completion: "1. **Short Answer** - it is about cats.",
		embeddings: map[string][]float32{
			"cats sleep most of the day": {1, 0},
			"dogs enjoy long walks":      {0, 1},
			"cats groom themselves":      {0.9, 0.1},
			"what do cats do all day?":   {1, 0},
		},
	}
	ix := buildTestIndex(t, p,
		"cats sleep most of the day",
		"dogs enjoy long walks",
		"cats groom themselves")

	a := &Answerer{Provider: p, TopK: 2}
	answer, err := a.Answer(context.Background(), ix, "what do cats do all day?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != "1. **Short Answer** - it is about cats." {
		t.Fatalf("answer not returned verbatim: %q", answer)
	}

	if len(p.prompts) != 1 {
		t.Fatalf("expected one completion call, got %d", len(p.prompts))
	}
	prompt := p.prompts[0]
	first := strings.Index(prompt, "cats sleep most of the day")
	second := strings.Index(prompt, "cats groom themselves")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("retrieved chunks missing or out of rank order in prompt")
	}
	if strings.Contains(prompt, "dogs enjoy long walks") {
		t.Fatal("chunk outside top-k leaked into prompt")
	}
	if !strings.Contains(prompt, "what do cats do all day?") {
		t.Fatal("question missing from prompt")
	}
}

func TestAnswerDeterministicRetrieval(t *testing.T) {
	p := &fakeProvider{
		completion: "answer",
		embeddings: map[string][]float32{
			"alpha": {1, 0},
			"beta":  {0.5, 0.5},
			"gamma": {0, 1},
			"q":     {0.8, 0.2},
		},
	}
	ix := buildTestIndex(t, p, "alpha", "beta", "gamma")

	a := &Answerer{Provider: p, TopK: 2}
	if _, err := a.Answer(context.Background(), ix, "q"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if _, err := a.Answer(context.Background(), ix, "q"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if p.prompts[0] != p.prompts[1] {
		t.Fatal("identical question against identical index produced different prompts")
	}
}

func TestAnswerEmptyIndex(t *testing.T) {
	p := &fakeProvider{completion: "the transcript does not cover this"}
	ix := buildTestIndex(t, p)

	a := &Answerer{Provider: p, TopK: 5}
	answer, err := a.Answer(context.Background(), ix, "anything?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer == "" {
		t.Fatal("expected model response for empty context")
	}
	if len(p.prompts) != 1 || !strings.Contains(p.prompts[0], "anything?") {
		t.Fatal("prompt was not issued for empty index")
	}
}

func TestAnswerCompletionErrorPropagates(t *testing.T) {
	p := &fakeProvider{completeErr: errors.New("completion service down")}
	ix := buildTestIndex(t, p, "some chunk")

	a := &Answerer{Provider: p, TopK: 5}
	if _, err := a.Answer(context.Background(), ix, "q"); err == nil {
		t.Fatal("expected completion error to propagate")
	}
}

func TestAnswerHybrid(t *testing.T) {
	p := &fakeProvider{
		completion: "answer",
		embeddings: map[string][]float32{
			"the talk covers goroutines": {1, 0},
			"unrelated banana content":   {0, 1},
			"goroutines":                 {1, 0},
		},
	}
	ix := buildTestIndex(t, p, "the talk covers goroutines", "unrelated banana content")

	a := &Answerer{Provider: p, TopK: 2, Hybrid: true}
	if _, err := a.Answer(context.Background(), ix, "goroutines"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !strings.Contains(p.prompts[0], "the talk covers goroutines") {
		t.Fatal("hybrid retrieval lost the keyword-and-vector match")
	}
}

func TestAnswerClampsLargeTopK(t *testing.T) {
	p := &fakeProvider{completion: "answer"}
	texts := make([]string, 8)
	for i := range texts {
		texts[i] = fmt.Sprintf("passage number %d", i)
	}
	ix := buildTestIndex(t, p, texts...)

	// An oversized k clamps to the cap, it does not fall back to the
	// default of 5.
	a := &Answerer{Provider: p, TopK: 100}
	if _, err := a.Answer(context.Background(), ix, "q"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	for _, text := range texts {
		if !strings.Contains(p.prompts[0], text) {
			t.Fatalf("chunk %q missing from prompt", text)
		}
	}
}

func TestAnswerDefaultsTopK(t *testing.T) {
	p := &fakeProvider{completion: "answer"}
	ix := buildTestIndex(t, p, "only chunk")

	a := &Answerer{Provider: p}
	if _, err := a.Answer(context.Background(), ix, "q"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !strings.Contains(p.prompts[0], "only chunk") {
		t.Fatal("default top-k retrieved nothing")
	}
}
