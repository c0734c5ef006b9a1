package rag

import (
	"context"
	"fmt"
	"strings"

	"ytchatbot/provider"
)

// answerPromptTemplate grounds the model in the retrieved transcript
// passages and fixes the four-part response structure.
const answerPromptTemplate = `You are an assistant that answers questions about YouTube videos based only on the transcript provided.

===========================
TRANSCRIPT:
%s

QUESTION:
%s
===========================

### INSTRUCTIONS
- Use only the information from the transcript.
- Do not add outside knowledge or assumptions.
- If the transcript does not cover the question, say that clearly.
- Keep your tone neutral, clear, and easy to read.

### RESPONSE FORMAT
1. **Short Answer** - start with a one-sentence summary that directly answers the question.
2. **Details** - explain the relevant parts of the transcript, organised by topic or timeline, in short paragraphs or bullet points.
3. **Evidence** - support the answer with key phrases or short quotes from the transcript.
4. **Gaps (if any)** - point out anything the transcript leaves uncovered.

Keep answers concise, structured, and broadly useful across different video types.`

// Answerer retrieves the most relevant transcript chunks for a question and
// asks the completion provider for a grounded answer.
type Answerer struct {
	Provider provider.Provider
	TopK     int
	// Hybrid fuses keyword and vector ranks with RRF instead of using
	// vector similarity alone.
	Hybrid bool
}

// Answer runs retrieval and generation for one question against the given
// index. The model's response is returned verbatim, with no post-processing.
func (a *Answerer) Answer(ctx context.Context, ix *Index, question string) (string, error) {
	k := a.TopK
	if k <= 0 {
		k = 5
	}
	if k > 50 {
		k = 50
	}

	qvecs, err := a.Provider.CreateEmbedding(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	hits := ix.VectorSearch(qvecs[0], k)

	if a.Hybrid {
		bmHits, err := ix.KeywordSearch(question, k)
		if err != nil {
			return "", err
		}
		hits = ix.FuseRRF(bmHits, hits, k)
	}

	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, h.Chunk.Text)
	}
	// An empty index yields an empty context; the model is still asked and
	// reports the lack of information itself.
	prompt := fmt.Sprintf(answerPromptTemplate, strings.Join(parts, "\n\n"), question)

	return a.Provider.Complete(ctx, prompt)
}
