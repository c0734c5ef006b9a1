package rag

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// Chunk is a bounded-length transcript passage used as the retrieval unit.
type Chunk struct {
	ID   string `json:"id"`
	Seq  int    `json:"seq"`
	Text string `json:"text"`
}

// Boundary separators tried in order when choosing a cut point.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// SplitText splits text into chunks of at most size characters where each
// chunk after the first overlaps its predecessor by overlap characters.
// Cuts prefer paragraph, sentence and word boundaries inside the window,
// falling back to a hard character cut. Text no longer than size is
// returned as a single chunk.
func SplitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		cut := start + cutPoint(text[start:end])
		chunks = append(chunks, text[start:cut])
		next := cut - overlap
		if next <= start {
			// overlap would stall the scan; continue without it
			next = cut
		}
		start = next
	}
	return chunks
}

// cutPoint returns the end of the best boundary within window, or the full
// window length when no boundary lands in its second half. Restricting cuts
// to the second half keeps chunk sizes from collapsing on separator-dense
// text.
func cutPoint(window string) int {
	for _, sep := range chunkSeparators {
		if i := strings.LastIndex(window, sep); i > len(window)/2 {
			return i + len(sep)
		}
	}
	return len(window)
}

// ChunksFromText derives the ordered chunk sequence for a transcript. Chunk
// ids are derived from the transcript content hash so the same transcript
// always yields the same ids.
func ChunksFromText(text string, size, overlap int) []Chunk {
	parts := SplitText(text, size, overlap)
	if len(parts) == 0 {
		return nil
	}
	hash := sha1Hex(text)
	chunks := make([]Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = Chunk{
			ID:   fmt.Sprintf("%s#%03d", hash, i),
			Seq:  i,
			Text: part,
		}
	}
	return chunks
}

func sha1Hex(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}
