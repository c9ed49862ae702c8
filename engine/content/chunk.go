package content

import "strings"

const (
	// DefaultMaxWords is the word cap per chunk.
	DefaultMaxWords = 500
	// MinChunkChars is the minimum trimmed length a chunk must exceed
	// to be worth indexing.
	MinChunkChars = 50
)

// SplitWords groups whitespace-delimited words into consecutive runs of up
// to maxWords, rejoined with single spaces. Boundaries can split
// mid-sentence; this is a word-count chunker, not a semantic one.
func SplitWords(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	words := strings.Fields(text)
	var chunks []string
	for i := 0; i < len(words); i += maxWords {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// Indexable reports whether a chunk carries enough content to index.
func Indexable(chunk string) bool {
	return len(strings.TrimSpace(chunk)) > MinChunkChars
}
