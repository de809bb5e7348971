// Package chunker splits document text into bounded-size chunks for the
// translation backend, which enforces a per-call character limit.
package chunker

import "strings"

// sentenceEnders are the boundary markers preferred when cutting a chunk.
// The cut happens after the marker so sentences stay intact.
var sentenceEnders = []string{". ", "! ", "? ", "\n"}

// Split cuts text into ordered chunks of at most maxChunkSize characters.
// It prefers to cut at the sentence boundary closest below the limit, then
// at whitespace, and hard-cuts mid-word only when a chunk-sized run has no
// boundary at all. Whitespace-only input yields no chunks.
func Split(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []string

	for len(runes) > 0 {
		if len(runes) <= maxChunkSize {
			if chunk := strings.TrimSpace(string(runes)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		window := string(runes[:maxChunkSize])
		cut := boundaryCut(window)
		if cut <= 0 {
			cut = maxChunkSize
		}

		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
	}

	return chunks
}

// boundaryCut returns the rune index to cut window at, or 0 if the window
// contains no usable boundary.
func boundaryCut(window string) int {
	best := -1
	for _, ender := range sentenceEnders {
		if idx := strings.LastIndex(window, ender); idx >= 0 {
			end := idx + len(ender)
			if end > best {
				best = end
			}
		}
	}
	if best > 0 {
		return len([]rune(window[:best]))
	}

	if idx := strings.LastIndexFunc(window, func(r rune) bool { return r == ' ' || r == '\t' }); idx > 0 {
		return len([]rune(window[:idx+1]))
	}

	return 0
}

// Join reassembles translated chunks in order, reinserting the single-space
// separators removed during splitting.
func Join(chunks []string) string {
	trimmed := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c = strings.TrimSpace(c); c != "" {
			trimmed = append(trimmed, c)
		}
	}
	return strings.Join(trimmed, " ")
}
