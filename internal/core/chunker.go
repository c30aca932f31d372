package core

import "strings"

// ChunkText splits text into overlapping windows of at most maxLen bytes.
// Each window is trimmed before being kept; windows that are empty after
// trimming are dropped but the cursor still advances. The last window ends
// exactly at the end of the text, so the final chunk may be shorter.
func ChunkText(text string, maxLen, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + maxLen
		if end > len(text) {
			end = len(text)
		}
		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(text) {
			break
		}
		next := end - overlap
		if next < 0 {
			next = 0
		}
		// Guard against overlap >= maxLen: the cursor must always advance.
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}
