package index

// Chunk splits text into fixed-size rune windows that advance by
// size-overlap. Empty text yields zero chunks. Callers must ensure
// overlap < size (validated at config load); the guard here only keeps
// a misconfigured step from looping forever.
func Chunk(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}

	step := size - overlap
	if size <= 0 || step <= 0 {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+step-1)/step)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
