package story

// ChunkWords splits words into contiguous chunks of max(1, len(words)/3)
// words each. The last chunk may be shorter.
func ChunkWords(words []string) [][]string {
	return SplitChunks(words, len(words)/3)
}

// SplitChunks splits words into contiguous chunks of size elements. A size
// below one is treated as one.
func SplitChunks(words []string, size int) [][]string {
	if len(words) == 0 {
		return nil
	}
	if size < 1 {
		size = 1
	}

	chunks := make([][]string, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		chunks = append(chunks, words[start:end])
	}
	return chunks
}
