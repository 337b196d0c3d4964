package services

import (
	"fmt"
)

const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 250
)

// chunkSeparators are tried in order when looking for a chunk boundary.
var chunkSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " "}

type TextChunker interface {
	ChunkText(text string) []string
	Size() int
	Overlap() int
}

type textChunker struct {
	size    int
	overlap int
}

// NewTextChunker returns a chunker producing chunks of at most size runes,
// where consecutive chunks share exactly overlap runes.
func NewTextChunker(size, overlap int) (TextChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}

	return &textChunker{size: size, overlap: overlap}, nil
}

func (tc *textChunker) Size() int    { return tc.size }
func (tc *textChunker) Overlap() int { return tc.overlap }

// ChunkText implements TextChunker. Chunks are windows over the original
// text, so dropping the first Overlap() runes of every chunk but the first
// and concatenating gives the input back.
func (tc *textChunker) ChunkText(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0

	for {
		if len(runes)-start <= tc.size {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		end := tc.boundary(runes, start)
		chunks = append(chunks, string(runes[start:end]))
		start = end - tc.overlap
	}

	return chunks
}

// boundary picks the chunk end for a window starting at start. The end always
// lies beyond start+overlap so the next window advances.
func (tc *textChunker) boundary(runes []rune, start int) int {
	limit := start + tc.size

	floor := start + tc.overlap + 1
	if half := start + tc.size/2; half > floor {
		floor = half
	}

	for _, sep := range chunkSeparators {
		sepRunes := []rune(sep)
		for end := limit; end >= floor; end-- {
			if end-len(sepRunes) < start {
				break
			}
			if hasSuffixAt(runes, end, sepRunes) {
				return end
			}
		}
	}

	return limit
}

func hasSuffixAt(runes []rune, end int, suffix []rune) bool {
	offset := end - len(suffix)
	for i, r := range suffix {
		if runes[offset+i] != r {
			return false
		}
	}
	return true
}
