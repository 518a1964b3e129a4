package index

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	chunks := Chunk("short text", 100, 20)

	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestChunk_EmptyTextYieldsNoChunks(t *testing.T) {
	assert.Empty(t, Chunk("", 100, 20))
}

func TestChunk_WindowsOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := Chunk(text, 40, 10)

	require.NotEmpty(t, chunks)
	assert.Equal(t, text[0:40], chunks[0])
	assert.Equal(t, text[30:70], chunks[1])
	assert.Equal(t, text[60:100], chunks[2])
}

func TestChunk_StartOffsetsStrictlyIncrease(t *testing.T) {
	text := strings.Repeat("x", 5000)

	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{name: "no overlap", size: 100, overlap: 0},
		{name: "half overlap", size: 100, overlap: 50},
		{name: "heavy overlap", size: 100, overlap: 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Chunk(text, tt.size, tt.overlap)

			require.NotEmpty(t, chunks)
			step := tt.size - tt.overlap
			covered := 0
			for i, chunk := range chunks {
				start := i * step
				assert.Less(t, start, len(text), "window must start inside the text")
				assert.LessOrEqual(t, len(chunk), tt.size)
				covered = start + len(chunk)
			}
			assert.Equal(t, len(text), covered, "chunks must reach the end of the text")
		})
	}
}

func TestChunk_InvalidStepDoesNotLoop(t *testing.T) {
	assert.Nil(t, Chunk("text", 10, 10))
	assert.Nil(t, Chunk("text", 10, 20))
	assert.Nil(t, Chunk("text", 0, 0))
}

func TestChunk_MultibyteRunesStayIntact(t *testing.T) {
	text := strings.Repeat("قانون ", 50)
	chunks := Chunk(text, 40, 10)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk boundaries must not split runes: %q", chunk)
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 40)
	}
}
