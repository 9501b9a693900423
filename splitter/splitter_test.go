package splitter

import (
	"strings"
	"testing"

	"github.com/poiesic/grounder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
	}{
		{name: "empty text", text: "", chunkSize: 300, overlap: 100},
		{name: "negative overlap", text: "hello", chunkSize: 300, overlap: -1},
		{name: "chunk size equals overlap", text: "hello", chunkSize: 100, overlap: 100},
		{name: "chunk size below overlap", text: "hello", chunkSize: 50, overlap: 100},
		{name: "zero chunk size", text: "hello", chunkSize: 0, overlap: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.text, tt.chunkSize, tt.overlap)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestSplit_ShortTextSingleSpan(t *testing.T) {
	text := "Python was created by Guido van Rossum in 1991."

	spans, err := Split(text, DefaultChunkSize, DefaultOverlap)
	require.NoError(t, err)
	require.Len(t, spans, 1)

	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len([]rune(text)), spans[0].End)
	assert.Equal(t, text, spans[0].Text)
}

func TestSplit_SpanInvariants(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 60)

	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{name: "defaults", chunkSize: DefaultChunkSize, overlap: DefaultOverlap},
		{name: "no overlap", chunkSize: 120, overlap: 0},
		{name: "small chunks", chunkSize: 40, overlap: 10},
		{name: "wide overlap", chunkSize: 200, overlap: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := Split(text, tt.chunkSize, tt.overlap)
			require.NoError(t, err)
			require.NotEmpty(t, spans)

			runes := []rune(text)
			for i, span := range spans {
				assert.Greater(t, span.End, span.Start, "span %d must be non-empty", i)
				assert.LessOrEqual(t, span.End-span.Start, tt.chunkSize, "span %d exceeds chunk size", i)
				assert.Equal(t, string(runes[span.Start:span.End]), span.Text, "span %d text mismatch", i)

				if i > 0 {
					overlap := spans[i-1].End - span.Start
					assert.Equal(t, tt.overlap, overlap, "span %d overlap mismatch", i)
				}
			}
			assert.Equal(t, len(runes), spans[len(spans)-1].End, "last span must reach end of text")
		})
	}
}

// Concatenating each span's non-overlap region must reconstruct the input
// exactly.
func TestSplit_Reconstruction(t *testing.T) {
	texts := []string{
		strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit. ", 40),
		strings.Repeat("word ", 500),
		strings.Repeat("x", 1000), // no boundaries at all
		"Première phrase. Deuxième phrase avec accents éèç. " + strings.Repeat("Encore une phrase. ", 30),
	}

	for _, text := range texts {
		spans, err := Split(text, 120, 30)
		require.NoError(t, err)

		var b strings.Builder
		for i, span := range spans {
			end := span.End
			if i < len(spans)-1 {
				end = spans[i+1].Start
			}
			runes := []rune(span.Text)
			b.WriteString(string(runes[:end-span.Start]))
		}
		assert.Equal(t, text, b.String())
	}
}

func TestSplit_PrefersSentenceBoundaries(t *testing.T) {
	// Sentences are short enough that every hard cut has a sentence break in
	// its back-scan window.
	text := strings.Repeat("This sentence ends cleanly here. ", 40)

	spans, err := Split(text, 150, 20)
	require.NoError(t, err)
	require.Greater(t, len(spans), 1)

	for i, span := range spans[:len(spans)-1] {
		trimmed := strings.TrimRight(span.Text, " \n")
		assert.True(t, strings.HasSuffix(trimmed, "."),
			"span %d should end on a sentence boundary, got %q", i, span.Text)
	}
}

func TestSplit_UnicodeOffsetsAreRunes(t *testing.T) {
	text := strings.Repeat("héllo wörld à ", 30)

	spans, err := Split(text, 50, 10)
	require.NoError(t, err)

	runes := []rune(text)
	for _, span := range spans {
		assert.Equal(t, string(runes[span.Start:span.End]), span.Text)
	}
}
