// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package splitter

import (
	"fmt"
	"unicode"

	"github.com/poiesic/grounder/core"
)

// Default window sizes, tuned for retrieval granularity on prose documents.
const (
	DefaultChunkSize = 300
	DefaultOverlap   = 100
)

// Span is a chunk of a document with its position in the source text.
// Offsets are rune indices; Text equals the source runes in [Start, End).
type Span struct {
	Start int
	End   int
	Text  string
}

// Split cuts text into spans of at most chunkSize runes where consecutive
// spans overlap by overlap runes. Requires chunkSize > overlap >= 0 and
// non-empty text.
//
// Span ends prefer sentence and whitespace boundaries found within a bounded
// back-scan window, but a span is never shrunk to overlap runes or fewer, so
// every span still advances the cursor. The non-overlap regions
// [Start_i, Start_i+1) plus the final span tile the input exactly; a text
// shorter than chunkSize yields exactly one span.
func Split(text string, chunkSize, overlap int) ([]Span, error) {
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must not be negative", core.ErrInvalidInput, overlap)
	}
	if chunkSize <= overlap {
		return nil, fmt.Errorf("%w: chunk size %d must be greater than overlap %d", core.ErrInvalidInput, chunkSize, overlap)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", core.ErrInvalidInput)
	}

	runes := []rune(text)
	total := len(runes)

	spans := make([]Span, 0, total/(chunkSize-overlap)+1)
	start := 0
	for start < total {
		end := start + chunkSize
		if end >= total {
			end = total
		} else {
			end = adjustBoundary(runes, start, end, overlap)
		}

		spans = append(spans, Span{
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})

		if end == total {
			break
		}
		start = end - overlap
	}

	return spans, nil
}

// adjustBoundary moves a hard span end backwards to the nearest sentence
// break, falling back to whitespace, within a window of a fifth of the span.
// The end never drops to start+overlap or lower, which keeps the cursor
// advancing.
func adjustBoundary(runes []rune, start, end, overlap int) int {
	minEnd := start + overlap + 1
	if limit := end - (end-start)/5; limit > minEnd {
		minEnd = limit
	}

	for i := end - 1; i >= minEnd; i-- {
		switch runes[i] {
		case '.', '!', '?', '\n':
			return i + 1
		}
	}
	for i := end - 1; i >= minEnd; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}
