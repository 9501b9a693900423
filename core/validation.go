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


package core

import (
	"fmt"
	"strings"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Name must not be blank
//   - Text must not be blank
//
// NOT validated:
//   - Id (derived from the name when zero)
//   - ChunkCount (populated by the ingestion pipeline)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidInput)
	}

	if strings.TrimSpace(doc.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyDocumentName)
	}

	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyDocumentText)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - EndOffset must be greater than StartOffset
//
// NOT validated:
//   - Vector (can be empty until the chunk is embedded)
//   - Seq (assigned by storage)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidInput)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: chunk text cannot be empty", ErrInvalidInput)
	}

	if chunk.EndOffset <= chunk.StartOffset {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrInvalidChunkSpan)
	}

	return nil
}

// ValidateQuery validates a user query string.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyQuery)
	}
	return nil
}

// ValidateAnswerMode validates that an AnswerMode is one of the two defined
// variants.
func ValidateAnswerMode(mode AnswerMode) error {
	if mode != ModeRAG && mode != ModeDirect {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidInput, ErrInvalidAnswerMode, mode)
	}
	return nil
}
