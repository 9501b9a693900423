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

import "errors"

// Error taxonomy shared by every layer. Failures are classified here and
// wrapped with context as they travel up, so callers can branch with
// errors.Is regardless of which component produced the failure.
var (
	// ErrInvalidInput indicates a malformed request. Fatal, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding provider failed for an
	// item after its retry budget was exhausted. The item stays retriable.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrIndexUnavailable indicates the vector index storage is unreachable.
	// Fatal for the request; the corpus itself is unaffected.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrRateLimited indicates the generation provider rejected the call due
	// to rate limiting. Retried with bounded backoff before surfacing.
	ErrRateLimited = errors.New("generation rate limited")

	// ErrInvalidRequest indicates the generation provider rejected the call as
	// malformed, e.g. the prompt exceeds model limits. Fatal.
	ErrInvalidRequest = errors.New("generation request invalid")

	// ErrAuthFailure indicates the generation provider rejected the caller's
	// credentials. Fatal, never retried.
	ErrAuthFailure = errors.New("generation auth failure")

	// ErrTimedOut indicates the request deadline expired and the in-flight
	// call was abandoned.
	ErrTimedOut = errors.New("request timed out")
)

// Domain validation errors
var (
	// ErrEmptyQuery indicates an empty query string.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmptyDocumentName indicates a document without a name.
	ErrEmptyDocumentName = errors.New("document name cannot be empty")

	// ErrEmptyDocumentText indicates a document without text content.
	ErrEmptyDocumentText = errors.New("document text cannot be empty")

	// ErrInvalidChunkSpan indicates a chunk whose EndOffset is not greater
	// than its StartOffset.
	ErrInvalidChunkSpan = errors.New("chunk end offset must be greater than start offset")

	// ErrInvalidAnswerMode indicates an AnswerMode value outside the two
	// defined variants.
	ErrInvalidAnswerMode = errors.New("invalid answer mode")
)
