package core

import (
	"errors"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name:    "valid document",
			doc:     &Document{Name: "notes.md", Text: "Some content."},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "empty name",
			doc:     &Document{Name: "", Text: "content"},
			wantErr: ErrEmptyDocumentName,
		},
		{
			name:    "blank name",
			doc:     &Document{Name: "   ", Text: "content"},
			wantErr: ErrEmptyDocumentName,
		},
		{
			name:    "empty text",
			doc:     &Document{Name: "notes.md", Text: ""},
			wantErr: ErrEmptyDocumentText,
		},
		{
			name:    "whitespace only text",
			doc:     &Document{Name: "notes.md", Text: " \n\t "},
			wantErr: ErrEmptyDocumentText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ValidateDocument() error not classified as ErrInvalidInput: %v", err)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name:    "valid chunk",
			chunk:   &Chunk{Text: "passage", StartOffset: 0, EndOffset: 7},
			wantErr: nil,
		},
		{
			name:    "valid chunk without vector",
			chunk:   &Chunk{Text: "passage", StartOffset: 10, EndOffset: 17, Vector: nil},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "empty text",
			chunk:   &Chunk{Text: "", StartOffset: 0, EndOffset: 5},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "end equals start",
			chunk:   &Chunk{Text: "x", StartOffset: 5, EndOffset: 5},
			wantErr: ErrInvalidChunkSpan,
		},
		{
			name:    "end before start",
			chunk:   &Chunk{Text: "x", StartOffset: 10, EndOffset: 5},
			wantErr: ErrInvalidChunkSpan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery("Who created Python?"); err != nil {
		t.Errorf("ValidateQuery() error = %v, want nil", err)
	}

	for _, q := range []string{"", "   ", "\n\t"} {
		err := ValidateQuery(q)
		if !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("ValidateQuery(%q) error = %v, want ErrEmptyQuery", q, err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ValidateQuery(%q) error not classified as ErrInvalidInput", q)
		}
	}
}

func TestValidateAnswerMode(t *testing.T) {
	if err := ValidateAnswerMode(ModeRAG); err != nil {
		t.Errorf("ValidateAnswerMode(ModeRAG) error = %v", err)
	}
	if err := ValidateAnswerMode(ModeDirect); err != nil {
		t.Errorf("ValidateAnswerMode(ModeDirect) error = %v", err)
	}
	for _, mode := range []AnswerMode{AnswerMode(0), AnswerMode(99)} {
		err := ValidateAnswerMode(mode)
		if !errors.Is(err, ErrInvalidAnswerMode) {
			t.Errorf("ValidateAnswerMode(%d) error = %v, want ErrInvalidAnswerMode", mode, err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ValidateAnswerMode(%d) error not classified as ErrInvalidInput: %v", mode, err)
		}
	}
}
