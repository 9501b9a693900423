// Package splitter cuts document text into overlapping spans for indexing.
//
// Spans carry rune offsets back into the source text, so a chunk can always
// be located in the document it came from. Consecutive spans overlap by a
// fixed number of runes to preserve context across chunk boundaries, and
// span ends prefer sentence or whitespace breaks when one falls close enough
// to the hard cut.
package splitter
