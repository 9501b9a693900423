// Package prompt assembles generation prompts from retrieved passages.
//
// The Assembler fits retrieved chunks into a token budget, dropping the
// lowest-ranked passages first, and records exactly which chunks survived so
// answers can attribute their sources truthfully. Passage text is escaped
// before insertion so document content can't interfere with the prompt's
// structural tags.
package prompt
