// Package openai provides ai interface implementations backed by
// OpenAI-compatible HTTP APIs (OpenAI, Ollama, LocalAI, vLLM, ...).
//
// Failures from the remote services are classified onto the core error
// taxonomy so callers can branch on errors.Is without knowing which provider
// produced them.
package openai
