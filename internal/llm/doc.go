// Package llm provides the judge-model client layer for the adjudication
// core.
//
// # Core Components
//
//   - JudgeClient: the single-operation interface the adjudication
//     orchestrators depend on
//   - ChatClient: an OpenAI-compatible chat completions client with
//     exponential-backoff retry on rate limits and server errors
//   - Registry: maps model identifiers to judge clients so each chair's
//     ModelID can name a distinct backing judge
//
// Prompt construction and output parsing live with the callers; this package
// only moves role-tagged messages to a completions endpoint and returns the
// raw completion text.
package llm
