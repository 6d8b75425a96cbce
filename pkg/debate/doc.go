// Package debate implements the debate-opponent session engine: per-debate
// conversational state against an LLM provider, threshold-triggered history
// compaction, and failure absorption for timeouts and content-filtered
// replies.
//
// All state is process memory; nothing is restored across restarts. The
// Manager serializes every mutating operation per debate id, so callers may
// invoke it concurrently. Unrelated debates never contend.
package debate
