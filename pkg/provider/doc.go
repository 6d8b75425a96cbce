// Package provider defines the LLM backend contract used by the debate
// engine: a chat call over an ordered history with a tagged reply
// (text, filtered, or transport error), a one-shot generation helper, and
// the Conversation handle that keeps exchange and commit separate so a
// failed call never leaves half a turn behind.
package provider
