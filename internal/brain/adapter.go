// Package brain is the generative text collaborator used when no local
// command handler claims a transcript.
package brain

import "context"

// Preamble is the fixed system instruction for the conversational fallback.
const Preamble = "You are a friendly and conversational AI assistant. Keep your responses concise and natural."

// Apology is the fixed fallback spoken when generation fails; the failure is
// reported separately, it never propagates as the response.
const Apology = "I'm sorry, I'm having trouble processing your request right now."

// Adapter produces a conversational completion for one user utterance.
type Adapter interface {
	Generate(ctx context.Context, preamble, userText string) (string, error)
}
