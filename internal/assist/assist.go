package assist

import "context"

// Responder answers one free-text question. Implementations do not retry or
// cache; the web boundary maps any error to a placeholder answer so the chat
// feature degrades instead of failing the request.
type Responder interface {
	Respond(ctx context.Context, question string) (string, error)
}
