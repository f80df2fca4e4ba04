package llm

import (
	"context"
	"errors"
)

// ErrProvidersExhausted indicates every provider in a fallback chain
// failed. This is the one error class that aborts a whole swarm run:
// without a completion backend no further progress is possible.
var ErrProvidersExhausted = errors.New("llm: all providers exhausted")

// Completer is the narrow interface the rest of the system depends on
// for blocking completions. *Router implements it.
type Completer interface {
	Complete(ctx context.Context, req Request, hint Complexity) (*Response, error)
}

// Streamer produces incremental completions ending with a final chunk.
type Streamer interface {
	Stream(ctx context.Context, req Request, hint Complexity) (<-chan Chunk, error)
}

// Provider is a single completion backend (one vendor or endpoint).
type Provider interface {
	// Name identifies the provider for routing and fallback chains.
	Name() string
	Completer
	Streamer
}
