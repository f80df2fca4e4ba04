package llm

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Router routes completion requests to a provider chosen by complexity
// hint, falling back through a configured chain when providers fail.
// It implements Completer and Streamer.
type Router struct {
	mu sync.RWMutex
	// providers maps provider name to provider.
	providers map[string]Provider
	// defaultName is the provider used when no routing entry matches.
	defaultName string
	// fallbacks maps a primary provider to its ordered fallback chain.
	fallbacks map[string][]string
	// routing maps a complexity hint to a specific provider name.
	routing map[Complexity]string
	// tracker accumulates token usage across the router's lifetime.
	tracker *TokenTracker
}

// NewRouter creates a router whose default provider has the given name.
func NewRouter(defaultProvider string) *Router {
	return &Router{
		providers:   make(map[string]Provider),
		defaultName: defaultProvider,
		fallbacks:   make(map[string][]string),
		routing:     make(map[Complexity]string),
		tracker:     NewTokenTracker(),
	}
}

// Register adds a provider to the router.
func (r *Router) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	log.Printf("[llm] registered provider: %s", p.Name())
}

// SetFallbacks defines the ordered fallback chain for a primary
// provider.
func (r *Router) SetFallbacks(primary string, fallbacks []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks[primary] = fallbacks
}

// RouteComplexity routes a complexity level to a specific provider.
func (r *Router) RouteComplexity(hint Complexity, provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routing[hint] = provider
}

// Tracker returns the token tracker for this router.
func (r *Router) Tracker() *TokenTracker {
	return r.tracker
}

// Providers returns the names of all registered providers.
func (r *Router) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// chain resolves the ordered provider list for a hint: the routed (or
// default) primary followed by its fallbacks. Caller must hold r.mu.
func (r *Router) chainLocked(hint Complexity) []string {
	primary := r.defaultName
	if routed, ok := r.routing[hint]; ok {
		if _, registered := r.providers[routed]; registered {
			primary = routed
		}
	}
	return append([]string{primary}, r.fallbacks[primary]...)
}

// Complete routes the request through the fallback chain. When every
// provider in the chain fails, the returned error wraps
// ErrProvidersExhausted.
func (r *Router) Complete(ctx context.Context, req Request, hint Complexity) (*Response, error) {
	r.mu.RLock()
	chain := r.chainLocked(hint)
	providers := make([]Provider, 0, len(chain))
	for _, name := range chain {
		if p, ok := r.providers[name]; ok {
			providers = append(providers, p)
		}
	}
	r.mu.RUnlock()

	var lastErr error
	for _, p := range providers {
		resp, err := p.Complete(ctx, req, hint)
		if err != nil {
			lastErr = err
			log.Printf("[llm] provider %s failed: %v, trying fallback", p.Name(), err)
			continue
		}
		r.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)
		return resp, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: last error: %v", ErrProvidersExhausted, lastErr)
	}
	return nil, fmt.Errorf("%w: no providers registered", ErrProvidersExhausted)
}

// Stream streams from the first provider in the chain that accepts the
// request. Mid-stream failures are not retried: the caller sees the
// chunks delivered so far and the stream ends.
func (r *Router) Stream(ctx context.Context, req Request, hint Complexity) (<-chan Chunk, error) {
	r.mu.RLock()
	chain := r.chainLocked(hint)
	providers := make([]Provider, 0, len(chain))
	for _, name := range chain {
		if p, ok := r.providers[name]; ok {
			providers = append(providers, p)
		}
	}
	r.mu.RUnlock()

	var lastErr error
	for _, p := range providers {
		chunks, err := p.Stream(ctx, req, hint)
		if err != nil {
			lastErr = err
			log.Printf("[llm] provider %s stream failed: %v, trying fallback", p.Name(), err)
			continue
		}

		out := make(chan Chunk, 64)
		go func() {
			defer close(out)
			for chunk := range chunks {
				if chunk.Done {
					r.tracker.Add(chunk.Usage.InputTokens, chunk.Usage.OutputTokens)
				}
				select {
				case out <- chunk:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: last error: %v", ErrProvidersExhausted, lastErr)
	}
	return nil, fmt.Errorf("%w: no providers registered", ErrProvidersExhausted)
}
