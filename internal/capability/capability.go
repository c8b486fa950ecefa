// Package capability wraps each downstream service (chat completion, web
// search, tool-call image lookup, vector search) behind one call signature.
package capability

import (
	"context"

	"carsales-backend/internal/models"
)

// Capability is a single downstream service the dispatcher can route to.
type Capability interface {
	Name() string
	Invoke(ctx context.Context, messages []models.ChatMessage) (*Result, error)
}

// Result is the raw outcome of a capability before normalization.
type Result struct {
	Message string
	// ID is the provider-issued response id, empty when the provider has none.
	ID     string
	Images []string
	// Error is a domain fallback message delivered inside a successful reply.
	Error string
	// Shaped marks results the adapter already normalized itself; the
	// dispatcher passes them through untouched.
	Shaped bool
}

// Func adapts a plain function to the Capability interface.
type Func struct {
	CapabilityName string
	Fn             func(ctx context.Context, messages []models.ChatMessage) (*Result, error)
}

func (f Func) Name() string { return f.CapabilityName }

func (f Func) Invoke(ctx context.Context, messages []models.ChatMessage) (*Result, error) {
	return f.Fn(ctx, messages)
}
