package llm

import (
	"context"
	"errors"
)

var (
	ErrTimeout             = errors.New("model call timed out")
	ErrUpstreamUnavailable = errors.New("model endpoint unavailable")
)

// Completer sends one rendered prompt to a text-completion endpoint and returns
// the raw reply. Implementations make exactly one attempt per call.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
