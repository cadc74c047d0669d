// Package llm holds the language model capability used by the pipeline and
// its langchaingo-backed implementations.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout means the model did not answer within the request timeout.
	ErrTimeout = errors.New("model request timed out")
	// ErrTransport covers every other failure to get an answer from the provider.
	ErrTransport = errors.New("model request failed")
)

// Request is a single prompt. Schema, when set, is the JSON Schema the reply
// must satisfy and switches the provider into JSON output mode.
type Request struct {
	System  string
	User    string
	Schema  []byte
	Timeout time.Duration
}

// Client is the language model capability. Implementations make exactly one
// provider call per Request and never retry.
type Client interface {
	Request(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to Client.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Request(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

func withTimeout(ctx context.Context, to time.Duration) (context.Context, context.CancelFunc) {
	if to <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, to)
}

// annotateError maps a provider error onto the taxonomy. Caller cancellation is
// passed through untouched so it can unwind as an abort.
func annotateError(parent, call context.Context, err error, to time.Duration) error {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return fmt.Errorf("model request canceled: %w", parent.Err())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(call.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w after %s: %v", ErrTimeout, to, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
}
