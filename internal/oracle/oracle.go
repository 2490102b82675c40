// Package oracle adapts hosted language models to a single text-in,
// text-out call.
package oracle

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a model answers without any text.
var ErrEmptyResponse = errors.New("no content returned from model")

// Oracle produces a completion for a prompt.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Oracle.
type Func func(ctx context.Context, prompt string) (string, error)

// Generate implements Oracle.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
