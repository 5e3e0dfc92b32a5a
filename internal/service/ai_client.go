package service

import (
	"context"
	"errors"
)

var (
	// ErrParserDisabled is returned by completion clients without credentials.
	ErrParserDisabled = errors.New("completion service is not enabled (missing API key)")
	// ErrEmptyCompletion is returned when the service answered with no content.
	ErrEmptyCompletion = errors.New("completion service returned no content")
)

// Completer is the external text-completion collaborator: one request, one
// response, no streaming.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// Ensure OpenAIClient implements Completer
var _ Completer = (*OpenAIClient)(nil)
