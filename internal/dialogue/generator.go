package dialogue

import (
	"context"
	"errors"
	"strings"
)

// Generator produces a rewrite of a dialogue line
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// RetryableError marks a transient generation failure
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Retryable wraps err so that IsRetryable reports true
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, is a RetryableError
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Echo returns the prompt unchanged
type Echo struct{}

// Generate implements Generator
func (Echo) Generate(ctx context.Context, prompt string) (string, error) {
	return prompt, ctx.Err()
}

// dummyMaxRunes caps how much of the prompt the dummy provider echoes
const dummyMaxRunes = 60

// Dummy is a deterministic provider for development: it tags a prefix of the
// prompt with [DUMMY]
type Dummy struct{}

// Generate implements Generator
func (Dummy) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	runes := []rune(prompt)
	if len(runes) > dummyMaxRunes {
		runes = runes[:dummyMaxRunes]
	}
	return strings.TrimSpace("[DUMMY]" + string(runes)), nil
}
