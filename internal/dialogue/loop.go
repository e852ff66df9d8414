// Package dialogue runs the rewrite loop: it consumes requests from the
// mailbox, asks a Generator for a rewrite and publishes the encoded result.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aki/gen3talk/internal/codec"
	"github.com/aki/gen3talk/internal/core/logger"
	"github.com/aki/gen3talk/internal/ipc"
	"github.com/aki/gen3talk/internal/journal"
)

// ErrAttemptsExhausted is returned when no rewrite met the minimum length
var ErrAttemptsExhausted = errors.New("no usable rewrite within the attempt limit")

// Mailbox is the part of ipc.Service the loop needs
type Mailbox interface {
	ReadRequest(ctx context.Context) (*ipc.Request, error)
	WriteResponse(ctx context.Context, id string, payload []byte) error
}

// Recorder stores processed rewrites
type Recorder interface {
	Record(ctx context.Context, e *journal.Entry) error
}

// Config tunes the loop
type Config struct {
	PollInterval time.Duration
	MaxLen       int
	MinLength    int
	MaxAttempts  int
	Backoff      time.Duration
	WrapWidth    int
}

// DefaultConfig returns the stock loop settings
func DefaultConfig() Config {
	return Config{
		PollInterval: 50 * time.Millisecond,
		MaxLen:       codec.DefaultMaxLen,
		MinLength:    5,
		MaxAttempts:  10,
		Backoff:      200 * time.Millisecond,
		WrapWidth:    DefaultWrapWidth,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.MaxLen <= 0 {
		c.MaxLen = def.MaxLen
	}
	if c.MinLength < 0 {
		c.MinLength = 0
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.Backoff < 0 {
		c.Backoff = 0
	}
	if c.WrapWidth <= 0 {
		c.WrapWidth = def.WrapWidth
	}
	return c
}

// Loop is the consumer side of the mailbox
type Loop struct {
	mailbox   Mailbox
	generator Generator
	codec     codec.Codec
	cfg       Config
	recorder  Recorder
	logger    logger.Logger
}

// Option configures a Loop
type Option func(*Loop)

// WithRecorder journals every published response
func WithRecorder(r Recorder) Option {
	return func(l *Loop) {
		l.recorder = r
	}
}

// WithLogger sets the logger
func WithLogger(log logger.Logger) Option {
	return func(l *Loop) {
		l.logger = log
	}
}

// WithCodec replaces the Gen3 codec
func WithCodec(c codec.Codec) Option {
	return func(l *Loop) {
		l.codec = c
	}
}

// NewLoop creates a loop reading from mailbox
func NewLoop(mailbox Mailbox, generator Generator, cfg Config, opts ...Option) *Loop {
	l := &Loop{
		mailbox:   mailbox,
		generator: generator,
		codec:     codec.New(),
		cfg:       cfg.withDefaults(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "dialogue")
	return l
}

// Run polls the mailbox until ctx is cancelled. Cancellation is a clean
// shutdown and returns nil.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("dialogue loop started", "poll_interval", l.cfg.PollInterval)
	defer l.logger.Info("dialogue loop stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		req, err := l.mailbox.ReadRequest(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Error("failed to read request", "error", err)
		case req != nil:
			l.Handle(ctx, req)
			continue
		}

		if !sleep(ctx, l.cfg.PollInterval) {
			return nil
		}
	}
}

// Handle answers a single request. A request that was consumed is always
// answered: when no rewrite can be produced the original payload goes back
// unchanged.
func (l *Loop) Handle(ctx context.Context, req *ipc.Request) {
	log := l.logger.With("request_id", req.ID)

	original := Flatten(l.codec.Decode(req.Payload))
	log.Info("received", "text", original)

	rewritten, err := l.rewrite(ctx, log, original)

	var payload []byte
	if err != nil {
		log.Warn("returning original text", "error", err)
		rewritten = original
		payload = req.Payload
	} else {
		log.Info("rewritten", "text", rewritten)
		payload = l.codec.Encode(Format(rewritten, l.cfg.WrapWidth), l.cfg.MaxLen)
	}

	// The peer is waiting on this id even when we are shutting down.
	writeCtx := context.WithoutCancel(ctx)
	if err := l.mailbox.WriteResponse(writeCtx, req.ID, payload); err != nil {
		log.Error("failed to publish response", "error", err)
		return
	}
	log.Info("published", "bytes", len(payload))

	if l.recorder == nil {
		return
	}
	entry := &journal.Entry{
		RequestID:   req.ID,
		Original:    original,
		Rewritten:   rewritten,
		RequestHex:  codec.FormatHex(req.Payload),
		ResponseHex: codec.FormatHex(payload),
	}
	if err := l.recorder.Record(writeCtx, entry); err != nil {
		log.Warn("failed to journal rewrite", "error", err)
	}
}

func (l *Loop) rewrite(ctx context.Context, log logger.Logger, prompt string) (string, error) {
	for attempt := 1; attempt <= l.cfg.MaxAttempts; attempt++ {
		out, err := l.generator.Generate(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if !IsRetryable(err) {
				return "", fmt.Errorf("generation failed: %w", err)
			}
			log.Warn("generation failed, retrying", "attempt", attempt, "error", err)
			if !sleep(ctx, l.cfg.Backoff) {
				return "", ctx.Err()
			}
			continue
		}

		out = clean(out)
		if utf8.RuneCountInString(out) >= l.cfg.MinLength {
			return out, nil
		}
		log.Debug("rewrite too short", "attempt", attempt, "text", out)
	}
	return "", ErrAttemptsExhausted
}

// clean strips whitespace and typographic quotes around a rewrite
func clean(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "“”"))
}

// sleep waits for d and reports false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
