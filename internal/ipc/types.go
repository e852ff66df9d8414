// Package ipc defines the request/response transport between the dialogue
// loop and the emulator-side peer.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidID is returned when a request id cannot be used as a key.
var ErrInvalidID = errors.New("invalid request id")

// ErrBackendUnavailable is returned when a transport cannot be reached.
var ErrBackendUnavailable = errors.New("ipc backend unavailable")

// Request is a message received from the peer
type Request struct {
	// ID identifies the request; the response carries the same ID
	ID string
	// Payload is the raw game-encoded string
	Payload []byte
}

// Backend is a request/response transport.
//
// ReadRequest returns (nil, nil) when no request is available; callers poll.
// A request is returned by at most one ReadRequest call. WriteResponse
// publishes the payload atomically: the peer sees either nothing or the
// complete response.
type Backend interface {
	Init(ctx context.Context) error
	ReadRequest(ctx context.Context) (*Request, error)
	WriteResponse(ctx context.Context, id string, payload []byte) error
	ListPending(ctx context.Context) ([]string, error)
}

// IDGenerator is implemented by backends that mint their own request ids.
type IDGenerator interface {
	GenerateID() string
}

// Requester is the peer side of a transport. The emulator script plays this
// role in production; the CLI and tests use it to drive a mailbox.
type Requester interface {
	SubmitRequest(ctx context.Context, id string, payload []byte) error
	TakeResponse(ctx context.Context, id string) ([]byte, bool, error)
}

// ValidateID checks that id is usable as part of a file name or key.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if strings.ContainsAny(id, `/\:*?"<>|`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return fmt.Errorf("%w: %q contains non-printable characters", ErrInvalidID, id)
		}
	}
	return nil
}
