package ipc

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service decouples callers from the concrete Backend and owns request id
// generation.
type Service struct {
	backend Backend
}

// NewService wraps an already initialized backend
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Open initializes backend and wraps it
func Open(ctx context.Context, backend Backend) (*Service, error) {
	if err := backend.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize ipc backend: %w", err)
	}
	return NewService(backend), nil
}

// Backend returns the wrapped backend
func (s *Service) Backend() Backend {
	return s.backend
}

// ReadRequest returns the next pending request, or nil if there is none
func (s *Service) ReadRequest(ctx context.Context) (*Request, error) {
	return s.backend.ReadRequest(ctx)
}

// WriteResponse publishes the response for id
func (s *Service) WriteResponse(ctx context.Context, id string, payload []byte) error {
	return s.backend.WriteResponse(ctx, id, payload)
}

// ListPending returns the ids that currently have a published response
func (s *Service) ListPending(ctx context.Context) ([]string, error) {
	return s.backend.ListPending(ctx)
}

// GenerateID returns a new request id, using the backend's generator when
// it has one.
func (s *Service) GenerateID() string {
	if g, ok := s.backend.(IDGenerator); ok {
		return g.GenerateID()
	}
	return NewID()
}

// NewID returns a random 128-bit id as 32 hex characters.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
