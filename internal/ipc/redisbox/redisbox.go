// Package redisbox is an ipc.Backend on Redis, for setups where the peer
// talks to Redis instead of sharing a directory.
//
// Keys, for a prefix P:
//
//	P:queue      list of request ids in arrival order
//	P:req:<id>   request payload, expires after the TTL
//	P:resp:<id>  response payload, expires after the TTL
//
// Staleness is Redis expiry: a queued id whose payload has expired is
// skipped.
package redisbox

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aki/gen3talk/internal/core/logger"
	"github.com/aki/gen3talk/internal/ipc"
)

// DefaultPrefix namespaces all keys
const DefaultPrefix = "gen3talk"

// Config holds connection settings
type Config struct {
	URL    string
	Prefix string
	TTL    time.Duration
}

// Backend implements ipc.Backend and ipc.Requester on Redis
type Backend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

var (
	_ ipc.Backend     = (*Backend)(nil)
	_ ipc.Requester   = (*Backend)(nil)
	_ ipc.IDGenerator = (*Backend)(nil)
)

// New connects lazily; nothing is sent to Redis until Init
func New(cfg Config, log logger.Logger) (*Backend, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.MaxRetries = 3

	return NewWithClient(redis.NewClient(opts), cfg.Prefix, cfg.TTL, log), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, prefix string, ttl time.Duration, log logger.Logger) *Backend {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Backend{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log.With("component", "redisbox"),
	}
}

// Close closes the underlying client
func (b *Backend) Close() error {
	return b.client.Close()
}

func (b *Backend) queueKey() string { return b.prefix + ":queue" }
func (b *Backend) requestKey(id string) string { return b.prefix + ":req:" + id }
func (b *Backend) responseKey(id string) string { return b.prefix + ":resp:" + id }

// expiry maps a non-positive TTL to "never expire"
func (b *Backend) expiry() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	return b.ttl
}

// Init checks that Redis is reachable
func (b *Backend) Init(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ipc.ErrBackendUnavailable, err)
	}
	return nil
}

// GenerateID returns a random request id
func (b *Backend) GenerateID() string {
	return ipc.NewID()
}

// ReadRequest pops queued ids until one still has a payload. An id whose
// payload cannot be read is pushed back onto the queue.
func (b *Backend) ReadRequest(ctx context.Context) (*ipc.Request, error) {
	for {
		id, err := b.client.LPop(ctx, b.queueKey()).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to pop request queue: %w", err)
		}

		payload, err := b.client.GetDel(ctx, b.requestKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			b.logger.Info("skipping expired request", "request_id", id)
			continue
		}
		if err != nil {
			// Put the id back at the head so the next poll retries it.
			if qErr := b.client.LPush(context.WithoutCancel(ctx), b.queueKey(), id).Err(); qErr != nil {
				b.logger.Error("failed to requeue request", "request_id", id, "error", qErr)
			}
			return nil, fmt.Errorf("failed to read request %s: %w", id, err)
		}
		return &ipc.Request{ID: id, Payload: payload}, nil
	}
}

// WriteResponse stores the response in one SET, which is atomic
func (b *Backend) WriteResponse(ctx context.Context, id string, payload []byte) error {
	if err := ipc.ValidateID(id); err != nil {
		return err
	}
	if err := b.client.Set(ctx, b.responseKey(id), payload, b.expiry()).Err(); err != nil {
		return fmt.Errorf("failed to write response %s: %w", id, err)
	}
	return nil
}

// ListPending scans for response keys
func (b *Backend) ListPending(ctx context.Context) ([]string, error) {
	prefix := b.responseKey("")
	ids := []string{}
	iter := b.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan responses: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// SubmitRequest stores the payload and queues the id in one transaction
func (b *Backend) SubmitRequest(ctx context.Context, id string, payload []byte) error {
	if err := ipc.ValidateID(id); err != nil {
		return err
	}
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, b.requestKey(id), payload, b.expiry())
		pipe.RPush(ctx, b.queueKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to submit request %s: %w", id, err)
	}
	return nil
}

// TakeResponse reads and deletes the response for id
func (b *Backend) TakeResponse(ctx context.Context, id string) ([]byte, bool, error) {
	if err := ipc.ValidateID(id); err != nil {
		return nil, false, err
	}
	payload, err := b.client.GetDel(ctx, b.responseKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to take response %s: %w", id, err)
	}
	return payload, true, nil
}
