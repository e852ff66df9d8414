package redisbox

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/gen3talk/internal/ipc"
)

func newTestBackend(t *testing.T, ttl time.Duration) (*Backend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b := NewWithClient(client, "test", ttl, nil)
	t.Cleanup(func() { _ = b.Close() })
	require.NoError(t, b.Init(context.Background()))
	return b, mr
}

func TestBackend_RequestScenario(t *testing.T) {
	b, _ := newTestBackend(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, b.SubmitRequest(ctx, "req-1", []byte("hello")))

	req, err := b.ReadRequest(ctx)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "req-1", req.ID)
	assert.Equal(t, []byte("hello"), req.Payload)

	req, err = b.ReadRequest(ctx)
	require.NoError(t, err)
	assert.Nil(t, req)
}

func TestBackend_FIFO(t *testing.T) {
	b, _ := newTestBackend(t, time.Minute)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, b.SubmitRequest(ctx, id, []byte(id)))
	}

	for _, want := range []string{"a", "b", "c"} {
		req, err := b.ReadRequest(ctx)
		require.NoError(t, err)
		require.NotNil(t, req)
		assert.Equal(t, want, req.ID)
	}
}

func TestBackend_ExpiredRequestsSkipped(t *testing.T) {
	b, mr := newTestBackend(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, b.SubmitRequest(ctx, "stale", []byte("old")))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, b.SubmitRequest(ctx, "fresh", []byte("new")))

	req, err := b.ReadRequest(ctx)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "fresh", req.ID)
}

func TestBackend_ConcurrentConsumersExactlyOnce(t *testing.T) {
	b, _ := newTestBackend(t, time.Minute)
	ctx := context.Background()

	const count = 30
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := b.SubmitRequest(ctx, fmt.Sprintf("req-%d", i), []byte{byte(i)}); err != nil {
				t.Errorf("submit: %v", err)
			}
		}(i)
	}
	wg.Wait()

	var mu sync.Mutex
	seen := make(map[string]int)
	for c := 0; c < 3; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				req, err := b.ReadRequest(ctx)
				if err != nil {
					t.Errorf("read: %v", err)
					return
				}
				if req == nil {
					return
				}
				mu.Lock()
				seen[req.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, count)
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
}

func TestBackend_Responses(t *testing.T) {
	b, mr := newTestBackend(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, b.WriteResponse(ctx, "b", []byte{0xBC, 0xFF}))
	require.NoError(t, b.WriteResponse(ctx, "a", []byte{0xBB, 0xFF}))

	pending, err := b.ListPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, pending)

	data, ok, err := b.TakeResponse(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{0xBB, 0xFF}, data)

	_, ok, err = b.TakeResponse(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	pending, err = b.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "responses expire with the TTL")
}

func TestBackend_RejectsBadID(t *testing.T) {
	b, _ := newTestBackend(t, time.Minute)
	err := b.WriteResponse(context.Background(), "", []byte("x"))
	assert.ErrorIs(t, err, ipc.ErrInvalidID)
}

func TestBackend_InitUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	b, err := New(Config{URL: "redis://" + addr, Prefix: "x"}, nil)
	require.NoError(t, err)
	defer b.Close()

	err = b.Init(context.Background())
	assert.ErrorIs(t, err, ipc.ErrBackendUnavailable)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(Config{URL: "not a url"}, nil)
	assert.Error(t, err)
}

func TestService_UsesBackendGenerator(t *testing.T) {
	b, _ := newTestBackend(t, time.Minute)
	svc := ipc.NewService(b)
	assert.Len(t, svc.GenerateID(), 32)
}

func TestBackend_UnreadableRequestIsRequeued(t *testing.T) {
	b, mr := newTestBackend(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, b.SubmitRequest(ctx, "r2", []byte("hi")))
	mr.Del("test:req:r2")
	_, err := mr.Lpush("test:req:r2", "not a string")
	require.NoError(t, err)

	_, err = b.ReadRequest(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "r2")

	queue, err := mr.List("test:queue")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, queue)

	mr.Del("test:req:r2")
	require.NoError(t, mr.Set("test:req:r2", "hi"))

	req, err := b.ReadRequest(ctx)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "r2", req.ID)
	assert.Equal(t, []byte("hi"), req.Payload)
}
