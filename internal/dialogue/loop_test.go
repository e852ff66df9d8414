package dialogue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/gen3talk/internal/codec"
	"github.com/aki/gen3talk/internal/core/mailbox"
	"github.com/aki/gen3talk/internal/ipc"
	"github.com/aki/gen3talk/internal/journal"
)

type response struct {
	id      string
	payload []byte
}

type fakeMailbox struct {
	mu        sync.Mutex
	requests  []*ipc.Request
	responses []response
	writeErr  error
}

func (f *fakeMailbox) ReadRequest(ctx context.Context) (*ipc.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil, nil
	}
	req := f.requests[0]
	f.requests = f.requests[1:]
	return req, nil
}

func (f *fakeMailbox) WriteResponse(ctx context.Context, id string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.responses = append(f.responses, response{id: id, payload: payload})
	return nil
}

type fakeRecorder struct {
	entries []*journal.Entry
}

func (f *fakeRecorder) Record(ctx context.Context, e *journal.Entry) error {
	f.entries = append(f.entries, e)
	return nil
}

// scripted returns the results in order, then repeats the last one
type scripted struct {
	results []result
	calls   int
}

type result struct {
	text string
	err  error
}

func (s *scripted) Generate(ctx context.Context, prompt string) (string, error) {
	r := s.results[min(s.calls, len(s.results)-1)]
	s.calls++
	return r.text, r.err
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Backoff = time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond
	return cfg
}

func TestLoop_HandleEcho(t *testing.T) {
	mb := &fakeMailbox{}
	rec := &fakeRecorder{}
	l := NewLoop(mb, Echo{}, testConfig(), WithRecorder(rec))

	payload := codec.Encode("Hello there,\ntrainer!", 255)
	l.Handle(context.Background(), &ipc.Request{ID: "req-1", Payload: payload})

	require.Len(t, mb.responses, 1)
	assert.Equal(t, "req-1", mb.responses[0].id)
	assert.Equal(t, codec.Encode("Hello there, trainer!", 255), mb.responses[0].payload)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "Hello there, trainer!", rec.entries[0].Original)
	assert.Equal(t, "Hello there, trainer!", rec.entries[0].Rewritten)
	assert.Equal(t, codec.FormatHex(payload), rec.entries[0].RequestHex)
}

func TestLoop_HandleFormatsAndEncodes(t *testing.T) {
	mb := &fakeMailbox{}
	long := "The quick brown fox jumps over the lazy dog again"
	l := NewLoop(mb, GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "  “" + long + "”  ", nil
	}), testConfig())

	l.Handle(context.Background(), &ipc.Request{ID: "req-2", Payload: codec.Encode("Hi", 255)})

	require.Len(t, mb.responses, 1)
	got := mb.responses[0].payload
	assert.Equal(t, codec.Encode(Format(long, 25), 255), got)
	assert.Equal(t, byte(codec.Terminator), got[len(got)-1])
	assert.Contains(t, got, byte(codec.Newline))
}

func TestLoop_HandleRespectsMaxLen(t *testing.T) {
	mb := &fakeMailbox{}
	cfg := testConfig()
	cfg.MaxLen = 8
	l := NewLoop(mb, Echo{}, cfg)

	l.Handle(context.Background(), &ipc.Request{ID: "short", Payload: codec.Encode("Hello there trainer", 255)})

	require.Len(t, mb.responses, 1)
	assert.Len(t, mb.responses[0].payload, 8)
}

func TestLoop_RetryableErrorsAreRetried(t *testing.T) {
	mb := &fakeMailbox{}
	gen := &scripted{results: []result{
		{err: Retryable(errors.New("busy"))},
		{err: Retryable(errors.New("busy"))},
		{text: "Third time lucky"},
	}}
	l := NewLoop(mb, gen, testConfig())

	l.Handle(context.Background(), &ipc.Request{ID: "r", Payload: codec.Encode("Hello", 255)})

	assert.Equal(t, 3, gen.calls)
	require.Len(t, mb.responses, 1)
	assert.Equal(t, "Third time lucky", codec.Decode(mb.responses[0].payload))
}

func TestLoop_FatalErrorReturnsOriginal(t *testing.T) {
	mb := &fakeMailbox{}
	gen := &scripted{results: []result{{err: errors.New("model missing")}}}
	l := NewLoop(mb, gen, testConfig())

	payload := []byte{0xC2, 0xDD, 0xFF}
	l.Handle(context.Background(), &ipc.Request{ID: "r", Payload: payload})

	assert.Equal(t, 1, gen.calls)
	require.Len(t, mb.responses, 1)
	assert.Equal(t, payload, mb.responses[0].payload)
}

func TestLoop_ShortRewritesExhaustAttempts(t *testing.T) {
	mb := &fakeMailbox{}
	gen := &scripted{results: []result{{text: " ok "}}}
	cfg := testConfig()
	cfg.MaxAttempts = 4
	l := NewLoop(mb, gen, cfg)

	payload := codec.Encode("Original line", 255)
	l.Handle(context.Background(), &ipc.Request{ID: "r", Payload: payload})

	assert.Equal(t, 4, gen.calls)
	require.Len(t, mb.responses, 1)
	assert.Equal(t, payload, mb.responses[0].payload)
}

func TestLoop_WriteFailureSkipsJournal(t *testing.T) {
	mb := &fakeMailbox{writeErr: errors.New("disk full")}
	rec := &fakeRecorder{}
	l := NewLoop(mb, Echo{}, testConfig(), WithRecorder(rec))

	l.Handle(context.Background(), &ipc.Request{ID: "r", Payload: codec.Encode("Hello", 255)})

	assert.Empty(t, rec.entries)
}

func TestLoop_RunStopsCleanlyOnCancel(t *testing.T) {
	mb := &fakeMailbox{}
	l := NewLoop(mb, Echo{}, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestLoop_RunAgainstFileMailbox(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := mailbox.NewManager(t.TempDir())
	svc, err := ipc.Open(ctx, mgr)
	require.NoError(t, err)

	l := NewLoop(svc, Dummy{}, testConfig())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.NoError(t, mgr.SubmitRequest(ctx, "req-1", codec.Encode("Hello", 255)))

	var got []byte
	require.Eventually(t, func() bool {
		data, ok, err := mgr.TakeResponse(ctx, "req-1")
		if err != nil || !ok {
			return false
		}
		got = data
		return true
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, codec.Encode("[DUMMY]Hello", 255), got)

	cancel()
	assert.NoError(t, <-done)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.True(t, IsRetryable(Retryable(errors.New("busy"))))

	wrapped := errors.Join(errors.New("context"), Retryable(errors.New("busy")))
	assert.True(t, IsRetryable(wrapped))
	assert.Nil(t, Retryable(nil))
}
