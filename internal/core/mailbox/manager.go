package mailbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aki/gen3talk/internal/core/logger"
	"github.com/aki/gen3talk/internal/filemanager"
	"github.com/aki/gen3talk/internal/ipc"
)

// DirPerm restricts the mailbox directory to the owning user
const DirPerm os.FileMode = 0o700

// Manager is the file-backed ipc.Backend.
//
// There is no in-process locking: a request is claimed by renaming it to a
// unique name before it is read, so concurrent consumers never deliver the
// same request twice, and responses are published by renaming a fully
// synced temporary file over the canonical name.
type Manager struct {
	dir    string
	ttl    time.Duration
	files  *filemanager.Manager
	logger logger.Logger
	now    func() time.Time
}

var (
	_ ipc.Backend     = (*Manager)(nil)
	_ ipc.IDGenerator = (*Manager)(nil)
	_ ipc.Requester   = (*Manager)(nil)
)

// Option configures a Manager
type Option func(*Manager)

// WithTTL sets the entry lifetime. A non-positive TTL disables purging.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithClock overrides the time source used for staleness checks
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a mailbox rooted at dir
func NewManager(dir string, opts ...Option) *Manager {
	m := &Manager{
		dir:    dir,
		ttl:    DefaultTTL,
		logger: logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "mailbox")
	m.files = filemanager.NewManager(
		filemanager.WithPerm(filemanager.DefaultPerm),
		filemanager.WithLogger(m.logger),
	)
	return m
}

// Dir returns the mailbox directory
func (m *Manager) Dir() string {
	return m.dir
}

// TTL returns the configured entry lifetime
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Init creates the mailbox directory, restricts it to the owner and purges
// stale entries. It is safe to call repeatedly and from several processes.
func (m *Manager) Init(ctx context.Context) error {
	if err := os.MkdirAll(m.dir, DirPerm); err != nil {
		return fmt.Errorf("failed to create mailbox directory: %w", err)
	}
	if err := os.Chmod(m.dir, DirPerm); err != nil {
		m.logger.Warn("unable to restrict mailbox directory", "dir", m.dir, "error", err)
	}
	if _, err := m.Purge(ctx); err != nil {
		m.logger.Warn("initial purge failed", "error", err)
	}
	return nil
}

// GenerateID returns a random 128-bit request id rendered as hex
func (m *Manager) GenerateID() string {
	return ipc.NewID()
}

type candidate struct {
	name    string
	id      string
	modTime time.Time
}

// ReadRequest consumes the oldest pending request. It returns (nil, nil)
// when no request could be consumed.
func (m *Manager) ReadRequest(ctx context.Context) (*ipc.Request, error) {
	if _, err := m.Purge(ctx); err != nil {
		m.logger.Warn("purge failed", "error", err)
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mailbox directory: %w", err)
	}

	var candidates []candidate
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		kind, id := Classify(entry.Name())
		if kind != KindRequest {
			continue
		}
		if err := ipc.ValidateID(id); err != nil {
			// It could never be answered; leave it for the purge.
			m.logger.Warn("ignoring request with unusable id", "name", entry.Name(), "error", err)
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Consumed or purged since the listing.
			continue
		}
		candidates = append(candidates, candidate{name: entry.Name(), id: id, modTime: info.ModTime()})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].modTime.Equal(candidates[j].modTime) {
			return candidates[i].modTime.Before(candidates[j].modTime)
		}
		return candidates[i].name < candidates[j].name
	})

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if req := m.consume(c); req != nil {
			return req, nil
		}
	}
	return nil, nil
}

// consume claims, reads and deletes one request file.
func (m *Manager) consume(c candidate) *ipc.Request {
	path := filepath.Join(m.dir, c.name)
	claimed := filepath.Join(m.dir, RequestPrefix+c.id+claimMarker+tempSuffix())

	if err := m.files.Claim(path, claimed); err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("could not claim request", "path", path, "error", err)
		}
		return nil
	}

	payload, err := m.files.ReadFile(claimed)
	if err != nil {
		m.logger.Error("could not read request", "path", path, "error", err)
		// Put it back so the next poll retries it.
		if rbErr := m.files.Claim(claimed, path); rbErr != nil && !os.IsNotExist(rbErr) {
			m.logger.Warn("could not release claimed request", "path", claimed, "error", rbErr)
		}
		return nil
	}

	if err := m.files.Remove(claimed); err != nil {
		m.logger.Warn("failed to remove consumed request", "path", claimed, "error", err)
	}

	m.logger.Debug("consumed request", "request_id", c.id, "bytes", len(payload))
	return &ipc.Request{ID: c.id, Payload: payload}
}

// WriteResponse atomically publishes the response for id
func (m *Manager) WriteResponse(ctx context.Context, id string, payload []byte) error {
	if err := ipc.ValidateID(id); err != nil {
		return err
	}
	final := filepath.Join(m.dir, ResponseName(id))
	temp := filepath.Join(m.dir, ResponsePrefix+id+tempMarker+tempSuffix())

	if err := m.files.Publish(final, temp, payload); err != nil {
		return fmt.Errorf("failed to write response %s: %w", id, err)
	}
	m.logger.Debug("published response", "request_id", id, "bytes", len(payload))
	return nil
}

// ListPending returns the ids that have a response waiting for the peer
func (m *Manager) ListPending(ctx context.Context) ([]string, error) {
	if _, err := m.Purge(ctx); err != nil {
		m.logger.Warn("purge failed", "error", err)
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mailbox directory: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if kind, id := Classify(entry.Name()); kind == KindResponse {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Purge removes every entry older than the TTL and reports how many were
// removed. Removal failures are logged and retried on the next purge.
func (m *Manager) Purge(ctx context.Context) (int, error) {
	if m.ttl <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read mailbox directory: %w", err)
	}

	now := m.now()
	removed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= m.ttl {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				m.logger.Error("failed to remove stale entry", "path", path, "error", err)
			}
			continue
		}
		removed++
		m.logger.Info("removed stale entry", "path", path)
	}
	return removed, nil
}

// Entries lists every file in the mailbox
func (m *Manager) Entries(ctx context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mailbox directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		kind, id := Classify(de.Name())
		entries = append(entries, Entry{
			Name:    de.Name(),
			Kind:    kind,
			ID:      id,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModTime.Before(entries[j].ModTime)
	})
	return entries, nil
}

// SubmitRequest publishes a request the way the peer does
func (m *Manager) SubmitRequest(ctx context.Context, id string, payload []byte) error {
	if err := ipc.ValidateID(id); err != nil {
		return err
	}
	final := filepath.Join(m.dir, RequestName(id))
	temp := filepath.Join(m.dir, RequestPrefix+id+tempMarker+tempSuffix())

	if err := m.files.Publish(final, temp, payload); err != nil {
		return fmt.Errorf("failed to write request %s: %w", id, err)
	}
	return nil
}

// TakeResponse reads and deletes the response for id. The boolean is false
// when no response has been published yet.
func (m *Manager) TakeResponse(ctx context.Context, id string) ([]byte, bool, error) {
	if err := ipc.ValidateID(id); err != nil {
		return nil, false, err
	}
	path := filepath.Join(m.dir, ResponseName(id))

	payload, err := m.files.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read response %s: %w", id, err)
	}
	if err := m.files.Remove(path); err != nil {
		return payload, true, fmt.Errorf("failed to remove response %s: %w", id, err)
	}
	return payload, true, nil
}

func tempSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
