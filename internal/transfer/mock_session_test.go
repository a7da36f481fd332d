package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// mockSession is an in-memory Session implementation. Files and
// directories are keyed by full remote path. Errors can be injected per
// method ("Stor") or per method and path ("Stor:/theme/b.txt").
type mockSession struct {
	mu       sync.Mutex
	files    map[string][]byte
	dirs     map[string]bool
	listings map[string][]Entry // explicit listing override per path
	errs     map[string]error
	calls    map[string]int
	storLog  []string
	mkdirLog []string
	closed   bool
}

func newMockSession() *mockSession {
	return &mockSession{
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		listings: make(map[string][]Entry),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (m *mockSession) setFile(p string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = content
}

func (m *mockSession) setDir(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[p] = true
}

func (m *mockSession) setListing(p string, entries []Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[p] = true
	m.listings[p] = entries
}

func (m *mockSession) setError(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[key] = err
}

func (m *mockSession) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// failure records the call and returns any injected error.
// Caller holds m.mu.
func (m *mockSession) failure(method, p string) error {
	m.calls[method]++
	if err, ok := m.errs[method+":"+p]; ok {
		return err
	}
	if err, ok := m.errs[method]; ok {
		return err
	}
	return nil
}

func (m *mockSession) Stor(p string, r io.Reader) error {
	m.mu.Lock()
	err := m.failure("Stor", p)
	m.storLog = append(m.storLog, p)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.files[p] = content
	m.mu.Unlock()
	return nil
}

func (m *mockSession) Retr(p string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("Retr", p); err != nil {
		return nil, err
	}
	content, ok := m.files[p]
	if !ok {
		return nil, errors.New("550 no such file or directory")
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *mockSession) List(p string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("List", p); err != nil {
		return nil, err
	}
	if entries, ok := m.listings[p]; ok {
		return entries, nil
	}
	if !m.dirs[p] {
		return nil, errors.New("550 " + p + ": no such file or directory")
	}

	var entries []Entry
	for d := range m.dirs {
		if path.Dir(d) == p {
			entries = append(entries, Entry{Name: path.Base(d), Code: "d"})
		}
	}
	for f, content := range m.files {
		if path.Dir(f) == p {
			entries = append(entries, Entry{Name: path.Base(f), Code: "-", Size: uint64(len(content))})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *mockSession) MakeDir(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirLog = append(m.mkdirLog, p)
	if err := m.failure("MakeDir", p); err != nil {
		return err
	}
	if m.dirs[p] {
		return errors.New("550 " + p + ": file exists")
	}
	m.dirs[p] = true
	return nil
}

func (m *mockSession) RemoveDir(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("RemoveDir", p); err != nil {
		return err
	}
	delete(m.dirs, p)
	return nil
}

func (m *mockSession) Delete(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("Delete", p); err != nil {
		return err
	}
	if _, ok := m.files[p]; !ok {
		return errors.New("550 " + p + ": no such file or directory")
	}
	delete(m.files, p)
	return nil
}

func (m *mockSession) NoOp() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failure("NoOp", "")
}

func (m *mockSession) Quit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("Quit", ""); err != nil {
		return err
	}
	m.closed = true
	return nil
}

func (m *mockSession) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockSession) storedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.storLog))
	copy(out, m.storLog)
	return out
}

func (m *mockSession) madeDirs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.mkdirLog))
	copy(out, m.mkdirLog)
	return out
}

var _ Session = (*mockSession)(nil)

// mockDialer hands out the same mockSession on every dial and counts
// dials, optionally failing or delaying.
type mockDialer struct {
	mu      sync.Mutex
	session *mockSession
	err     error
	delay   time.Duration
	dials   int
}

func (d *mockDialer) dial(ctx context.Context, _ Config) (Session, error) {
	d.mu.Lock()
	d.dials++
	err := d.err
	delay := d.delay
	session := d.session
	d.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	session.closed = false
	session.mu.Unlock()
	return session, nil
}

func (d *mockDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func testConfig() Config {
	return Config{
		Host:           "ftp.example.com",
		Port:           21,
		User:           "store",
		Password:       "secret",
		ConnectTimeout: time.Second,
		IdleTimeout:    time.Minute,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

// newTestService wires a Service over a mock dialer and session with fast
// retry timing.
func newTestService(session *mockSession) (*Service, *mockDialer) {
	dialer := &mockDialer{session: session}
	cfg := testConfig()
	log := zap.NewNop().Sugar()
	manager := NewConnManager(cfg, dialer.dial, log)
	return NewService(manager, cfg, log), dialer
}
