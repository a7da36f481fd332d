package transfer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// connectWaitMax bounds how long a caller waits for another caller's
// in-flight connection attempt before giving up.
const connectWaitMax = 10 * time.Second

// ConnManager owns the lifecycle of a single pooled FTP session: lazy
// connect, reuse, idle-timeout close, invalidate-on-error. At most one
// live session exists at any time, and a closed session is never handed
// to a caller.
type ConnManager struct {
	cfg         Config
	dial        DialFunc
	log         *zap.SugaredLogger
	connectWait time.Duration

	mu           sync.Mutex
	session      Session
	pending      *pendingConnect
	lastActivity time.Time
	idleTimer    *time.Timer
}

// pendingConnect is the one-shot future all concurrent callers wait on
// while a connection attempt is in flight. It resolves exactly once, when
// done is closed; session and err must only be read after that.
type pendingConnect struct {
	done    chan struct{}
	session Session
	err     *ClassifiedError
}

// NewConnManager creates a manager for the given configuration. The dial
// function performs the actual connect/login handshake.
func NewConnManager(cfg Config, dial DialFunc, log *zap.SugaredLogger) *ConnManager {
	return &ConnManager{
		cfg:         cfg.WithDefaults(),
		dial:        dial,
		log:         log,
		connectWait: connectWaitMax,
	}
}

// Get returns a usable session, connecting lazily on first use. A live
// session is returned immediately with no network round-trip. If another
// caller's connect attempt is in flight, Get waits for it to resolve,
// bounded by connectWait. The activity timestamp and idle timer are
// refreshed on every call regardless of outcome.
func (m *ConnManager) Get(ctx context.Context) (Session, error) {
	m.mu.Lock()
	m.touchLocked()

	if m.session != nil {
		s := m.session
		m.mu.Unlock()
		return s, nil
	}

	if p := m.pending; p != nil {
		m.mu.Unlock()
		return m.await(ctx, p)
	}

	p := &pendingConnect{done: make(chan struct{})}
	m.pending = p
	m.mu.Unlock()

	m.log.Debugw("connecting", "host", m.cfg.Host, "port", m.cfg.Port, "secure", m.cfg.Secure)

	dialCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	session, err := m.dial(dialCtx, m.cfg)
	cancel()

	m.mu.Lock()
	m.pending = nil
	if err != nil {
		cerr := Classify(err, nil)
		p.err = cerr
		close(p.done)
		m.mu.Unlock()
		m.log.Debugw("connection failed", "code", cerr.Code, "error", err)
		return nil, cerr
	}

	m.session = session
	m.lastActivity = time.Now()
	p.session = session
	close(p.done)
	m.mu.Unlock()

	m.log.Debugw("connected", "host", m.cfg.Host)
	return session, nil
}

func (m *ConnManager) await(ctx context.Context, p *pendingConnect) (Session, error) {
	timer := time.NewTimer(m.connectWait)
	defer timer.Stop()

	select {
	case <-p.done:
		if p.err != nil {
			return nil, p.err
		}
		return p.session, nil
	case <-timer.C:
		return nil, newClassified(CodeTimeout, "timed out waiting for connection", true, "", nil)
	case <-ctx.Done():
		return nil, Classify(ctx.Err(), nil)
	}
}

// Close shuts the pooled session down, tolerating failures from the
// shutdown call itself, and clears the idle timer. Idempotent.
func (m *ConnManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

// Shutdown is the graceful variant of Close used at process exit.
func (m *ConnManager) Shutdown() {
	m.Close()
}

// Invalidate forces the pooled session closed so the next Get establishes
// a fresh one. Called after retryable failures, which may leave the
// session in an indeterminate state.
func (m *ConnManager) Invalidate() {
	m.log.Debugw("invalidating connection")
	m.Close()
}

// touchLocked refreshes the activity timestamp and rearms the idle timer.
// Caller holds m.mu.
func (m *ConnManager) touchLocked() {
	m.lastActivity = time.Now()
	if m.idleTimer != nil {
		m.idleTimer.Stop()
	}
	m.idleTimer = time.AfterFunc(m.cfg.IdleTimeout, m.idleExpire)
}

func (m *ConnManager) idleExpire() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return
	}
	if time.Since(m.lastActivity) < m.cfg.IdleTimeout {
		return
	}

	m.log.Debugw("closing idle connection", "idle", m.cfg.IdleTimeout)
	m.closeLocked()
}

// closeLocked clears the timer and slot. Caller holds m.mu.
func (m *ConnManager) closeLocked() {
	if m.idleTimer != nil {
		m.idleTimer.Stop()
		m.idleTimer = nil
	}
	if m.session != nil {
		if err := m.session.Quit(); err != nil {
			m.log.Debugw("error closing connection", "error", err)
		}
		m.session = nil
	}
}
