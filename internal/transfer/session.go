package transfer

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jlaffaye/ftp"
)

// Session is one authenticated FTP connection. It is owned exclusively by
// the ConnManager; callers borrow it for the duration of a single operation
// and must not retain it.
type Session interface {
	Stor(path string, r io.Reader) error
	Retr(path string) (io.ReadCloser, error)
	List(path string) ([]Entry, error)
	MakeDir(path string) error
	RemoveDir(path string) error
	Delete(path string) error
	NoOp() error
	Quit() error
}

// EntryKind is the normalized type of a remote directory entry.
type EntryKind int

const (
	KindUnknown EntryKind = iota
	KindFile
	KindDir
	KindLink
)

// Entry is one child of a remote directory listing. Code carries the type
// as reported by the transport, which may be a single character ("d", "-")
// or a numeric code ("0", "1") depending on the server's reply format.
// Use Kind to discriminate; both encodings are equivalent.
type Entry struct {
	Name string
	Code string
	Size uint64
}

// Kind normalizes the entry's raw type code.
func (e Entry) Kind() EntryKind {
	switch e.Code {
	case "-", "f", "file", "0":
		return KindFile
	case "d", "dir", "directory", "1":
		return KindDir
	case "l", "link", "2":
		return KindLink
	default:
		return KindUnknown
	}
}

// DialFunc establishes an authenticated session. Injected into the
// ConnManager so tests can substitute an in-memory session.
type DialFunc func(ctx context.Context, cfg Config) (Session, error)

// Dial connects and logs in to the configured FTP server, optionally over
// explicit TLS.
func Dial(ctx context.Context, cfg Config) (Session, error) {
	cfg = cfg.WithDefaults()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(cfg.ConnectTimeout),
	}
	if cfg.Secure {
		opts = append(opts, ftp.DialWithExplicitTLS(&tls.Config{ServerName: cfg.Host}))
	}
	if cfg.Debug {
		opts = append(opts, ftp.DialWithDebugOutput(os.Stderr))
	}

	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	if err := conn.Login(cfg.User, cfg.Password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("login failed for %s@%s: %w", cfg.User, addr, err)
	}

	return &ftpSession{conn: conn}, nil
}

// ftpSession adapts *ftp.ServerConn to the Session interface.
type ftpSession struct {
	conn *ftp.ServerConn
}

var _ Session = (*ftpSession)(nil)

func (s *ftpSession) Stor(path string, r io.Reader) error {
	return s.conn.Stor(path, r)
}

func (s *ftpSession) Retr(path string) (io.ReadCloser, error) {
	resp, err := s.conn.Retr(path)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *ftpSession) List(path string) ([]Entry, error) {
	raw, err := s.conn.List(path)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		entries = append(entries, Entry{
			Name: e.Name,
			Code: strconv.Itoa(int(e.Type)),
			Size: e.Size,
		})
	}
	return entries, nil
}

func (s *ftpSession) MakeDir(path string) error   { return s.conn.MakeDir(path) }
func (s *ftpSession) RemoveDir(path string) error { return s.conn.RemoveDir(path) }
func (s *ftpSession) Delete(path string) error    { return s.conn.Delete(path) }
func (s *ftpSession) NoOp() error                 { return s.conn.NoOp() }
func (s *ftpSession) Quit() error                 { return s.conn.Quit() }
