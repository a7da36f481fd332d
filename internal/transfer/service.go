package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// maxRetryDelay caps the exponential backoff between attempts.
const maxRetryDelay = 5 * time.Second

// maxWalkDepth bounds directory recursion so a pathological remote tree
// cannot exhaust the stack.
const maxWalkDepth = 64

// Service executes file operations through the ConnManager, wrapped in a
// retry/backoff policy, and implements the recursive bulk upload/download
// walks on top of them.
type Service struct {
	manager *ConnManager
	cfg     Config
	log     *zap.SugaredLogger
}

// NewService creates a transfer service over the given connection manager.
func NewService(manager *ConnManager, cfg Config, log *zap.SugaredLogger) *Service {
	return &Service{
		manager: manager,
		cfg:     cfg.WithDefaults(),
		log:     log,
	}
}

// execute runs op with a borrowed session, retrying retryable failures up
// to cfg.MaxRetries total attempts with capped exponential backoff. The
// pooled connection is invalidated between retryable attempts so a stale
// handle is never reused blindly. Non-retryable failures surface after
// exactly one attempt.
func (s *Service) execute(ctx context.Context, name, contextPath string, op func(Session) error) error {
	maxRetries := s.cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var cerr *ClassifiedError
	for attempt := 1; attempt <= maxRetries; attempt++ {
		session, err := s.manager.Get(ctx)
		if err == nil {
			err = op(session)
			if err == nil {
				return nil
			}
		}
		cerr = Classify(err, &ErrorContext{Path: contextPath})

		if attempt == maxRetries || !cerr.Retryable {
			return cerr
		}

		s.manager.Invalidate()

		delay := backoffDelay(s.cfg.RetryDelay, attempt)
		s.log.Warnw("operation failed, retrying",
			"operation", name,
			"attempt", attempt,
			"max", maxRetries,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return Classify(ctx.Err(), &ErrorContext{Path: contextPath})
		case <-time.After(delay):
		}
	}

	return cerr
}

// backoffDelay is base * 2^(attempt-1), capped at maxRetryDelay.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// UploadFile uploads a local file to the remote path, creating the remote
// parent directory if needed. A missing local file fails fast without any
// network activity.
func (s *Service) UploadFile(ctx context.Context, localPath, remotePath string) error {
	if err := checkLocalFile(localPath); err != nil {
		return err
	}

	if parent := path.Dir(remotePath); parent != "" && parent != "/" && parent != "." {
		s.ensureRemoteDir(ctx, parent)
	}

	return s.storFile(ctx, localPath, remotePath)
}

// storFile transfers the file without touching remote parent directories.
// The local file is reopened on every attempt so a retry starts from the
// beginning.
func (s *Service) storFile(ctx context.Context, localPath, remotePath string) error {
	err := s.execute(ctx, "upload file", remotePath, func(session Session) error {
		f, err := os.Open(localPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return session.Stor(remotePath, f)
	})
	if err != nil {
		return err
	}

	s.log.Infow("uploaded", "local", localPath, "remote", remotePath)
	return nil
}

// DownloadFile downloads a remote file to the local path, creating local
// parent directories as needed.
func (s *Service) DownloadFile(ctx context.Context, remotePath, localPath string) error {
	if dir := filepath.Dir(localPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Classify(err, &ErrorContext{Path: localPath})
		}
	}

	err := s.execute(ctx, "download file", remotePath, func(session Session) error {
		r, err := session.Retr(remotePath)
		if err != nil {
			return err
		}
		defer r.Close()

		f, err := os.Create(localPath)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(f, r)
		return err
	})
	if err != nil {
		return err
	}

	s.log.Infow("downloaded", "remote", remotePath, "local", localPath)
	return nil
}

// DeleteFile removes a remote file.
func (s *Service) DeleteFile(ctx context.Context, remotePath string) error {
	return s.execute(ctx, "delete file", remotePath, func(session Session) error {
		return session.Delete(remotePath)
	})
}

// MakeDir creates a single remote directory.
func (s *Service) MakeDir(ctx context.Context, remotePath string) error {
	return s.execute(ctx, "create directory", remotePath, func(session Session) error {
		return session.MakeDir(remotePath)
	})
}

// RemoveDir removes a remote directory.
func (s *Service) RemoveDir(ctx context.Context, remotePath string) error {
	return s.execute(ctx, "remove directory", remotePath, func(session Session) error {
		return session.RemoveDir(remotePath)
	})
}

// List returns the entries of a remote directory.
func (s *Service) List(ctx context.Context, remotePath string) ([]Entry, error) {
	var entries []Entry
	err := s.execute(ctx, "list directory", remotePath, func(session Session) error {
		var err error
		entries, err = session.List(remotePath)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// TestConnection forces one connection acquisition to validate the
// configured credentials.
func (s *Service) TestConnection(ctx context.Context) error {
	return s.execute(ctx, "test connection", "", func(session Session) error {
		return session.NoOp()
	})
}

// Shutdown closes the pooled connection. Intended to be called once at
// process exit.
func (s *Service) Shutdown() {
	s.manager.Shutdown()
}

// UploadAll recursively uploads the local root into the remote root. The
// local root must exist; a missing root aborts before any traversal. Leaf
// failures inside the walk are logged and skipped so one bad file cannot
// halt the whole sync.
func (s *Service) UploadAll(ctx context.Context, localRoot, remoteRoot string) error {
	info, err := os.Stat(localRoot)
	if err != nil {
		return newClassified(CodeFileNotFound, "local directory not found", false, localRoot, err)
	}
	if !info.IsDir() {
		return newClassified(CodeFileNotFound, "not a directory", false, localRoot, fmt.Errorf("%s is not a directory", localRoot))
	}

	if err := s.ensureRemoteRoot(ctx, remoteRoot); err != nil {
		return err
	}

	if err := s.uploadTree(ctx, localRoot, remoteRoot, 0); err != nil {
		return err
	}

	s.log.Infow("upload completed", "local", localRoot, "remote", remoteRoot)
	return nil
}

func (s *Service) uploadTree(ctx context.Context, localDir, remoteDir string, depth int) error {
	if depth >= maxWalkDepth {
		return newClassified(CodeUnknown, "directory tree too deep", false, localDir, nil)
	}

	entries, err := os.ReadDir(localDir)
	if err != nil {
		return Classify(err, &ErrorContext{Path: localDir})
	}
	if len(entries) == 0 {
		s.log.Debugw("empty directory", "path", localDir)
		return nil
	}

	for _, entry := range entries {
		localChild := filepath.Join(localDir, entry.Name())
		remoteChild := path.Join(remoteDir, entry.Name())

		if entry.IsDir() {
			if err := s.MakeDir(ctx, remoteChild); err != nil {
				s.log.Debugw("remote directory may already exist", "path", remoteChild, "error", err)
			}
			if err := s.uploadTree(ctx, localChild, remoteChild, depth+1); err != nil {
				s.log.Warnw("skipping directory", "path", localChild, "error", err)
			}
			continue
		}

		if err := s.storFile(ctx, localChild, remoteChild); err != nil {
			s.log.Warnw("skipping file", "path", localChild, "error", err)
		}
	}

	return nil
}

// DownloadAll recursively downloads the remote root into the local root.
// An unreachable remote root aborts before any traversal; leaf failures
// inside the walk are logged and skipped.
func (s *Service) DownloadAll(ctx context.Context, remoteRoot, localRoot string) error {
	entries, err := s.List(ctx, remoteRoot)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(localRoot, 0o755); err != nil {
		return Classify(err, &ErrorContext{Path: localRoot})
	}

	s.downloadEntries(ctx, entries, remoteRoot, localRoot, 0)

	s.log.Infow("download completed", "remote", remoteRoot, "local", localRoot)
	return nil
}

func (s *Service) downloadEntries(ctx context.Context, entries []Entry, remoteDir, localDir string, depth int) {
	if len(entries) == 0 {
		s.log.Debugw("empty directory", "path", remoteDir)
		return
	}

	for _, entry := range entries {
		remoteChild := path.Join(remoteDir, entry.Name)
		localChild := filepath.Join(localDir, entry.Name)

		switch entry.Kind() {
		case KindDir:
			if depth+1 >= maxWalkDepth {
				s.log.Warnw("skipping directory, tree too deep", "path", remoteChild)
				continue
			}
			if err := os.MkdirAll(localChild, 0o755); err != nil {
				s.log.Warnw("skipping directory", "path", localChild, "error", err)
				continue
			}
			children, err := s.List(ctx, remoteChild)
			if err != nil {
				s.log.Warnw("skipping directory", "path", remoteChild, "error", err)
				continue
			}
			s.downloadEntries(ctx, children, remoteChild, localChild, depth+1)

		case KindFile:
			if err := s.DownloadFile(ctx, remoteChild, localChild); err != nil {
				s.log.Warnw("skipping file", "path", remoteChild, "error", err)
			}

		default:
			s.log.Warnw("skipping entry of unrecognized type", "path", remoteChild, "type", entry.Code)
		}
	}
}

// ensureRemoteRoot makes sure the remote root directory exists, creating
// it (and any missing parents) only when the listing reports it missing.
func (s *Service) ensureRemoteRoot(ctx context.Context, remoteRoot string) error {
	_, err := s.List(ctx, remoteRoot)
	if err == nil {
		return nil
	}

	cerr := Classify(err, &ErrorContext{Path: remoteRoot})
	if cerr.Code != CodeFileNotFound {
		return cerr
	}

	s.ensureRemoteDir(ctx, remoteRoot)
	return nil
}

// ensureRemoteDir best-effort creates every segment of the remote path.
// Failures for segments that already exist are expected and ignored.
func (s *Service) ensureRemoteDir(ctx context.Context, remoteDir string) {
	err := s.execute(ctx, "create directory", remoteDir, func(session Session) error {
		for _, prefix := range remotePrefixes(remoteDir) {
			if err := session.MakeDir(prefix); err != nil {
				s.log.Debugw("mkdir skipped", "path", prefix, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Debugw("could not ensure remote directory", "path", remoteDir, "error", err)
	}
}

// remotePrefixes returns the cumulative POSIX path prefixes of dir,
// e.g. "/a/b/c" -> ["/a", "/a/b", "/a/b/c"].
func remotePrefixes(dir string) []string {
	clean := path.Clean(dir)
	if clean == "/" || clean == "." || clean == "" {
		return nil
	}

	rooted := clean[0] == '/'
	trimmed := clean
	if rooted {
		trimmed = clean[1:]
	}

	var prefixes []string
	current := ""
	for _, part := range splitPath(trimmed) {
		if current == "" {
			current = part
		} else {
			current = current + "/" + part
		}
		p := current
		if rooted {
			p = "/" + current
		}
		prefixes = append(prefixes, p)
	}
	return prefixes
}

func splitPath(p string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(p); i++ {
		if i == len(p) || p[i] == '/' {
			if i > start {
				parts = append(parts, p[start:i])
			}
			start = i + 1
		}
	}
	return parts
}

// checkLocalFile verifies a local file exists and is a regular file,
// failing fast with a classified error before any network use.
func checkLocalFile(localPath string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return newClassified(CodeFileNotFound, "local file not found", false, localPath, err)
	}
	if info.IsDir() {
		return newClassified(CodeFileNotFound, "not a regular file", false, localPath, fmt.Errorf("%s is a directory", localPath))
	}
	return nil
}
