// Package paths converts between the local theme directory and the remote
// FTP namespace. Remote paths always use forward slashes regardless of the
// host OS.
package paths

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Translator maps paths between one local root and one remote root.
type Translator struct {
	localRoot  string
	remoteRoot string
}

// NewTranslator creates a translator for the given roots. The local root
// is made absolute; the remote root is cleaned to POSIX form.
func NewTranslator(localRoot, remoteRoot string) (*Translator, error) {
	abs, err := filepath.Abs(localRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving local root: %w", err)
	}
	return &Translator{
		localRoot:  abs,
		remoteRoot: path.Clean(strings.ReplaceAll(remoteRoot, "\\", "/")),
	}, nil
}

// LocalRoot returns the absolute local root.
func (t *Translator) LocalRoot() string { return t.localRoot }

// RemoteRoot returns the cleaned remote root.
func (t *Translator) RemoteRoot() string { return t.remoteRoot }

// Rel returns localPath relative to the local root, in slash form. Paths
// outside the root are rejected.
func (t *Translator) Rel(localPath string) (string, error) {
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", localPath, err)
	}
	rel, err := filepath.Rel(t.localRoot, abs)
	if err != nil {
		return "", fmt.Errorf("relativizing %s: %w", localPath, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside the theme directory %s", localPath, t.localRoot)
	}
	return rel, nil
}

// ToRemote maps a local path to its remote counterpart, POSIX-joined onto
// the remote root.
func (t *Translator) ToRemote(localPath string) (string, error) {
	rel, err := t.Rel(localPath)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return t.remoteRoot, nil
	}
	return path.Join(t.remoteRoot, rel), nil
}

// ResolveRemote returns the absolute, cleaned remote form of p. Relative
// paths are resolved against the remote root.
func (t *Translator) ResolveRemote(p string) string {
	clean := strings.ReplaceAll(p, "\\", "/")
	if !path.IsAbs(clean) {
		clean = path.Join(t.remoteRoot, clean)
	}
	return path.Clean(clean)
}

// ToLocal maps a remote path back to its local counterpart. Relative
// remote paths are resolved against the remote root; the result must live
// under it.
func (t *Translator) ToLocal(remotePath string) (string, error) {
	clean := t.ResolveRemote(remotePath)
	if clean == t.remoteRoot {
		return t.localRoot, nil
	}

	prefix := t.remoteRoot
	if prefix != "/" {
		prefix += "/"
	}
	if !strings.HasPrefix(clean, prefix) {
		return "", fmt.Errorf("%s is outside the remote root %s", remotePath, t.remoteRoot)
	}

	rel := strings.TrimPrefix(clean, prefix)
	return filepath.Join(t.localRoot, filepath.FromSlash(rel)), nil
}
