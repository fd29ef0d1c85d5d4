// Package repo performs file operations on the target repository
// checkout and accumulates the commit message for the outer automation.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// commitMessageFile is where the accumulated commit message is left
// for the calling workflow to pick up.
const commitMessageFile = "last_commit_message.txt"

// Workspace is a local checkout of the target repository plus a data
// directory for run artifacts.
type Workspace struct {
	root    string
	dataDir string
	log     zerolog.Logger

	commitLines []string
}

// New creates a Workspace rooted at the checkout directory. dataDir
// holds run artifacts such as the commit message and may be empty to
// default to <root>/data.
func New(root, dataDir string, log zerolog.Logger) *Workspace {
	if dataDir == "" {
		dataDir = filepath.Join(root, "data")
	}
	return &Workspace{
		root:    root,
		dataDir: dataDir,
		log:     log.With().Str("component", "repo").Logger(),
	}
}

// Root returns the checkout root.
func (w *Workspace) Root() string { return w.root }

// DataDir returns the run artifact directory.
func (w *Workspace) DataDir() string { return w.dataDir }

// AppDir returns the directory for one app within a category.
func (w *Workspace) AppDir(category, slug string) string {
	return filepath.Join(w.root, category, slug)
}

// FileExists reports whether the path exists relative to the root.
func (w *Workspace) FileExists(relPath string) bool {
	_, err := os.Stat(filepath.Join(w.root, relPath))
	return err == nil
}

// ReadFile reads a file relative to the root.
func (w *Workspace) ReadFile(relPath string) (string, error) {
	data, err := os.ReadFile(filepath.Join(w.root, relPath))
	if err != nil {
		return "", fmt.Errorf("repo: read %s: %w", relPath, err)
	}
	return string(data), nil
}

// WriteFile writes a file relative to the root, creating parent
// directories as needed.
func (w *Workspace) WriteFile(relPath, content string) error {
	full := filepath.Join(w.root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("repo: create dir for %s: %w", relPath, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("repo: write %s: %w", relPath, err)
	}
	w.log.Debug().Str("file", relPath).Msg("wrote file")
	return nil
}

// WriteFiles writes a file set under the given directory (relative to
// the root). Paths in files are relative to that directory.
func (w *Workspace) WriteFiles(dir string, files map[string]string) error {
	for relPath, content := range files {
		if err := w.WriteFile(filepath.Join(dir, relPath), content); err != nil {
			return err
		}
	}
	w.log.Info().Str("dir", dir).Int("files", len(files)).Msg("wrote file set")
	return nil
}

// AddCommitLine appends one line to the pending commit message.
func (w *Workspace) AddCommitLine(format string, args ...interface{}) {
	w.commitLines = append(w.commitLines, fmt.Sprintf(format, args...))
}

// CommitLines returns the accumulated commit message lines.
func (w *Workspace) CommitLines() []string {
	out := make([]string, len(w.commitLines))
	copy(out, w.commitLines)
	return out
}

// FlushCommitMessage writes the accumulated message under the data
// directory and resets the accumulator. With no lines it writes a
// generic message so the calling workflow always finds the file.
func (w *Workspace) FlushCommitMessage(header string) error {
	lines := w.commitLines
	message := header
	switch {
	case message == "" && len(lines) == 0:
		message = "Automated maintenance run\n"
	case len(lines) == 0:
		message += "\n"
	case message == "":
		message = strings.Join(lines, "\n") + "\n"
	default:
		message += "\n\n" + strings.Join(lines, "\n") + "\n"
	}

	if err := os.MkdirAll(w.dataDir, 0o755); err != nil {
		return fmt.Errorf("repo: create data dir: %w", err)
	}
	path := filepath.Join(w.dataDir, commitMessageFile)
	if err := os.WriteFile(path, []byte(message), 0o644); err != nil {
		return fmt.Errorf("repo: write commit message: %w", err)
	}

	w.commitLines = nil
	w.log.Info().Str("file", path).Int("lines", len(lines)).Msg("commit message written")
	return nil
}
