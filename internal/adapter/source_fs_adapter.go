// Package adapter contains filesystem adapters used by the scanner and the CLI.
package adapter

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

// SourceFSAdapter abstracts the filesystem reads the scanner relies on. It
// hides direct `os` access so the domain logic can be tested with fakes
// that count reads or inject failures.
type SourceFSAdapter interface {
	// ReadDir lists the entries of a directory.
	ReadDir(ctx context.Context, path m.Path) ([]fs.DirEntry, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path so callers can check existence or
	// distinguish between files and directories.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// FindWorkspaceRoot walks up from startPath looking for a directory that
	// contains one of the marker file names.
	FindWorkspaceRoot(ctx context.Context, startPath m.Path, markers []string) (m.Path, error)

	// AbsPath returns an absolute, cleaned representation of path.
	AbsPath(ctx context.Context, path m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(ctx context.Context, elem ...string) m.Path
}

// LocalSourceFSAdapter implements SourceFSAdapter on top of the os package.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the scanner.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// ReadDir lists directory entries sorted by file name.
func (a *LocalSourceFSAdapter) ReadDir(ctx context.Context, path m.Path) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadDir(string(path))
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 - path comes from a directory listing under the scan root
	return os.ReadFile(string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.Stat(string(path))
}

// FindWorkspaceRoot searches startPath and its ancestors for a directory
// holding any of the marker files.
func (a *LocalSourceFSAdapter) FindWorkspaceRoot(ctx context.Context, startPath m.Path, markers []string) (m.Path, error) {
	dir, err := filepath.Abs(string(startPath))
	if err != nil {
		return "", err
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		for _, marker := range markers {
			info, err := os.Stat(filepath.Join(dir, marker))
			if err == nil && !info.IsDir() {
				return m.Path(dir), nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no workspace marker %v found in %s or any parent directory", markers, startPath)
		}

		dir = parent
	}
}

// AbsPath returns the absolute form of path.
func (a *LocalSourceFSAdapter) AbsPath(_ context.Context, path m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return "", err
	}

	return m.Path(abs), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(_ context.Context, elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
