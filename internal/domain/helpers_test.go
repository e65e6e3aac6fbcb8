package domain_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"buildscout.dev/pkg/buildscout/internal/adapter"
	m "buildscout.dev/pkg/buildscout/internal/model"
)

func TestMain(tm *testing.M) {
	goleak.VerifyTestMain(tm)
}

// writeTree creates files (slash-separated relative paths) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// realTempDir resolves symlinks so paths compare equal to walked ones.
func realTempDir(t *testing.T) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	return dir
}

// faultyFS wraps the local adapter, failing reads on chosen paths and
// counting the reads it serves.
type faultyFS struct {
	*adapter.LocalSourceFSAdapter

	failDirs  map[m.Path]bool
	failFiles map[m.Path]bool

	dirReads  atomic.Int64
	fileReads atomic.Int64

	// onReadDir runs once, before the first directory read.
	onReadDir func()
	once      sync.Once

	// onReadFile runs once, after the first build file read.
	onReadFile func()
	fileOnce   sync.Once
}

func newFaultyFS() *faultyFS {
	return &faultyFS{
		LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter(),
		failDirs:             map[m.Path]bool{},
		failFiles:            map[m.Path]bool{},
	}
}

func (f *faultyFS) ReadDir(ctx context.Context, path m.Path) ([]fs.DirEntry, error) {
	f.dirReads.Add(1)

	if f.onReadDir != nil {
		f.once.Do(f.onReadDir)
	}

	if f.failDirs[path] {
		return nil, fs.ErrPermission
	}

	return f.LocalSourceFSAdapter.ReadDir(ctx, path)
}

func (f *faultyFS) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	f.fileReads.Add(1)

	if f.failFiles[path] {
		return nil, fs.ErrPermission
	}

	content, err := f.LocalSourceFSAdapter.ReadFile(ctx, path)

	if f.onReadFile != nil {
		f.fileOnce.Do(f.onReadFile)
	}

	return content, err
}

func labels(targets []m.BuildTarget) []string {
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		out = append(out, target.Label)
	}

	return out
}

func relPaths(t *testing.T, root string, paths []m.Path) []string {
	t.Helper()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, string(p))
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}

	return out
}
