package domain

import (
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"buildscout.dev/pkg/buildscout/internal/adapter"
	m "buildscout.dev/pkg/buildscout/internal/model"
)

// DefaultBatchSize is the number of directories read concurrently per batch.
const DefaultBatchSize = 50

// DefaultBuildFileNames are the build-description file names. Earlier names
// take precedence when a directory holds more than one.
var DefaultBuildFileNames = []string{"BUILD.bazel", "BUILD"}

// DefaultWorkspaceFileNames are the workspace-boundary marker file names.
var DefaultWorkspaceFileNames = []string{"WORKSPACE", "WORKSPACE.bazel", "MODULE.bazel"}

const hiddenPrefix = "."

// WalkOptions configures a Walker.
type WalkOptions struct {
	BatchSize          int
	BuildFileNames     []string
	WorkspaceFileNames []string
	// Exclude holds doublestar patterns matched against the slash-separated
	// directory path relative to the walk root and against its base name.
	Exclude []string
}

// Walker enumerates marker files under a directory tree.
type Walker interface {
	Walk(ctx context.Context, root m.Path) (m.WalkResult, error)
}

type walker struct {
	fsAdapter adapter.SourceFSAdapter
	opts      WalkOptions
}

// NewWorkspaceWalker creates a Walker reading through fsAdapter. Zero-valued options
// fall back to the package defaults.
func NewWorkspaceWalker(fsAdapter adapter.SourceFSAdapter, opts WalkOptions) Walker {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	if len(opts.BuildFileNames) == 0 {
		opts.BuildFileNames = DefaultBuildFileNames
	}

	if len(opts.WorkspaceFileNames) == 0 {
		opts.WorkspaceFileNames = DefaultWorkspaceFileNames
	}

	return &walker{fsAdapter: fsAdapter, opts: opts}
}

// dirListing is what one directory read contributes. Each goroutine of a
// batch owns exactly one slot, so batches merge without locking.
type dirListing struct {
	subdirs        []m.Path
	buildFiles     []m.Path
	workspaceFiles []m.Path
}

// Walk reads root breadth-first in fixed-size batches. Unreadable
// directories are logged and skipped. The context is checked between
// batches; once it fires the walk returns the cancellation error.
func (w *walker) Walk(ctx context.Context, root m.Path) (m.WalkResult, error) {
	var result m.WalkResult

	pending := []m.Path{root}

	for len(pending) > 0 {
		if ctx.Err() != nil {
			return m.WalkResult{}, cancelled(ctx)
		}

		size := min(w.opts.BatchSize, len(pending))
		batch := pending[:size]
		pending = pending[size:]

		listings := make([]dirListing, len(batch))

		var group errgroup.Group

		for i, dir := range batch {
			group.Go(func() error {
				listings[i] = w.readDir(ctx, root, dir)
				return nil
			})
		}

		_ = group.Wait()

		if ctx.Err() != nil {
			return m.WalkResult{}, cancelled(ctx)
		}

		for _, listing := range listings {
			pending = append(pending, listing.subdirs...)
			result.BuildFiles = append(result.BuildFiles, listing.buildFiles...)
			result.WorkspaceFiles = append(result.WorkspaceFiles, listing.workspaceFiles...)
		}
	}

	slog.Debug("walk finished", "root", root, "buildFiles", len(result.BuildFiles), "workspaceFiles", len(result.WorkspaceFiles))

	return result, nil
}

func (w *walker) readDir(ctx context.Context, root, dir m.Path) dirListing {
	var listing dirListing

	entries, err := w.fsAdapter.ReadDir(ctx, dir)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("Skipping unreadable directory", "path", dir, "error", err)
		}

		return listing
	}

	buildFileRank := len(w.opts.BuildFileNames)

	for _, entry := range entries {
		name := entry.Name()
		full := m.Path(filepath.Join(string(dir), name))

		if entry.IsDir() {
			if strings.HasPrefix(name, hiddenPrefix) || w.excluded(root, full) {
				continue
			}

			listing.subdirs = append(listing.subdirs, full)

			continue
		}

		if rank := indexOf(w.opts.BuildFileNames, name); rank >= 0 {
			if rank < buildFileRank {
				buildFileRank = rank
				listing.buildFiles = []m.Path{full}
			}

			continue
		}

		if indexOf(w.opts.WorkspaceFileNames, name) >= 0 {
			listing.workspaceFiles = append(listing.workspaceFiles, full)
		}
	}

	return listing
}

func (w *walker) excluded(root, dir m.Path) bool {
	if len(w.opts.Exclude) == 0 {
		return false
	}

	rel, err := filepath.Rel(string(root), string(dir))
	if err != nil {
		return false
	}

	rel = filepath.ToSlash(rel)
	base := path.Base(rel)

	for _, pattern := range w.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}

		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}

	return false
}

func indexOf(list []string, s string) int {
	for i, item := range list {
		if item == s {
			return i
		}
	}

	return -1
}
