package domain

import (
	"fmt"
	"path/filepath"
	"strings"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

// WorkspaceSet holds the directories identified as workspace roots during
// one walk.
type WorkspaceSet map[m.Path]struct{}

// NewWorkspaceSet builds the boundary set from workspace marker file paths.
func NewWorkspaceSet(workspaceFiles []m.Path) WorkspaceSet {
	set := make(WorkspaceSet, len(workspaceFiles))
	for _, file := range workspaceFiles {
		set[m.Path(filepath.Dir(string(file)))] = struct{}{}
	}

	return set
}

// ResolveWorkspace returns the closest directory in boundaries that encloses
// buildFile, starting at the file's own directory. It returns fallback when
// no ancestor up to the filesystem root is a boundary.
func ResolveWorkspace(buildFile m.Path, boundaries WorkspaceSet, fallback m.Path) m.Path {
	dir := filepath.Dir(string(buildFile))

	for {
		if _, ok := boundaries[m.Path(dir)]; ok {
			return m.Path(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}

// PackagePath returns the slash-separated path of buildFile's directory
// relative to workspace. The workspace root package is "". A build file
// that does not lie under workspace is an error.
func PackagePath(workspace, buildFile m.Path) (string, error) {
	rel, err := filepath.Rel(string(workspace), filepath.Dir(string(buildFile)))
	if err != nil {
		return "", err
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not under workspace %s", buildFile, workspace)
	}

	if rel == "." {
		return "", nil
	}

	return filepath.ToSlash(rel), nil
}
