// Package model defines the data structures produced by a build target scan.
package model

// Path represents a file system path.
type Path string

// BuildFile is a build-description file found during one scan pass.
type BuildFile struct {
	// FullPath is the absolute path of the file.
	FullPath Path
	// Package is the slash-separated package path relative to Workspace.
	// The workspace root package is the empty string.
	Package string
	// Workspace is the resolved workspace root directory.
	Workspace Path
}

// WalkResult holds the marker files discovered by one directory walk.
type WalkResult struct {
	WorkspaceFiles []Path
	BuildFiles     []Path
}
