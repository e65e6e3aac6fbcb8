// Package mocks provides testify mocks for the adapter interfaces.
package mocks

import (
	"context"
	"io/fs"
	"os"

	"github.com/stretchr/testify/mock"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

// MockSourceFSAdapter is a testify mock of adapter.SourceFSAdapter.
type MockSourceFSAdapter struct {
	mock.Mock
}

// ReadDir records the call and returns the configured entries.
func (_m *MockSourceFSAdapter) ReadDir(ctx context.Context, path m.Path) ([]fs.DirEntry, error) {
	ret := _m.Called(ctx, path)

	var entries []fs.DirEntry
	if v := ret.Get(0); v != nil {
		entries = v.([]fs.DirEntry)
	}

	return entries, ret.Error(1)
}

// ReadFile records the call and returns the configured content.
func (_m *MockSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	ret := _m.Called(ctx, path)

	var content []byte
	if v := ret.Get(0); v != nil {
		content = v.([]byte)
	}

	return content, ret.Error(1)
}

// FileInfo records the call and returns the configured info.
func (_m *MockSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	ret := _m.Called(ctx, path)

	var info os.FileInfo
	if v := ret.Get(0); v != nil {
		info = v.(os.FileInfo)
	}

	return info, ret.Error(1)
}

// FindWorkspaceRoot records the call and returns the configured root.
func (_m *MockSourceFSAdapter) FindWorkspaceRoot(ctx context.Context, startPath m.Path, markers []string) (m.Path, error) {
	ret := _m.Called(ctx, startPath, markers)
	return ret.Get(0).(m.Path), ret.Error(1)
}

// AbsPath records the call and returns the configured path.
func (_m *MockSourceFSAdapter) AbsPath(ctx context.Context, path m.Path) (m.Path, error) {
	ret := _m.Called(ctx, path)
	return ret.Get(0).(m.Path), ret.Error(1)
}

// JoinPath records the call and returns the configured path.
func (_m *MockSourceFSAdapter) JoinPath(ctx context.Context, elem ...string) m.Path {
	ret := _m.Called(ctx, elem)
	return ret.Get(0).(m.Path)
}
