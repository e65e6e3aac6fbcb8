// Package mocks provides testify mocks for the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

// MockUI is a testify mock of controller.UI.
type MockUI struct {
	mock.Mock
}

// DisplayTargets records the call.
func (_m *MockUI) DisplayTargets(ctx context.Context, targets []m.ClassifiedTarget) error {
	ret := _m.Called(ctx, targets)
	return ret.Error(0)
}

// DisplayCategories records the call.
func (_m *MockUI) DisplayCategories(ctx context.Context, categories map[m.Action][]m.ClassifiedTarget) error {
	ret := _m.Called(ctx, categories)
	return ret.Error(0)
}

// DisplayDiff records the call.
func (_m *MockUI) DisplayDiff(ctx context.Context, diff string) error {
	ret := _m.Called(ctx, diff)
	return ret.Error(0)
}

// DisplayMessage records the call with the formatted arguments flattened.
func (_m *MockUI) DisplayMessage(ctx context.Context, format string, args ...any) {
	_m.Called(append([]any{ctx, format}, args...)...)
}
