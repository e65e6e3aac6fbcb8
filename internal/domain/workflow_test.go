package domain_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"buildscout.dev/pkg/buildscout/internal/adapter"
	controllermocks "buildscout.dev/pkg/buildscout/internal/controller/mocks"
	"buildscout.dev/pkg/buildscout/internal/domain"
	m "buildscout.dev/pkg/buildscout/internal/model"
	"buildscout.dev/pkg/buildscout/pkg/statestore"
)

const workflowBuild = "cc_library(name=\"lib\", srcs=[\"a.cpp\"])\ncc_test(name=\"lib_test\", srcs=[\"t.cpp\"])\n"

func newTestWorkflow(ui *controllermocks.MockUI, store statestore.Store) domain.Workflow {
	fsAdapter := adapter.NewLocalSourceFSAdapter()

	return domain.NewWorkflow(
		fsAdapter,
		ui,
		newTestScanner(fsAdapter),
		domain.NewClassifier(domain.DefaultLanguageTable),
		store,
		nil,
	)
}

func newWorkflowTree(t *testing.T) string {
	t.Helper()

	root := realTempDir(t)
	writeTree(t, root, map[string]string{
		"WORKSPACE": "",
		"src/BUILD": workflowBuild,
	})

	return root
}

func TestWorkflow_List_CachesSortedTargets(t *testing.T) {
	root := newWorkflowTree(t)
	store := statestore.NewMemoryStore()
	ui := new(controllermocks.MockUI)

	ui.On("DisplayTargets", mock.Anything, mock.MatchedBy(func(targets []m.ClassifiedTarget) bool {
		return len(targets) == 5 && targets[0].Target.Label == "//..."
	})).Return(nil).Once()

	err := newTestWorkflow(ui, store).List(context.Background(), domain.ListArgs{
		ScanArgs: domain.ScanArgs{Root: m.Path(root)},
		Cache:    true,
	})
	require.NoError(t, err)
	ui.AssertExpectations(t)

	cached, err := statestore.Get[[]m.BuildTarget](store, "scan/"+root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"//...", "//src/...", "//src/...", "//src:lib", "//src:lib_test"}, labels(cached))
}

func TestWorkflow_List_WithoutCacheLeavesStoreEmpty(t *testing.T) {
	root := newWorkflowTree(t)
	store := statestore.NewMemoryStore()
	ui := new(controllermocks.MockUI)
	ui.On("DisplayTargets", mock.Anything, mock.Anything).Return(nil).Once()

	err := newTestWorkflow(ui, store).List(context.Background(), domain.ListArgs{
		ScanArgs: domain.ScanArgs{Root: m.Path(root)},
	})
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestWorkflow_List_InvalidRoot(t *testing.T) {
	ui := new(controllermocks.MockUI)

	err := newTestWorkflow(ui, statestore.NewMemoryStore()).List(context.Background(), domain.ListArgs{
		ScanArgs: domain.ScanArgs{Root: m.Path(filepath.Join(t.TempDir(), "missing"))},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidRoot))
	ui.AssertNotCalled(t, "DisplayTargets", mock.Anything, mock.Anything)
}

func TestWorkflow_Actions(t *testing.T) {
	root := newWorkflowTree(t)

	t.Run("single action", func(t *testing.T) {
		ui := new(controllermocks.MockUI)
		ui.On("DisplayCategories", mock.Anything, mock.MatchedBy(func(categories map[m.Action][]m.ClassifiedTarget) bool {
			_, hasBuild := categories[m.ActionBuild]
			return len(categories) == 1 && len(categories[m.ActionTest]) == 3 && !hasBuild
		})).Return(nil).Once()

		err := newTestWorkflow(ui, statestore.NewMemoryStore()).Actions(context.Background(), domain.ActionsArgs{
			ScanArgs: domain.ScanArgs{Root: m.Path(root)},
			Action:   m.ActionTest,
		})
		require.NoError(t, err)
		ui.AssertExpectations(t)
	})

	t.Run("all actions", func(t *testing.T) {
		ui := new(controllermocks.MockUI)
		ui.On("DisplayCategories", mock.Anything, mock.MatchedBy(func(categories map[m.Action][]m.ClassifiedTarget) bool {
			return len(categories[m.ActionBuild]) == 5 && len(categories[m.ActionRun]) == 1
		})).Return(nil).Once()

		err := newTestWorkflow(ui, statestore.NewMemoryStore()).Actions(context.Background(), domain.ActionsArgs{
			ScanArgs: domain.ScanArgs{Root: m.Path(root)},
		})
		require.NoError(t, err)
		ui.AssertExpectations(t)
	})

	t.Run("unknown action", func(t *testing.T) {
		ui := new(controllermocks.MockUI)

		err := newTestWorkflow(ui, statestore.NewMemoryStore()).Actions(context.Background(), domain.ActionsArgs{
			ScanArgs: domain.ScanArgs{Root: m.Path(root)},
			Action:   "deploy",
		})
		require.Error(t, err)
		ui.AssertNotCalled(t, "DisplayCategories", mock.Anything, mock.Anything)
	})
}

func TestWorkflow_Diff(t *testing.T) {
	root := newWorkflowTree(t)
	store := statestore.NewMemoryStore()

	t.Run("without cache reports every target as added", func(t *testing.T) {
		ui := new(controllermocks.MockUI)
		ui.On("DisplayMessage", mock.Anything, mock.Anything, mock.Anything).Return().Once()
		ui.On("DisplayDiff", mock.Anything, mock.MatchedBy(func(diff string) bool {
			return assert.Contains(t, diff, "+//src:lib cc_library")
		})).Return(nil).Once()

		err := newTestWorkflow(ui, store).Diff(context.Background(), domain.DiffArgs{
			ScanArgs: domain.ScanArgs{Root: m.Path(root)},
			Update:   true,
		})
		require.NoError(t, err)
		ui.AssertExpectations(t)
	})

	t.Run("after update reports no change", func(t *testing.T) {
		ui := new(controllermocks.MockUI)
		ui.On("DisplayDiff", mock.Anything, "").Return(nil).Once()

		err := newTestWorkflow(ui, store).Diff(context.Background(), domain.DiffArgs{
			ScanArgs: domain.ScanArgs{Root: m.Path(root)},
		})
		require.NoError(t, err)
		ui.AssertExpectations(t)
	})

	t.Run("removed rule shows up", func(t *testing.T) {
		writeTree(t, root, map[string]string{"src/BUILD": "cc_library(name=\"lib\", srcs=[\"a.cpp\"])\n"})

		ui := new(controllermocks.MockUI)
		ui.On("DisplayDiff", mock.Anything, mock.MatchedBy(func(diff string) bool {
			return assert.Contains(t, diff, "-//src:lib_test cc_test")
		})).Return(nil).Once()

		err := newTestWorkflow(ui, store).Diff(context.Background(), domain.DiffArgs{
			ScanArgs: domain.ScanArgs{Root: m.Path(root)},
		})
		require.NoError(t, err)
		ui.AssertExpectations(t)
	})
}

func TestWorkflow_Select(t *testing.T) {
	root := newWorkflowTree(t)
	store := statestore.NewMemoryStore()
	ctx := context.Background()

	t.Run("rejects a target without the action", func(t *testing.T) {
		ui := new(controllermocks.MockUI)

		err := newTestWorkflow(ui, store).Select(ctx, domain.SelectArgs{
			ScanArgs: domain.ScanArgs{Root: m.Path(root)},
			Action:   m.ActionRun,
			Label:    "//src:lib",
		})
		require.Error(t, err)
		assert.Empty(t, store.Keys())
	})

	t.Run("rejects an unknown action", func(t *testing.T) {
		ui := new(controllermocks.MockUI)

		err := newTestWorkflow(ui, store).Select(ctx, domain.SelectArgs{Action: "deploy"})
		require.Error(t, err)
	})

	t.Run("stores a valid selection", func(t *testing.T) {
		ui := new(controllermocks.MockUI)
		ui.On("DisplayMessage", mock.Anything, "Selected %s for %s.", "//src:lib_test", m.ActionTest).Return().Once()

		err := newTestWorkflow(ui, store).Select(ctx, domain.SelectArgs{
			ScanArgs: domain.ScanArgs{Root: m.Path(root)},
			Action:   m.ActionTest,
			Label:    "//src:lib_test",
		})
		require.NoError(t, err)
		ui.AssertExpectations(t)

		selected, err := statestore.Get(store, "selected/test", "")
		require.NoError(t, err)
		assert.Equal(t, "//src:lib_test", selected)
	})

	t.Run("shows the current selection", func(t *testing.T) {
		ui := new(controllermocks.MockUI)
		ui.On("DisplayMessage", mock.Anything, "%s: %s", m.ActionTest, "//src:lib_test").Return().Once()

		err := newTestWorkflow(ui, store).Select(ctx, domain.SelectArgs{Action: m.ActionTest})
		require.NoError(t, err)
		ui.AssertExpectations(t)
	})

	t.Run("clear state drops the selection", func(t *testing.T) {
		ui := new(controllermocks.MockUI)
		ui.On("DisplayMessage", mock.Anything, "Cleared %d state entries.", 1).Return().Once()

		require.NoError(t, newTestWorkflow(ui, store).ClearState(ctx))
		assert.Empty(t, store.Keys())
		ui.AssertExpectations(t)
	})
}

// fakeWatcher delivers changes pushed by the test.
type fakeWatcher struct {
	mu      sync.Mutex
	watched [][]m.Path
	changes chan struct{}
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{changes: make(chan struct{}, 1)}
}

func (f *fakeWatcher) Watch(dirs []m.Path) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.watched = append(f.watched, dirs)

	return nil
}

func (f *fakeWatcher) Changes(_ context.Context) <-chan struct{} {
	return f.changes
}

func (f *fakeWatcher) Close() error {
	return nil
}

func TestWorkflow_Watch_RescansOnChange(t *testing.T) {
	root := newWorkflowTree(t)
	watcher := newFakeWatcher()
	ui := new(controllermocks.MockUI)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ui.On("DisplayTargets", mock.Anything, mock.Anything).Return(nil).Run(func(_ mock.Arguments) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "tools"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "tools", "BUILD"), []byte("sh_binary(name=\"gen\")\n"), 0o644))
		watcher.changes <- struct{}{}
	}).Once()

	var diff string

	ui.On("DisplayDiff", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		diff = args.String(1)
		cancel()
	}).Once()

	err := newTestWorkflow(ui, statestore.NewMemoryStore()).Watch(ctx, domain.WatchArgs{
		ScanArgs: domain.ScanArgs{Root: m.Path(root)},
		Watcher:  watcher,
	})
	require.NoError(t, err)
	ui.AssertExpectations(t)

	assert.Contains(t, diff, "+//tools:gen sh_binary")
	require.Len(t, watcher.watched, 2)
	assert.Equal(t, []m.Path{m.Path(root), m.Path(filepath.Join(root, "src"))}, watcher.watched[0])
	assert.Contains(t, watcher.watched[1], m.Path(filepath.Join(root, "tools")))
}

func TestWorkflow_Watch_StopsWhenChangesClose(t *testing.T) {
	root := newWorkflowTree(t)
	watcher := newFakeWatcher()
	close(watcher.changes)

	ui := new(controllermocks.MockUI)
	ui.On("DisplayTargets", mock.Anything, mock.Anything).Return(nil).Once()

	err := newTestWorkflow(ui, statestore.NewMemoryStore()).Watch(context.Background(), domain.WatchArgs{
		ScanArgs: domain.ScanArgs{Root: m.Path(root)},
		Watcher:  watcher,
	})
	require.NoError(t, err)
	ui.AssertNotCalled(t, "DisplayDiff", mock.Anything, mock.Anything)
}
