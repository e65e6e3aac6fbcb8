package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"buildscout.dev/pkg/buildscout/internal/adapter"
	"buildscout.dev/pkg/buildscout/internal/controller"
	m "buildscout.dev/pkg/buildscout/internal/model"
	"buildscout.dev/pkg/buildscout/pkg/statestore"
)

// State key prefixes.
const (
	scanStatePrefix     = "scan/"
	selectedStatePrefix = "selected/"
)

// ListArgs contains the arguments for listing targets.
type ListArgs struct {
	ScanArgs
	// Cache stores the scan result so a later Diff can compare against it.
	Cache bool
}

// ActionsArgs contains the arguments for listing targets by action.
type ActionsArgs struct {
	ScanArgs
	// Action limits the output to one category when set.
	Action m.Action
}

// DiffArgs contains the arguments for comparing a fresh scan to the cache.
type DiffArgs struct {
	ScanArgs
	// Update replaces the cached scan with the fresh one.
	Update bool
}

// SelectArgs contains the arguments for selecting a target for an action.
type SelectArgs struct {
	ScanArgs
	Action m.Action
	// Label is the target to select. Empty shows the current selection.
	Label string
}

// WatchArgs contains the arguments for watch mode.
type WatchArgs struct {
	ScanArgs
	Watcher adapter.BuildFileWatcher
}

// Workflow runs the user-facing scan operations.
type Workflow interface {
	List(ctx context.Context, args ListArgs) error
	Actions(ctx context.Context, args ActionsArgs) error
	Diff(ctx context.Context, args DiffArgs) error
	Select(ctx context.Context, args SelectArgs) error
	ClearState(ctx context.Context) error
	Watch(ctx context.Context, args WatchArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	controller.UI
	Scanner
	*Classifier

	store              statestore.Store
	workspaceFileNames []string
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	ui controller.UI,
	scanner Scanner,
	classifier *Classifier,
	store statestore.Store,
	workspaceFileNames []string,
) Workflow {
	if len(workspaceFileNames) == 0 {
		workspaceFileNames = DefaultWorkspaceFileNames
	}

	return &workflow{
		SourceFSAdapter:    fsAdapter,
		UI:                 ui,
		Scanner:            scanner,
		Classifier:         classifier,
		store:              store,
		workspaceFileNames: workspaceFileNames,
	}
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	root, result, err := w.scan(ctx, args.ScanArgs)
	if err != nil {
		return err
	}

	targets := SortTargets(result.Targets)

	if args.Cache {
		if err := statestore.Set(w.store, scanStatePrefix+string(root), targets); err != nil {
			return fmt.Errorf("cache scan: %w", err)
		}
	}

	if err := w.DisplayTargets(ctx, w.ClassifyAll(targets)); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

func (w *workflow) Actions(ctx context.Context, args ActionsArgs) error {
	if args.Action != "" && !slices.Contains(m.AllActions, args.Action) {
		return fmt.Errorf("unknown action %q", args.Action)
	}

	_, result, err := w.scan(ctx, args.ScanArgs)
	if err != nil {
		return err
	}

	categories := w.Categorize(result.Targets)

	if args.Action != "" {
		categories = map[m.Action][]m.ClassifiedTarget{args.Action: categories[args.Action]}
	}

	if err := w.DisplayCategories(ctx, categories); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

func (w *workflow) Diff(ctx context.Context, args DiffArgs) error {
	root, err := w.AbsPath(ctx, args.Root)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRoot, args.Root, err)
	}

	key := scanStatePrefix + string(root)

	var previous []m.BuildTarget

	found, err := w.store.Load(key, &previous)
	if err != nil {
		return fmt.Errorf("load cached scan: %w", err)
	}

	if !found {
		w.DisplayMessage(ctx, "No cached scan for %s; run list --cache first.", root)
	}

	_, result, err := w.scan(ctx, args.ScanArgs)
	if err != nil {
		return err
	}

	diff, err := DiffTargets(previous, result.Targets)
	if err != nil {
		return err
	}

	if args.Update {
		if err := statestore.Set(w.store, key, SortTargets(result.Targets)); err != nil {
			return fmt.Errorf("cache scan: %w", err)
		}
	}

	if err := w.DisplayDiff(ctx, diff); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

func (w *workflow) Select(ctx context.Context, args SelectArgs) error {
	if !slices.Contains(m.AllActions, args.Action) {
		return fmt.Errorf("unknown action %q", args.Action)
	}

	key := selectedStatePrefix + string(args.Action)

	if args.Label == "" {
		selected, err := statestore.Get(w.store, key, "")
		if err != nil {
			return fmt.Errorf("load selection: %w", err)
		}

		if selected == "" {
			w.DisplayMessage(ctx, "No target selected for %s.", args.Action)
			return nil
		}

		w.DisplayMessage(ctx, "%s: %s", args.Action, selected)

		return nil
	}

	_, result, err := w.scan(ctx, args.ScanArgs)
	if err != nil {
		return err
	}

	candidates := w.Categorize(result.Targets)[args.Action]

	if !slices.ContainsFunc(candidates, func(c m.ClassifiedTarget) bool { return c.Target.Label == args.Label }) {
		return fmt.Errorf("target %s does not support %s", args.Label, args.Action)
	}

	if err := statestore.Set(w.store, key, args.Label); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}

	slog.Info("Selected target", "action", args.Action, "label", args.Label)
	w.DisplayMessage(ctx, "Selected %s for %s.", args.Label, args.Action)

	return nil
}

func (w *workflow) ClearState(ctx context.Context) error {
	count := len(w.store.Keys())

	if err := w.store.Clear(); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}

	w.DisplayMessage(ctx, "Cleared %d state entries.", count)

	return nil
}

// Watch lists the targets, then re-scans and shows the diff each time the
// watcher reports a change. It returns nil when ctx ends.
func (w *workflow) Watch(ctx context.Context, args WatchArgs) error {
	root, previous, err := w.scan(ctx, args.ScanArgs)
	if err != nil {
		return err
	}

	if err := w.DisplayTargets(ctx, w.ClassifyAll(SortTargets(previous.Targets))); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	if err := args.Watcher.Watch(w.watchDirs(ctx, root, previous)); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	changes := args.Watcher.Changes(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
		}

		_, current, err := w.scan(ctx, args.ScanArgs)
		if errors.Is(err, ErrScanCancelled) && ctx.Err() != nil {
			return nil
		}

		if err != nil {
			return err
		}

		diff, err := DiffTargets(previous.Targets, current.Targets)
		if err != nil {
			return err
		}

		if err := w.DisplayDiff(ctx, diff); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		if err := args.Watcher.Watch(w.watchDirs(ctx, root, current)); err != nil {
			return fmt.Errorf("watch: %w", err)
		}

		previous = current
	}
}

// scan resolves the root and the fallback workspace, then scans.
func (w *workflow) scan(ctx context.Context, args ScanArgs) (m.Path, m.ScanResult, error) {
	root, err := w.AbsPath(ctx, args.Root)
	if err != nil {
		return "", m.ScanResult{}, fmt.Errorf("%w: %s: %w", ErrInvalidRoot, args.Root, err)
	}

	args.Root = root

	if args.DefaultWorkspace == "" {
		args.DefaultWorkspace = w.defaultWorkspace(ctx, root)
	}

	result, err := w.Scan(ctx, args)
	if err != nil {
		slog.Error("Scan failed", "root", root, "error", err)
		return "", m.ScanResult{}, fmt.Errorf("scan %s: %w", root, err)
	}

	return root, result, nil
}

// defaultWorkspace returns the nearest enclosing workspace of root, or root.
func (w *workflow) defaultWorkspace(ctx context.Context, root m.Path) m.Path {
	workspace, err := w.FindWorkspaceRoot(ctx, root, w.workspaceFileNames)
	if err != nil {
		slog.Debug("No enclosing workspace, using scan root", "root", root, "error", err)
		return root
	}

	return workspace
}

// watchDirs returns root plus every package directory of result.
func (w *workflow) watchDirs(ctx context.Context, root m.Path, result m.ScanResult) []m.Path {
	seen := map[m.Path]bool{root: true}
	dirs := []m.Path{root}

	for _, target := range result.Targets {
		if target.Label == TreePattern {
			continue
		}

		dir := w.JoinPath(ctx, string(target.Workspace), target.Package)
		if seen[dir] {
			continue
		}

		seen[dir] = true
		dirs = append(dirs, dir)
	}

	sort.Slice(dirs[1:], func(i, j int) bool { return dirs[1+i] < dirs[1+j] })

	return dirs
}
