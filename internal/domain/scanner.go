package domain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"golang.org/x/sync/errgroup"

	"buildscout.dev/pkg/buildscout/internal/adapter"
	m "buildscout.dev/pkg/buildscout/internal/model"
)

// ScanArgs contains the arguments for one scan.
type ScanArgs struct {
	Root m.Path
	// RuleFilter restricts extraction to matching rule types when non-nil.
	RuleFilter *regexp.Regexp
	// DefaultWorkspace is used for build files with no enclosing workspace
	// marker. Empty means Root.
	DefaultWorkspace m.Path
	// Parallel caps the number of build files processed at once. Zero or
	// negative means no cap.
	Parallel int
}

// Scanner produces the full target list for a directory tree.
type Scanner interface {
	Scan(ctx context.Context, args ScanArgs) (m.ScanResult, error)
}

type scanner struct {
	fsAdapter adapter.SourceFSAdapter
	walker    Walker
}

// NewScanner creates a Scanner that walks with walker and reads build files
// through fsAdapter.
func NewScanner(fsAdapter adapter.SourceFSAdapter, walker Walker) Scanner {
	return &scanner{
		fsAdapter: fsAdapter,
		walker:    walker,
	}
}

// fileOutcome is what one build file contributes. ok is false when the file
// was skipped.
type fileOutcome struct {
	file       m.BuildFile
	extraction Extraction
	ok         bool
}

// Scan walks args.Root, extracts every build file concurrently and appends
// the synthetic aggregate targets. Failures on single files or directories
// are logged and skipped; only cancellation and an invalid root are
// returned as errors.
func (s *scanner) Scan(ctx context.Context, args ScanArgs) (m.ScanResult, error) {
	if ctx.Err() != nil {
		return m.ScanResult{}, cancelled(ctx)
	}

	root, err := s.validateRoot(ctx, args.Root)
	if err != nil {
		return m.ScanResult{}, err
	}

	fallback := args.DefaultWorkspace
	if fallback == "" {
		fallback = root
	}

	walked, err := s.walker.Walk(ctx, root)
	if err != nil {
		return m.ScanResult{}, err
	}

	boundaries := NewWorkspaceSet(walked.WorkspaceFiles)
	outcomes := make([]fileOutcome, len(walked.BuildFiles))

	var group errgroup.Group
	if args.Parallel > 0 {
		group.SetLimit(args.Parallel)
	}

	for i, path := range walked.BuildFiles {
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			outcome := s.processFile(ctx, path, boundaries, fallback, args.RuleFilter)
			if ctx.Err() != nil {
				return nil
			}

			outcomes[i] = outcome

			return nil
		})
	}

	_ = group.Wait()

	if ctx.Err() != nil {
		return m.ScanResult{}, cancelled(ctx)
	}

	result := mergeOutcomes(outcomes)

	slog.Info("Scan finished", "root", root, "buildFiles", len(walked.BuildFiles), "targets", len(result.Targets))

	return result, nil
}

func (s *scanner) validateRoot(ctx context.Context, root m.Path) (m.Path, error) {
	abs, err := s.fsAdapter.AbsPath(ctx, root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}

	info, err := s.fsAdapter.FileInfo(ctx, abs)
	if err != nil {
		if ctx.Err() != nil {
			return "", cancelled(ctx)
		}

		return "", fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, abs)
	}

	return abs, nil
}

func (s *scanner) processFile(
	ctx context.Context,
	path m.Path,
	boundaries WorkspaceSet,
	fallback m.Path,
	filter *regexp.Regexp,
) fileOutcome {
	workspace := ResolveWorkspace(path, boundaries, fallback)

	pkg, err := PackagePath(workspace, path)
	if err != nil {
		slog.Warn("Skipping build file outside its workspace", "path", path, "workspace", workspace, "error", err)
		return fileOutcome{}
	}

	content, err := s.fsAdapter.ReadFile(ctx, path)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("Skipping unreadable build file", "path", path, "error", err)
		}

		return fileOutcome{}
	}

	file := m.BuildFile{FullPath: path, Package: pkg, Workspace: workspace}

	extraction, err := ExtractRules(string(content), file, filter)
	if err != nil {
		slog.Warn("Skipping unparsable build file", "path", path, "error", err)
		return fileOutcome{}
	}

	slog.Debug("Extracted build file", "path", path, "package", pkg, "workspace", workspace, "targets", len(extraction.Targets))

	return fileOutcome{file: file, extraction: extraction, ok: true}
}

// mergeOutcomes concatenates the per-file targets in discovery order, then
// appends the package aggregates and the tree-wide test aggregate.
func mergeOutcomes(outcomes []fileOutcome) m.ScanResult {
	result := m.ScanResult{HasTestRule: map[m.Path]map[string]bool{}}

	var aggregates []m.BuildTarget

	for _, outcome := range outcomes {
		if !outcome.ok {
			continue
		}

		file := outcome.file
		if outcome.extraction.HasTestRule {
			packages := result.HasTestRule[file.Workspace]
			if packages == nil {
				packages = map[string]bool{}
				result.HasTestRule[file.Workspace] = packages
			}

			packages[file.Package] = true
		}

		if len(outcome.extraction.Targets) == 0 {
			continue
		}

		result.Targets = append(result.Targets, outcome.extraction.Targets...)
		aggregates = append(aggregates, packageAggregates(file, outcome.extraction.HasTestRule)...)
	}

	result.Targets = append(result.Targets, aggregates...)
	result.Targets = append(result.Targets, m.BuildTarget{
		Name:     "all tests",
		RuleType: m.RuleTypeAggregateTest,
		Label:    TreePattern,
	})

	return result
}

func packageAggregates(file m.BuildFile, hasTestRule bool) []m.BuildTarget {
	pattern := PackagePattern(file.Package)

	aggregates := []m.BuildTarget{{
		Name:      "all targets",
		RuleType:  m.RuleTypeAggregateBuild,
		Label:     pattern,
		Package:   file.Package,
		Workspace: file.Workspace,
	}}

	if hasTestRule {
		aggregates = append(aggregates, m.BuildTarget{
			Name:      "all tests",
			RuleType:  m.RuleTypeAggregateTest,
			Label:     pattern,
			Package:   file.Package,
			Workspace: file.Workspace,
		})
	}

	return aggregates
}
