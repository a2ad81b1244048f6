// Package application wires the adapters into the lint pipeline:
// config → manifest → scan → parallel extraction → barrier → reconcile →
// aggregate.
package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/aggregate"
	"github.com/pactlint/pactlint/internal/domain/fact"
	"github.com/pactlint/pactlint/internal/domain/manifest"
	"github.com/pactlint/pactlint/internal/domain/reconcile"
)

// LintService orchestrates a full lint run over one project.
type LintService struct {
	scanner      domain.ProjectScanner
	extractor    domain.FactExtractor
	configLoader domain.ConfigLoader
	gitInfo      domain.GitInfo
	engine       *reconcile.Engine
}

func NewLintService(
	scanner domain.ProjectScanner,
	extractor domain.FactExtractor,
	configLoader domain.ConfigLoader,
	gitInfo domain.GitInfo,
) *LintService {
	return &LintService{
		scanner:      scanner,
		extractor:    extractor,
		configLoader: configLoader,
		gitInfo:      gitInfo,
		engine:       reconcile.NewEngine(),
	}
}

// Rules exposes the registered rule set for listing.
func (s *LintService) Rules() []reconcile.Rule { return s.engine.Rules() }

// extracted pairs one file's facts with its raw source, which the
// aggregation step re-reads for suppression directives.
type extracted struct {
	facts  *fact.FileFacts
	source []byte
}

// LintProject runs the pipeline. Per-file and per-contract failures become
// diagnostics on the report; the returned error is reserved for conditions
// that make the run itself meaningless (unreadable manifest, bad config).
func (s *LintService) LintProject(ctx context.Context, projectPath string) (*domain.LintReport, error) {
	started := time.Now()

	cfg, err := s.configLoader.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	manifestPath := cfg.ManifestPath
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(projectPath, manifestPath)
	}
	man, manErrs, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}

	report := &domain.LintReport{Timestamp: started}
	for _, me := range manErrs {
		report.Diagnostics = append(report.Diagnostics, domain.Diagnostic{
			Kind:    domain.DiagManifestError,
			File:    cfg.ManifestPath,
			Message: me.Error(),
		})
	}

	scan, err := s.scanner.Scan(projectPath, cfg.ExcludePaths...)
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	opts := extractOptions(man, cfg)
	results, err := s.extractAll(ctx, scan, opts, cfg.Workers)
	if err != nil {
		return nil, err
	}

	s.reconcileAndAggregate(report, man, cfg, results)

	report.Summary.TotalFiles = len(scan.GoFiles)
	report.Summary.Contracts = len(man.Contracts)
	report.Summary.DurationMillis = time.Since(started).Milliseconds()
	if s.gitInfo != nil && s.gitInfo.IsGitRepo(projectPath) {
		if hash, err := s.gitInfo.CommitHash(projectPath); err == nil {
			report.CommitHash = hash
		}
	}
	return report, nil
}

// extractOptions projects the manifest into the lookup tables extractors
// resolve against.
func extractOptions(man *manifest.Manifest, cfg domain.ProjectConfig) fact.ExtractOptions {
	opts := fact.ExtractOptions{
		KnownEndpoints:  map[string]string{},
		KnownFields:     map[string]map[string]bool{},
		KnownStatuses:   map[string][]int{},
		ValidationCalls: cfg.ValidationCalls,
	}
	for _, c := range man.Contracts {
		for _, ep := range c.Endpoints {
			id := ep.ID()
			opts.KnownEndpoints[id] = c.ID
			opts.KnownStatuses[id] = ep.Statuses

			fields := map[string]bool{}
			for _, ff := range manifest.FlattenFields(ep.Request) {
				fields[ff.Path] = true
			}
			for _, schema := range ep.Responses {
				for _, ff := range manifest.FlattenFields(schema) {
					fields[ff.Path] = true
				}
			}
			opts.KnownFields[id] = fields
		}
	}
	return opts
}

// extractAll fans file extraction out over a bounded worker group. Results
// land at their input index, so output order is deterministic regardless of
// scheduling.
func (s *LintService) extractAll(ctx context.Context, scan *domain.ScanResult, opts fact.ExtractOptions, workers int) ([]extracted, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]extracted, len(scan.GoFiles))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rel := range scan.GoFiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			abs := filepath.Join(scan.RootPath, rel)
			source, err := os.ReadFile(abs)
			if err != nil {
				mu.Lock()
				results[i] = extracted{facts: &fact.FileFacts{File: rel, Skipped: true, SkipReason: err.Error()}}
				mu.Unlock()
				return nil
			}
			ff, err := s.extractor.Extract(rel, source, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = extracted{facts: ff, source: source}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// reconcileAndAggregate is the barrier: merge interner shards, group facts
// by contract and side, run the rule engine, then filter and order the
// findings.
func (s *LintService) reconcileAndAggregate(report *domain.LintReport, man *manifest.Manifest, cfg domain.ProjectConfig, results []extracted) {
	agg := aggregate.New()

	byContract := map[string]map[fact.Side][]*fact.FileFacts{}
	var shards []*fact.Interner
	for _, r := range results {
		ff := r.facts
		if ff == nil {
			continue
		}
		if ff.Skipped {
			report.Summary.SkippedFiles++
			report.Diagnostics = append(report.Diagnostics, domain.Diagnostic{
				Kind:    domain.DiagExtractionSkipped,
				File:    ff.File,
				Message: skipMessage(ff),
			})
			continue
		}
		report.Summary.ExtractedFiles++
		if ff.Paths != nil {
			shards = append(shards, ff.Paths)
		}
		if len(r.source) > 0 {
			agg.SetPolicy(ff.File, aggregate.CompilePolicy(r.source))
		}
		if ff.ContractID == "" {
			continue
		}
		sides := byContract[ff.ContractID]
		if sides == nil {
			sides = map[fact.Side][]*fact.FileFacts{}
			byContract[ff.ContractID] = sides
		}
		sides[ff.Side] = append(sides[ff.Side], ff)
	}

	// The merged interner canonicalizes unresolved paths so one path read
	// in several files surfaces as one diagnostic.
	merged := fact.MergeInterners(shards...)
	unresolvedFile := map[string]string{}
	for _, r := range results {
		if r.facts == nil {
			continue
		}
		for _, p := range r.facts.Unresolved {
			canonical := merged.Intern(p)
			if _, seen := unresolvedFile[canonical]; !seen {
				unresolvedFile[canonical] = r.facts.File
			}
		}
	}
	for _, p := range sortedKeys(unresolvedFile) {
		report.Diagnostics = append(report.Diagnostics, domain.Diagnostic{
			Kind:    domain.DiagUnresolvedFieldPath,
			File:    unresolvedFile[p],
			Message: fmt.Sprintf("field path %q does not match any manifest field", p),
		})
	}

	for i := range man.Contracts {
		contract := &man.Contracts[i]
		sides := byContract[contract.ID]
		client := fact.NewSet(sides[fact.SideClient])
		server := fact.NewSet(sides[fact.SideServer])
		agg.Add(s.engine.ReconcileContract(contract, client, server, cfg)...)
	}

	report.Violations = agg.Result()
	report.Summary.TotalViolations = len(report.Violations)
	for _, v := range report.Violations {
		switch v.Severity {
		case domain.SeverityError:
			report.Summary.ErrorCount++
		case domain.SeverityWarning:
			report.Summary.WarningCount++
		}
	}
}

func skipMessage(ff *fact.FileFacts) string {
	if ff.SkipReason != "" {
		return ff.SkipReason
	}
	return "file could not be parsed"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
