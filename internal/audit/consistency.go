// Package audit scans the versioned dimensions and reports rows that violate
// the mart's interval invariants. It is a pure read: problems are reported,
// never repaired.
package audit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/meridianbi/revenue-mart/internal/domain"
	"github.com/meridianbi/revenue-mart/internal/logger"
	"github.com/meridianbi/revenue-mart/internal/store/schema"
)

// VersionSource is the slice of the store the auditor reads from.
type VersionSource interface {
	ListTerritoryBusinessIDs(ctx context.Context) ([]string, error)
	TerritoryHistory(ctx context.Context, businessID string) ([]schema.TerritoryVersion, error)
	ListCustomerBusinessIDs(ctx context.Context) ([]string, error)
	CustomerHistory(ctx context.Context, businessID string) ([]schema.CustomerVersion, error)
}

// IssueKind classifies an invariant violation.
type IssueKind string

const (
	// IssueMultipleOpen flags more than one version with no effective end
	IssueMultipleOpen IssueKind = "multiple_open_versions"
	// IssueOverlap flags two versions whose effective intervals intersect
	IssueOverlap IssueKind = "overlapping_intervals"
	// IssueEmptyInterval flags a version whose end is on or before its start
	IssueEmptyInterval IssueKind = "empty_interval"
	// IssueCreatedOnDrift flags customer versions of one business id that
	// disagree on the created-on date
	IssueCreatedOnDrift IssueKind = "created_on_drift"
)

// Issue is one detected violation.
type Issue struct {
	Entity     domain.EntityType
	BusinessID string
	Kind       IssueKind
	Detail     string
}

// Report is the outcome of one audit run.
type Report struct {
	RunID           string
	EntitiesChecked int
	Issues          []Issue
}

// Clean reports whether the run found no violations.
func (r *Report) Clean() bool {
	return len(r.Issues) == 0
}

// Auditor checks every business id's version history on a worker pool.
type Auditor struct {
	source   VersionSource
	poolSize int
}

// NewAuditor creates an auditor reading from source, checking up to poolSize
// business ids concurrently.
func NewAuditor(source VersionSource, poolSize int) *Auditor {
	if poolSize <= 0 {
		poolSize = 8
	}
	return &Auditor{source: source, poolSize: poolSize}
}

// Run audits both dimensions and returns the collected issues. Listing
// failures abort the run; per-entity check failures are logged and surfaced
// as the first error encountered.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: ulid.Make().String()}

	territoryIDs, err := a.source.ListTerritoryBusinessIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list territories: %w", err)
	}
	customerIDs, err := a.source.ListCustomerBusinessIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	report.EntitiesChecked = len(territoryIDs) + len(customerIDs)

	logger.InfoCtx(ctx, "Starting consistency audit",
		zap.String("run_id", report.RunID),
		zap.Int("territories", len(territoryIDs)),
		zap.Int("customers", len(customerIDs)),
		zap.Int("pool_size", a.poolSize),
	)

	var mu sync.Mutex
	var firstErr error
	collect := func(issues []Issue, err error) {
		mu.Lock()
		defer mu.Unlock()
		report.Issues = append(report.Issues, issues...)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	pool := pond.NewPool(a.poolSize, pond.WithContext(ctx))
	for _, id := range territoryIDs {
		pool.Submit(func() {
			versions, err := a.source.TerritoryHistory(ctx, id)
			if err != nil {
				collect(nil, fmt.Errorf("territory %q: %w", id, err))
				return
			}
			intervals := make([]interval, len(versions))
			for i, v := range versions {
				intervals[i] = interval{start: v.EffectiveStartKey, end: v.EffectiveEndKey}
			}
			collect(checkIntervals(domain.EntityTypeTerritory, id, intervals), nil)
		})
	}
	for _, id := range customerIDs {
		pool.Submit(func() {
			versions, err := a.source.CustomerHistory(ctx, id)
			if err != nil {
				collect(nil, fmt.Errorf("customer %q: %w", id, err))
				return
			}
			intervals := make([]interval, len(versions))
			for i, v := range versions {
				intervals[i] = interval{start: v.EffectiveStartKey, end: v.EffectiveEndKey}
			}
			issues := checkIntervals(domain.EntityTypeCustomer, id, intervals)
			issues = append(issues, checkCreatedOn(id, versions)...)
			collect(issues, nil)
		})
	}
	pool.StopAndWait()

	if firstErr != nil {
		return nil, firstErr
	}

	if report.Clean() {
		logger.InfoCtx(ctx, "Consistency audit clean", zap.String("run_id", report.RunID))
	} else {
		logger.WarnCtx(ctx, "Consistency audit found issues",
			zap.String("run_id", report.RunID),
			zap.Int("issues", len(report.Issues)),
		)
	}
	return report, nil
}

type interval struct {
	start domain.DateKey
	end   *domain.DateKey
}

// checkIntervals verifies one entity's version intervals: at most one open,
// no empty interval, no pairwise overlap under [start, end) semantics.
func checkIntervals(entity domain.EntityType, businessID string, intervals []interval) []Issue {
	var issues []Issue

	open := 0
	for _, iv := range intervals {
		if iv.end == nil {
			open++
			continue
		}
		if *iv.end <= iv.start {
			issues = append(issues, Issue{
				Entity:     entity,
				BusinessID: businessID,
				Kind:       IssueEmptyInterval,
				Detail:     fmt.Sprintf("version [%s, %s) ends on or before its start", iv.start, *iv.end),
			})
		}
	}
	if open > 1 {
		issues = append(issues, Issue{
			Entity:     entity,
			BusinessID: businessID,
			Kind:       IssueMultipleOpen,
			Detail:     fmt.Sprintf("%d versions have no effective end", open),
		})
	}

	sorted := make([]interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.end == nil || cur.start < *prev.end {
			issues = append(issues, Issue{
				Entity:     entity,
				BusinessID: businessID,
				Kind:       IssueOverlap,
				Detail:     fmt.Sprintf("version starting %s overlaps its predecessor starting %s", cur.start, prev.start),
			})
		}
	}
	return issues
}

// checkCreatedOn verifies all versions of a customer agree on the created-on
// date.
func checkCreatedOn(businessID string, versions []schema.CustomerVersion) []Issue {
	if len(versions) < 2 {
		return nil
	}
	first := versions[0].CreatedOnKey
	for _, v := range versions[1:] {
		if v.CreatedOnKey != first {
			return []Issue{{
				Entity:     domain.EntityTypeCustomer,
				BusinessID: businessID,
				Kind:       IssueCreatedOnDrift,
				Detail:     fmt.Sprintf("created-on %s differs from first version's %s", v.CreatedOnKey, first),
			}}
		}
	}
	return nil
}
