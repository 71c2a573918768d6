package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/hanifn/discord-activity-bot/internal/domain"
	"github.com/hanifn/discord-activity-bot/internal/report"
)

type ReportRequest struct {
	GuildID      string
	RoleSelector string
	Scope        domain.Scope
	// Origin is the channel or thread the request came from.
	// Required for ScopeSingle, ignored for ScopeBroad.
	Origin         *domain.MessageSource
	LookbackDays   int
	DisplayLimit   int
	MaxToScan      int
	IncludeThreads bool
}

type ReportResult struct {
	RoleName       string
	Summary        []report.Row
	Full           []report.ExportRow
	ScannedSources int
}

type RunActivityReportUsecase struct {
	members *ResolveRoleMembersUsecase
	sources *EnumerateSourcesUsecase
	scanner *ScanSourceUsecase
	builder *report.Builder
	workers int
}

// NewRunActivityReportUsecase wires the full report pipeline. workers bounds
// how many sources are scanned concurrently; values below 1 mean sequential.
func NewRunActivityReportUsecase(members *ResolveRoleMembersUsecase, sources *EnumerateSourcesUsecase, scanner *ScanSourceUsecase, builder *report.Builder, workers int) *RunActivityReportUsecase {
	if workers < 1 {
		workers = 1
	}
	return &RunActivityReportUsecase{
		members: members,
		sources: sources,
		scanner: scanner,
		builder: builder,
		workers: workers,
	}
}

// Execute runs one activity report. Errors that prevent forming the target
// set (unknown role, unavailable member directory, unusable origin) abort
// before any history is scanned. Per-source failures are absorbed inside the
// scanner, so a partially degraded run still yields a correctly merged report
// over the sources that succeeded.
//
// Each source accumulates into its own private CountMap; maps are merged only
// after every scan has finished, so the bounded concurrency below never
// shares mutable state between scans.
func (uc *RunActivityReportUsecase) Execute(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	membership, err := uc.members.Execute(ctx, req.GuildID, req.RoleSelector)
	if err != nil {
		return nil, err
	}

	sources, err := uc.sources.Execute(ctx, EnumerateRequest{
		GuildID:        req.GuildID,
		Scope:          req.Scope,
		Origin:         req.Origin,
		IncludeThreads: req.IncludeThreads,
	})
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -req.LookbackDays)
	targets := membership.TargetSet()

	parts := make([]domain.CountMap, len(sources))
	sem := make(chan struct{}, uc.workers)
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src domain.MessageSource) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			parts[i] = uc.scanner.Execute(ctx, src, targets, since, req.MaxToScan)
		}(i, src)
	}
	wg.Wait()

	totals := ReindexCounts(MergeCounts(parts...), membership.Identities)

	scopeID := req.GuildID
	if req.Scope == domain.ScopeSingle && req.Origin != nil {
		scopeID = req.Origin.ID
	}
	summary, full := uc.builder.Build(totals, membership.Identities, membership.Tags, report.Options{
		DisplayLimit: req.DisplayLimit,
		LookbackDays: req.LookbackDays,
		ScopeID:      scopeID,
	})

	return &ReportResult{
		RoleName:       membership.RoleName,
		Summary:        summary,
		Full:           full,
		ScannedSources: len(sources),
	}, nil
}
