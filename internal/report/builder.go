package report

import (
	"sort"

	"github.com/hanifn/discord-activity-bot/internal/domain"
)

// Display limits for the human-readable summary. The requested limit is
// clamped into this range; the full export is never truncated.
const (
	MinSummaryRows = 1
	MaxSummaryRows = 50
)

// Row is one line of the human-readable summary.
type Row struct {
	Identity domain.Identity
	Tag      string
	Count    int
}

// ExportRow is one line of the machine-readable export.
type ExportRow struct {
	Identity     domain.Identity
	Tag          string
	Count        int
	LookbackDays int
	Scope        string
}

type Options struct {
	DisplayLimit int
	LookbackDays int
	ScopeID      string
}

type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build turns merged totals into report rows. Every identity in ids appears
// exactly once, zero counts included. Identities missing from tags fall back
// to their raw token; a missing tag never fails the report.
//
// Rows are sorted by count descending with a stable sort, so ties keep the
// order of ids — callers supply ids in member-discovery order, which makes
// the tie-break deterministic for a fixed directory snapshot.
func (b *Builder) Build(totals domain.CountMap, ids []domain.Identity, tags map[domain.Identity]string, opts Options) ([]Row, []ExportRow) {
	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		tag := tags[id]
		if tag == "" {
			tag = string(id)
		}
		rows = append(rows, Row{Identity: id, Tag: tag, Count: totals[id]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})

	limit := clampDisplayLimit(opts.DisplayLimit)
	if limit > len(rows) {
		limit = len(rows)
	}
	summary := make([]Row, limit)
	copy(summary, rows[:limit])

	full := make([]ExportRow, len(rows))
	for i, r := range rows {
		full[i] = ExportRow{
			Identity:     r.Identity,
			Tag:          r.Tag,
			Count:        r.Count,
			LookbackDays: opts.LookbackDays,
			Scope:        opts.ScopeID,
		}
	}
	return summary, full
}

func clampDisplayLimit(limit int) int {
	if limit < MinSummaryRows {
		return MinSummaryRows
	}
	if limit > MaxSummaryRows {
		return MaxSummaryRows
	}
	return limit
}
