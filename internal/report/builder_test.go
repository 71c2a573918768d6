package report_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/hanifn/discord-activity-bot/internal/domain"
	"github.com/hanifn/discord-activity-bot/internal/report"
)

func buildFixture(displayLimit int) ([]report.Row, []report.ExportRow) {
	totals := domain.CountMap{"u1": 5, "u2": 9, "u3": 0, "u4": 5}
	ids := []domain.Identity{"u1", "u2", "u3", "u4"}
	tags := map[domain.Identity]string{"u1": "alice", "u2": "bob", "u4": "dave"}
	b := report.NewBuilder()
	return b.Build(totals, ids, tags, report.Options{
		DisplayLimit: displayLimit,
		LookbackDays: 14,
		ScopeID:      "guild-1",
	})
}

func TestBuild_SortsDescendingWithStableTies(t *testing.T) {
	_, full := buildFixture(10)

	wantOrder := []domain.Identity{"u2", "u1", "u4", "u3"}
	for i, id := range wantOrder {
		if full[i].Identity != id {
			t.Errorf("Expected full[%d]=%s, got %s", i, id, full[i].Identity)
		}
	}
	// u1 and u4 are tied on 5; u1 was supplied first and must stay first.
	if full[1].Identity != "u1" || full[2].Identity != "u4" {
		t.Error("Tie-break must preserve the supplied identity order")
	}
}

func TestBuild_TagFallback(t *testing.T) {
	_, full := buildFixture(10)

	for _, row := range full {
		if row.Identity == "u3" && row.Tag != "u3" {
			t.Errorf("Unresolvable identity must fall back to its raw token, got %q", row.Tag)
		}
	}
}

func TestBuild_DisplayLimitClamp(t *testing.T) {
	cases := []struct {
		limit int
		want  int
	}{
		{9999, 4}, // clamp to 50, then to row count
		{0, 1},    // floor of 1
		{-3, 1},
		{2, 2},
	}
	for _, tc := range cases {
		summary, full := buildFixture(tc.limit)
		if len(summary) != tc.want {
			t.Errorf("DisplayLimit %d: expected %d summary rows, got %d", tc.limit, tc.want, len(summary))
		}
		if len(full) != 4 {
			t.Errorf("DisplayLimit %d: export must never be truncated, got %d rows", tc.limit, len(full))
		}
	}
}

func TestBuild_ClampCeiling(t *testing.T) {
	totals := make(domain.CountMap)
	var ids []domain.Identity
	for i := 0; i < 80; i++ {
		id := domain.Identity(fmt.Sprintf("u%02d", i))
		ids = append(ids, id)
		totals[id] = i
	}
	summary, _ := report.NewBuilder().Build(totals, ids, nil, report.Options{DisplayLimit: 9999})
	if len(summary) > report.MaxSummaryRows {
		t.Errorf("Summary may never exceed %d rows, got %d", report.MaxSummaryRows, len(summary))
	}
}

func TestWriteCSV_QuoteDoubling(t *testing.T) {
	rows := []report.ExportRow{
		{Identity: "u1", Tag: `Al"Bob`, Count: 3, LookbackDays: 14, Scope: "guild-1"},
		{Identity: "u2", Tag: "plain", Count: 0, LookbackDays: 14, Scope: "guild-1"},
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rows); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "identity,tag,count,lookback_days,scope" {
		t.Errorf("Unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], `"Al""Bob"`) {
		t.Errorf("Embedded quote must be doubled inside a quoted field, got %q", lines[1])
	}
	if lines[2] != "u2,plain,0,14,guild-1" {
		t.Errorf("Plain fields must stay unquoted, got %q", lines[2])
	}
}

func TestWriteCSV_CommaInTag(t *testing.T) {
	rows := []report.ExportRow{
		{Identity: "u1", Tag: "Smith, John", Count: 1, LookbackDays: 7, Scope: "ch-1"},
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rows); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"Smith, John"`) {
		t.Errorf("Comma-bearing tag must be quoted, got %q", buf.String())
	}
}

func TestWriteTable_RendersRows(t *testing.T) {
	summary, _ := buildFixture(10)
	var buf bytes.Buffer
	report.WriteTable(&buf, summary)

	out := buf.String()
	for _, tag := range []string{"alice", "bob", "dave", "u3"} {
		if !strings.Contains(out, tag) {
			t.Errorf("Table output missing %q:\n%s", tag, out)
		}
	}
}
