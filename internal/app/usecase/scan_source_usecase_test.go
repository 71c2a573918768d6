package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanifn/discord-activity-bot/internal/app/usecase"
	"github.com/hanifn/discord-activity-bot/internal/domain"
)

// mockHistory serves a fixed newest-first message sequence in pages, the way
// the real history endpoint does, and records how many fetches were made.
type mockHistory struct {
	messages  []domain.Message // newest first
	fetches   int
	failAfter int // fail the Nth fetch (1-based), 0 = never
}

func (m *mockHistory) FetchPage(ctx context.Context, sourceID string, limit int, beforeID string) ([]domain.Message, error) {
	m.fetches++
	if m.failAfter > 0 && m.fetches >= m.failAfter {
		return nil, errors.New("history endpoint unavailable")
	}

	start := 0
	if beforeID != "" {
		for i, msg := range m.messages {
			if msg.ID == beforeID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(m.messages) {
		end = len(m.messages)
	}
	if start >= len(m.messages) {
		return nil, nil
	}
	return m.messages[start:end], nil
}

// history builds n in-window messages, newest first, authored round-robin by
// the given identities.
func history(n int, newest time.Time, authors ...domain.Identity) []domain.Message {
	msgs := make([]domain.Message, n)
	for i := 0; i < n; i++ {
		msgs[i] = domain.Message{
			ID:        fmt.Sprintf("msg-%04d", n-i),
			AuthorID:  authors[i%len(authors)],
			CreatedAt: newest.Add(-time.Duration(i) * time.Minute),
		}
	}
	return msgs
}

func targetSet(ids ...domain.Identity) map[domain.Identity]struct{} {
	set := make(map[domain.Identity]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func newScanner(h domain.HistoryProvider) *usecase.ScanSourceUsecase {
	return usecase.NewScanSourceUsecase(h, 0, zerolog.Nop())
}

var testSource = domain.MessageSource{ID: "chan-1", Name: "general", Kind: domain.SourceChannel}

func TestScan_SinceNow_ReturnsZeroAndStopsAfterFirstPage(t *testing.T) {
	now := time.Now()
	repo := &mockHistory{messages: history(40, now.Add(-time.Minute), "alice", "bob")}
	uc := newScanner(repo)

	counts := uc.Execute(context.Background(), testSource, targetSet("alice", "bob"), now, 10000)

	for id, n := range counts {
		if n != 0 {
			t.Errorf("Expected all-zero counts, got %s=%d", id, n)
		}
	}
	if repo.fetches != 1 {
		t.Errorf("Expected exactly 1 fetch, got %d", repo.fetches)
	}
}

func TestScan_MaxToScanCeiling_SamplesPrefixOnly(t *testing.T) {
	now := time.Now()
	since := now.Add(-24 * time.Hour)
	// 250 in-window messages, but the ceiling is one page.
	repo := &mockHistory{messages: history(250, now, "alice")}
	uc := newScanner(repo)

	counts := uc.Execute(context.Background(), testSource, targetSet("alice"), since, 100)

	if counts["alice"] != 100 {
		t.Errorf("Expected 100 counted messages (sampled prefix), got %d", counts["alice"])
	}
	if repo.fetches >= 3 {
		t.Errorf("Ceiling of 100 must not fetch a third page, got %d fetches", repo.fetches)
	}
}

func TestScan_WindowBoundaryMidPage_CountsRestOfPage(t *testing.T) {
	now := time.Now()
	since := now.Add(-time.Hour)

	// Page layout, newest first: in, out, in, in. The out-of-window message
	// sits mid-page; the two in-window messages after it must still count.
	msgs := []domain.Message{
		{ID: "m4", AuthorID: "alice", CreatedAt: now.Add(-time.Minute)},
		{ID: "m3", AuthorID: "alice", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "m2", AuthorID: "alice", CreatedAt: now.Add(-30 * time.Minute)},
		{ID: "m1", AuthorID: "bob", CreatedAt: now.Add(-45 * time.Minute)},
	}
	repo := &mockHistory{messages: msgs}
	uc := newScanner(repo)

	counts := uc.Execute(context.Background(), testSource, targetSet("alice", "bob"), since, 10000)

	if counts["alice"] != 2 {
		t.Errorf("Expected alice=2 (m4 and m2, not m3), got %d", counts["alice"])
	}
	if counts["bob"] != 1 {
		t.Errorf("Expected bob=1, got %d", counts["bob"])
	}
	if repo.fetches != 1 {
		t.Errorf("Past-window page must be the last fetch, got %d fetches", repo.fetches)
	}
}

func TestScan_FetchFailure_KeepsPartialCounts(t *testing.T) {
	now := time.Now()
	since := now.Add(-24 * time.Hour)
	repo := &mockHistory{
		messages:  history(150, now, "alice"),
		failAfter: 2, // first page succeeds, second fails
	}
	uc := newScanner(repo)

	counts := uc.Execute(context.Background(), testSource, targetSet("alice"), since, 10000)

	if counts["alice"] != 100 {
		t.Errorf("Expected counts from the successful first page (100), got %d", counts["alice"])
	}
	if repo.fetches != 2 {
		t.Errorf("Expected scan to stop at the failed fetch, got %d fetches", repo.fetches)
	}
}

func TestScan_NonTargetAuthorsDiscarded(t *testing.T) {
	now := time.Now()
	since := now.Add(-24 * time.Hour)
	repo := &mockHistory{messages: history(30, now, "alice", "outsider", "outsider")}
	uc := newScanner(repo)

	counts := uc.Execute(context.Background(), testSource, targetSet("alice"), since, 10000)

	if counts["alice"] != 10 {
		t.Errorf("Expected alice=10, got %d", counts["alice"])
	}
	if _, ok := counts["outsider"]; ok {
		t.Error("CountMap must never contain identities outside the target set")
	}
}

func TestScan_ExhaustedSourceStops(t *testing.T) {
	now := time.Now()
	since := now.Add(-24 * time.Hour)
	repo := &mockHistory{messages: history(150, now, "alice")}
	uc := newScanner(repo)

	counts := uc.Execute(context.Background(), testSource, targetSet("alice"), since, 10000)

	if counts["alice"] != 150 {
		t.Errorf("Expected the whole history counted (150), got %d", counts["alice"])
	}
	// Pages of 100: full page, partial page, then the empty page that ends it.
	if repo.fetches != 3 {
		t.Errorf("Expected 3 fetches for 150 messages, got %d", repo.fetches)
	}
}
