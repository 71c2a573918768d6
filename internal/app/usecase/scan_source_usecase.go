package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanifn/discord-activity-bot/internal/domain"
)

// HistoryPageSize is the fixed page size of every history request.
const HistoryPageSize = 100

type ScanSourceUsecase struct {
	history   domain.HistoryProvider
	pageDelay time.Duration
	log       zerolog.Logger
}

// NewScanSourceUsecase builds a scanner. pageDelay is the cooperative pause
// between page requests, a courtesy toward the remote rate limiter rather
// than a contract of the API.
func NewScanSourceUsecase(history domain.HistoryProvider, pageDelay time.Duration, logger zerolog.Logger) *ScanSourceUsecase {
	return &ScanSourceUsecase{history: history, pageDelay: pageDelay, log: logger}
}

// Execute walks one source's history newest-to-oldest in pages of
// HistoryPageSize, counting messages per author for the target set.
//
// The scan stops when the source is exhausted, when a page contains a message
// older than since (the remainder of that page is still examined, since the
// boundary may fall mid-page), or when maxToScan messages have been fetched.
// maxToScan is a hard ceiling: hitting it first leaves the window partially
// covered, which callers treat as an accepted approximation.
//
// A failed page fetch degrades the source to "exhausted": the error is
// logged, prior counts are kept, and no further pages are requested.
func (uc *ScanSourceUsecase) Execute(ctx context.Context, source domain.MessageSource, targets map[domain.Identity]struct{}, since time.Time, maxToScan int) domain.CountMap {
	counts := make(domain.CountMap, len(targets))
	fetched := 0
	cursor := ""
	pastWindow := false

	for fetched < maxToScan {
		page, err := uc.history.FetchPage(ctx, source.ID, HistoryPageSize, cursor)
		if err != nil {
			uc.log.Warn().
				Err(err).
				Str("sourceID", source.ID).
				Str("sourceName", source.Name).
				Int("fetched", fetched).
				Msg("History fetch failed, treating source as exhausted")
			break
		}
		if len(page) == 0 {
			break
		}

		for _, msg := range page {
			if msg.CreatedAt.Before(since) {
				pastWindow = true
				continue
			}
			if _, ok := targets[msg.AuthorID]; ok {
				counts[msg.AuthorID]++
			}
		}

		fetched += len(page)
		// Pagination moves strictly backward in time.
		cursor = page[len(page)-1].ID

		if pastWindow {
			break
		}

		if uc.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return counts
			case <-time.After(uc.pageDelay):
			}
		}
	}

	uc.log.Debug().
		Str("sourceID", source.ID).
		Str("sourceName", source.Name).
		Int("fetched", fetched).
		Bool("pastWindow", pastWindow).
		Msg("Source scan finished")

	return counts
}
