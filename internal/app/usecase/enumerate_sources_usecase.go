package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hanifn/discord-activity-bot/internal/domain"
)

// ArchivedThreadPageSize bounds archived-thread discovery to a single page
// per channel. Deeper crawling is intentionally not attempted.
const ArchivedThreadPageSize = 25

type EnumerateSourcesUsecase struct {
	channels domain.ChannelDirectory
	log      zerolog.Logger
}

func NewEnumerateSourcesUsecase(channels domain.ChannelDirectory, logger zerolog.Logger) *EnumerateSourcesUsecase {
	return &EnumerateSourcesUsecase{channels: channels, log: logger}
}

type EnumerateRequest struct {
	GuildID        string
	Scope          domain.Scope
	Origin         *domain.MessageSource // required for ScopeSingle
	IncludeThreads bool
}

// Execute lists the sources a report will scan, in discovery order. Sources
// are scanned independently afterwards, so order does not affect totals; it
// only fixes the tie-break order of equal-count report rows.
//
// Broad scope is best-effort: a channel whose thread listing fails is skipped
// with a warning instead of aborting the run.
func (uc *EnumerateSourcesUsecase) Execute(ctx context.Context, req EnumerateRequest) ([]domain.MessageSource, error) {
	if req.Scope == domain.ScopeSingle {
		if req.Origin == nil {
			return nil, domain.ErrUnsupportedSourceType
		}
		if req.Origin.Kind != domain.SourceChannel && req.Origin.Kind != domain.SourceThread {
			return nil, domain.ErrUnsupportedSourceType
		}
		return []domain.MessageSource{*req.Origin}, nil
	}

	channels, err := uc.channels.TextChannels(ctx, req.GuildID)
	if err != nil {
		return nil, fmt.Errorf("list text channels: %w", err)
	}

	sources := make([]domain.MessageSource, 0, len(channels))
	seen := make(map[string]struct{}, len(channels))
	for _, ch := range channels {
		sources = append(sources, ch)
		seen[ch.ID] = struct{}{}
	}

	if !req.IncludeThreads {
		return sources, nil
	}

	active, err := uc.channels.ActiveThreads(ctx, req.GuildID)
	if err != nil {
		uc.log.Warn().
			Err(err).
			Str("guildID", req.GuildID).
			Msg("Active thread listing failed, continuing without active threads")
	} else {
		for _, th := range active {
			if _, dup := seen[th.ID]; dup {
				continue
			}
			sources = append(sources, th)
			seen[th.ID] = struct{}{}
		}
	}

	for _, ch := range channels {
		archived, err := uc.channels.ArchivedThreads(ctx, ch.ID, ArchivedThreadPageSize)
		if err != nil {
			uc.log.Warn().
				Err(err).
				Str("channelID", ch.ID).
				Str("channelName", ch.Name).
				Msg("Archived thread listing failed, skipping channel's archived threads")
			continue
		}
		for _, th := range archived {
			if _, dup := seen[th.ID]; dup {
				continue
			}
			sources = append(sources, th)
			seen[th.ID] = struct{}{}
		}
	}

	return sources, nil
}
