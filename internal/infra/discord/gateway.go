package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/hanifn/discord-activity-bot/internal/domain"
)

// memberPageSize is the largest page the member endpoint serves.
const memberPageSize = 1000

// Gateway implements the domain directory and history interfaces on top of a
// discordgo session. discordgo transparently retries 429 responses; the
// scanner's own pacing keeps us from hitting them in the first place.
type Gateway struct {
	session *discordgo.Session
	log     zerolog.Logger
}

func NewGateway(session *discordgo.Session, logger zerolog.Logger) *Gateway {
	return &Gateway{session: session, log: logger}
}

var (
	_ domain.HistoryProvider  = (*Gateway)(nil)
	_ domain.GuildDirectory   = (*Gateway)(nil)
	_ domain.ChannelDirectory = (*Gateway)(nil)
)

func (g *Gateway) FetchRoles(ctx context.Context, guildID string) ([]domain.Role, error) {
	roles, err := g.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild roles: %w", err)
	}
	out := make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, domain.Role{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// FetchMembers pages through the full member directory, 1000 at a time.
func (g *Gateway) FetchMembers(ctx context.Context, guildID string) ([]domain.MemberRecord, error) {
	var out []domain.MemberRecord
	after := ""
	for {
		members, err := g.session.GuildMembers(guildID, after, memberPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("fetch guild members: %w", err)
		}
		if len(members) == 0 {
			break
		}
		for _, m := range members {
			if m.User == nil {
				continue
			}
			out = append(out, domain.MemberRecord{
				ID:    domain.Identity(m.User.ID),
				Tag:   m.User.Username,
				Roles: m.Roles,
			})
		}
		if len(members) < memberPageSize {
			break
		}
		after = members[len(members)-1].User.ID
	}
	g.log.Debug().Str("guildID", guildID).Int("members", len(out)).Msg("Member directory fetched")
	return out, nil
}

// FetchPage returns up to limit messages strictly older than beforeID,
// newest first. An empty beforeID starts from the newest message.
func (g *Gateway) FetchPage(ctx context.Context, sourceID string, limit int, beforeID string) ([]domain.Message, error) {
	msgs, err := g.session.ChannelMessages(sourceID, limit, beforeID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch channel messages: %w", err)
	}
	out := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		msg := domain.Message{ID: m.ID, CreatedAt: m.Timestamp}
		// System messages can lack an author; they keep their place in the
		// page (the cursor needs the oldest ID) but never match a target.
		if m.Author != nil {
			msg.AuthorID = domain.Identity(m.Author.ID)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (g *Gateway) TextChannels(ctx context.Context, guildID string) ([]domain.MessageSource, error) {
	channels, err := g.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild channels: %w", err)
	}
	var out []domain.MessageSource
	for _, ch := range channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
			out = append(out, domain.MessageSource{ID: ch.ID, Name: ch.Name, Kind: domain.SourceChannel})
		}
	}
	return out, nil
}

func (g *Gateway) ActiveThreads(ctx context.Context, guildID string) ([]domain.MessageSource, error) {
	list, err := g.session.GuildThreadsActive(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch active threads: %w", err)
	}
	return threadSources(list), nil
}

// ArchivedThreads returns the first page of a channel's archived public
// threads. Archived pagination is never followed further.
func (g *Gateway) ArchivedThreads(ctx context.Context, channelID string, limit int) ([]domain.MessageSource, error) {
	list, err := g.session.ThreadsArchived(channelID, nil, limit, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch archived threads: %w", err)
	}
	return threadSources(list), nil
}

func threadSources(list *discordgo.ThreadsList) []domain.MessageSource {
	if list == nil {
		return nil
	}
	out := make([]domain.MessageSource, 0, len(list.Threads))
	for _, th := range list.Threads {
		out = append(out, domain.MessageSource{ID: th.ID, Name: th.Name, Kind: domain.SourceThread})
	}
	return out
}

// SourceFromChannelID classifies the channel an interaction came from, for
// single-scope reports.
func (g *Gateway) SourceFromChannelID(ctx context.Context, channelID string) (*domain.MessageSource, error) {
	ch, err := g.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("lookup channel: %w", err)
	}
	switch ch.Type {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return &domain.MessageSource{ID: ch.ID, Name: ch.Name, Kind: domain.SourceChannel}, nil
	case discordgo.ChannelTypeGuildPublicThread, discordgo.ChannelTypeGuildPrivateThread, discordgo.ChannelTypeGuildNewsThread:
		return &domain.MessageSource{ID: ch.ID, Name: ch.Name, Kind: domain.SourceThread}, nil
	default:
		return nil, domain.ErrUnsupportedSourceType
	}
}
