package domain

import (
	"context"
	"time"
)

// Identity is an opaque token identifying one user. It is used both as a
// member of the target set and as a CountMap key.
type Identity string

// CountMap maps an identity to a non-negative message count.
// An absent key means a count of zero.
type CountMap map[Identity]int

type SourceKind int

const (
	SourceChannel SourceKind = iota
	SourceThread
)

// MessageSource is a handle to one paginatable message history:
// a text channel or a thread. Both page the same way.
type MessageSource struct {
	ID   string
	Name string
	Kind SourceKind
}

// Message is the slice of a platform message the scanner cares about.
type Message struct {
	ID        string
	AuthorID  Identity
	CreatedAt time.Time
}

// Scope selects which sources a report covers.
type Scope int

const (
	// ScopeSingle scans only the channel or thread the request came from.
	ScopeSingle Scope = iota
	// ScopeBroad scans every text channel in the guild, plus its threads.
	ScopeBroad
)

// Role is one entry of a guild's role directory.
type Role struct {
	ID   string
	Name string
}

// MemberRecord is one entry of a guild's member directory.
type MemberRecord struct {
	ID    Identity
	Tag   string
	Roles []string
}

// Membership is the resolved target set for one report run. Identities keeps
// the discovery order of the member fetch; the report uses it as tie-break
// order among equal counts.
type Membership struct {
	RoleID     string
	RoleName   string
	Identities []Identity
	Tags       map[Identity]string
}

// TargetSet returns the identities as a set for membership checks.
func (m *Membership) TargetSet() map[Identity]struct{} {
	set := make(map[Identity]struct{}, len(m.Identities))
	for _, id := range m.Identities {
		set[id] = struct{}{}
	}
	return set
}

// HistoryProvider pages through one source's history, newest first.
// An empty beforeID means "start from the newest message".
type HistoryProvider interface {
	FetchPage(ctx context.Context, sourceID string, limit int, beforeID string) ([]Message, error)
}

// GuildDirectory exposes a guild's role and member directories.
// Both fetches may be slow; FetchMembers pages through the full directory.
type GuildDirectory interface {
	FetchRoles(ctx context.Context, guildID string) ([]Role, error)
	FetchMembers(ctx context.Context, guildID string) ([]MemberRecord, error)
}

// ChannelDirectory enumerates the scannable child sources of a guild.
// ArchivedThreads returns at most one page; callers never paginate it further.
type ChannelDirectory interface {
	TextChannels(ctx context.Context, guildID string) ([]MessageSource, error)
	ActiveThreads(ctx context.Context, guildID string) ([]MessageSource, error)
	ArchivedThreads(ctx context.Context, channelID string, limit int) ([]MessageSource, error)
}
