package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/hanifn/discord-activity-bot/internal/app/usecase"
	"github.com/hanifn/discord-activity-bot/internal/domain"
	"github.com/hanifn/discord-activity-bot/internal/report"
)

// Discord caps message content at 2000 characters; leave room for the
// surrounding code fence and footer.
const maxTableChars = 1800

var activityCommand = &discordgo.ApplicationCommand{
	Name:        "activity",
	Description: "Count messages per member of a role over a lookback window",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "role",
			Description: "Role whose members to count",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "days",
			Description: "Lookback window in days",
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "limit",
			Description: "Rows shown in the summary",
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "scope",
			Description: "Where to count messages",
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "this channel", Value: "channel"},
				{Name: "whole server", Value: "server"},
			},
		},
	},
}

// HandlerConfig carries the per-guild report defaults.
type HandlerConfig struct {
	GuildID        string
	LookbackDays   int
	DisplayLimit   int
	MaxToScan      int
	IncludeThreads bool
}

// Handler registers the /activity command and turns interactions into
// report requests. The core has no event loop of its own: each interaction
// builds one ReportRequest and hands it to the usecase synchronously.
type Handler struct {
	session *discordgo.Session
	gateway *Gateway
	reports *usecase.RunActivityReportUsecase
	cfg     HandlerConfig
	log     zerolog.Logger
}

func NewHandler(session *discordgo.Session, gateway *Gateway, reports *usecase.RunActivityReportUsecase, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		session: session,
		gateway: gateway,
		reports: reports,
		cfg:     cfg,
		log:     logger,
	}
}

func (h *Handler) Register() {
	h.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		h.log.Info().
			Str("user", s.State.User.Username).
			Str("guildID", h.cfg.GuildID).
			Msg("Logged in, registering commands")
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, h.cfg.GuildID, activityCommand); err != nil {
			h.log.Error().Err(err).Msg("Command registration failed")
		}
	})

	h.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if i.ApplicationCommandData().Name == activityCommand.Name {
			h.handleActivity(s, i)
		}
	})
}

func (h *Handler) handleActivity(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// The scan can take minutes on a broad scope; defer immediately.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		h.log.Error().Err(err).Msg("Interaction ack failed")
		return
	}

	ctx := context.Background()
	req, err := h.buildRequest(ctx, i)
	if err != nil {
		h.replyError(i, err)
		return
	}

	result, err := h.reports.Execute(ctx, *req)
	if err != nil {
		h.replyError(i, err)
		return
	}

	content := renderSummary(result, req.LookbackDays)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		h.log.Error().Err(err).Msg("Report reply failed")
	}
}

func (h *Handler) buildRequest(ctx context.Context, i *discordgo.InteractionCreate) (*usecase.ReportRequest, error) {
	req := usecase.ReportRequest{
		GuildID:        h.cfg.GuildID,
		Scope:          domain.ScopeSingle,
		LookbackDays:   h.cfg.LookbackDays,
		DisplayLimit:   h.cfg.DisplayLimit,
		MaxToScan:      h.cfg.MaxToScan,
		IncludeThreads: h.cfg.IncludeThreads,
	}
	if i.GuildID != "" {
		req.GuildID = i.GuildID
	}

	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "role":
			req.RoleSelector = opt.RoleValue(nil, "").ID
		case "days":
			if days := int(opt.IntValue()); days > 0 {
				req.LookbackDays = days
			}
		case "limit":
			req.DisplayLimit = int(opt.IntValue())
		case "scope":
			if opt.StringValue() == "server" {
				req.Scope = domain.ScopeBroad
			}
		}
	}

	if req.Scope == domain.ScopeSingle {
		origin, err := h.gateway.SourceFromChannelID(ctx, i.ChannelID)
		if err != nil {
			return nil, err
		}
		req.Origin = origin
	}
	return &req, nil
}

func (h *Handler) replyError(i *discordgo.InteractionCreate, err error) {
	h.log.Warn().Err(err).Str("channelID", i.ChannelID).Msg("Activity report failed")
	msg := userFacingError(err)
	if _, editErr := h.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &msg}); editErr != nil {
		h.log.Error().Err(editErr).Msg("Error reply failed")
	}
}

func userFacingError(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoleNotFound):
		return "That role does not exist in this server."
	case errors.Is(err, domain.ErrMembershipUnavailable):
		return "Could not load the member list. Please try again later."
	case errors.Is(err, domain.ErrUnsupportedSourceType):
		return "This command only works in a text channel or thread."
	default:
		return "The activity report failed unexpectedly."
	}
}

func renderSummary(result *usecase.ReportResult, lookbackDays int) string {
	var table strings.Builder
	report.WriteTable(&table, result.Summary)

	body := table.String()
	if len(body) > maxTableChars {
		body = body[:maxTableChars] + "\n…"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Activity for role %s** — last %d days\n", result.RoleName, lookbackDays)
	sb.WriteString("```\n")
	sb.WriteString(body)
	sb.WriteString("```\n")
	fmt.Fprintf(&sb, "%d sources scanned", result.ScannedSources)
	return sb.String()
}
