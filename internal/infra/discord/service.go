package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Service owns the long-lived Discord session. The gateway connection is only
// needed for the interactive bot; REST-only callers (the batch reporter) use
// the session without ever calling Open.
type Service struct {
	session *discordgo.Session
	log     zerolog.Logger
}

func NewService(token string, logger zerolog.Logger) (*Service, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers

	return &Service{session: session, log: logger}, nil
}

func (s *Service) Session() *discordgo.Session {
	return s.session
}

func (s *Service) Open() error {
	if err := s.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	s.log.Info().Msg("Connected to Discord gateway")
	return nil
}

func (s *Service) Close() {
	if err := s.session.Close(); err != nil {
		s.log.Warn().Err(err).Msg("Closing discord session failed")
	}
}
