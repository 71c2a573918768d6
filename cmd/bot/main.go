package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hanifn/discord-activity-bot/internal/app/usecase"
	"github.com/hanifn/discord-activity-bot/internal/config"
	"github.com/hanifn/discord-activity-bot/internal/infra/discord"
	"github.com/hanifn/discord-activity-bot/internal/report"
)

const scanWorkers = 4

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Logger
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = zerolog.New(consoleWriter).With().Timestamp().Logger()

	if cfg.DiscordToken == "" {
		log.Fatal().Msg("DISCORD_TOKEN must be set")
	}
	if cfg.GuildID == "" {
		log.Info().Msg("GUILD_ID not set, command registration will be global")
	}

	// 3. Discord Service
	svc, err := discord.NewService(cfg.DiscordToken, log.With().Str("component", "discord").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord service")
	}
	gateway := discord.NewGateway(svc.Session(), log.With().Str("component", "gateway").Logger())

	// 4. Use Cases
	members := usecase.NewResolveRoleMembersUsecase(gateway)
	sources := usecase.NewEnumerateSourcesUsecase(gateway, log.With().Str("component", "enumerator").Logger())
	scanner := usecase.NewScanSourceUsecase(gateway, time.Duration(cfg.PageDelayMs)*time.Millisecond, log.With().Str("component", "scanner").Logger())
	reports := usecase.NewRunActivityReportUsecase(members, sources, scanner, report.NewBuilder(), scanWorkers)

	// 5. Command Handler
	handler := discord.NewHandler(svc.Session(), gateway, reports, discord.HandlerConfig{
		GuildID:        cfg.GuildID,
		LookbackDays:   cfg.LookbackDays,
		DisplayLimit:   cfg.DisplayLimit,
		MaxToScan:      cfg.MaxScanMessages,
		IncludeThreads: cfg.IncludeThreads,
	}, log.With().Str("component", "handler").Logger())
	handler.Register()

	// 6. Connect
	if err := svc.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Discord")
	}

	log.Info().
		Int("lookbackDays", cfg.LookbackDays).
		Int("maxScanMessages", cfg.MaxScanMessages).
		Int("pageDelayMs", cfg.PageDelayMs).
		Msg("Bot is running... Press Ctrl+C to exit")

	// 7. Wait for OS Signal
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info().Msg("Shutting down...")
	svc.Close()
}
