package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hanifn/discord-activity-bot/internal/app/usecase"
	"github.com/hanifn/discord-activity-bot/internal/config"
	"github.com/hanifn/discord-activity-bot/internal/domain"
	"github.com/hanifn/discord-activity-bot/internal/infra/discord"
	"github.com/hanifn/discord-activity-bot/internal/report"
)

const scanWorkers = 4

// Offline reporting mode: runs a broad-scope report over the whole guild and
// writes the full export as CSV. No gateway connection is opened; everything
// goes through the REST API.
func main() {
	role := flag.String("role", "", "Role ID or name whose members to count")
	days := flag.Int("days", 0, "Lookback window in days (default: LOOKBACK_DAYS)")
	out := flag.String("out", "", "CSV output path (default: CSV_PATH, or stdout)")
	logLevelStr := flag.String("log-level", "", "Log level override")
	flag.Parse()

	cfg := config.Load()

	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	level := cfg.LogLevel
	if *logLevelStr != "" {
		level = *logLevelStr
	}
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = zerolog.New(consoleWriter).With().Timestamp().Logger()

	if cfg.DiscordToken == "" {
		log.Fatal().Msg("DISCORD_TOKEN must be set")
	}
	if cfg.GuildID == "" {
		log.Fatal().Msg("GUILD_ID must be set")
	}
	if *role == "" {
		log.Fatal().Msg("-role is required")
	}

	lookbackDays := cfg.LookbackDays
	if *days > 0 {
		lookbackDays = *days
	}

	svc, err := discord.NewService(cfg.DiscordToken, log.With().Str("component", "discord").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord service")
	}
	gateway := discord.NewGateway(svc.Session(), log.With().Str("component", "gateway").Logger())

	members := usecase.NewResolveRoleMembersUsecase(gateway)
	sources := usecase.NewEnumerateSourcesUsecase(gateway, log.With().Str("component", "enumerator").Logger())
	scanner := usecase.NewScanSourceUsecase(gateway, time.Duration(cfg.PageDelayMs)*time.Millisecond, log.With().Str("component", "scanner").Logger())
	reports := usecase.NewRunActivityReportUsecase(members, sources, scanner, report.NewBuilder(), scanWorkers)

	result, err := reports.Execute(context.Background(), usecase.ReportRequest{
		GuildID:        cfg.GuildID,
		RoleSelector:   *role,
		Scope:          domain.ScopeBroad,
		LookbackDays:   lookbackDays,
		DisplayLimit:   cfg.DisplayLimit,
		MaxToScan:      cfg.MaxScanMessages,
		IncludeThreads: cfg.IncludeThreads,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Activity report failed")
	}

	csvPath := cfg.CSVPath
	if *out != "" {
		csvPath = *out
	}

	dest := os.Stdout
	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", csvPath).Msg("Failed to create CSV file")
		}
		defer f.Close()
		dest = f
	}
	if err := report.WriteCSV(dest, result.Full); err != nil {
		log.Fatal().Err(err).Msg("Failed to write CSV")
	}

	if csvPath != "" {
		// CSV went to a file, so the summary table can use stdout.
		report.WriteTable(os.Stdout, result.Summary)
	}

	log.Info().
		Str("role", result.RoleName).
		Int("lookbackDays", lookbackDays).
		Int("members", len(result.Full)).
		Int("scannedSources", result.ScannedSources).
		Msg("Report complete")
}
