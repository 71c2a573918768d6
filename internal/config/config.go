package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken    string
	GuildID         string
	LookbackDays    int  // Report window: messages newer than now - LookbackDays count
	MaxScanMessages int  // Hard per-source scan ceiling
	PageDelayMs     int  // Pause between history page requests (milliseconds)
	DisplayLimit    int  // Default summary row count
	IncludeThreads  bool // Broad scope also scans active + archived threads
	CSVPath         string
	LogLevel        string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults/environment variables")
	}

	return Config{
		DiscordToken:    getenv("DISCORD_TOKEN", ""),
		GuildID:         getenv("GUILD_ID", ""),
		LookbackDays:    getenvInt("LOOKBACK_DAYS", 30),
		MaxScanMessages: getenvInt("MAX_SCAN_MESSAGES", 10000),
		PageDelayMs:     getenvInt("PAGE_DELAY_MS", 1000),
		DisplayLimit:    getenvInt("DISPLAY_LIMIT", 20),
		IncludeThreads:  getenvBool("INCLUDE_THREADS", true),
		CSVPath:         getenv("CSV_PATH", ""),
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
