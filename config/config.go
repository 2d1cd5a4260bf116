package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/misscatmint/kzkitty/model"
)

// Load loads the configuration from environment variables.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/kzkitty.db"
	}

	apiBaseURL := os.Getenv("GLOBAL_API_URL")
	if apiBaseURL == "" {
		apiBaseURL = "https://kztimerglobal.com/api/v2.0"
	}

	vnlBaseURL := os.Getenv("VNL_API_URL")
	if vnlBaseURL == "" {
		vnlBaseURL = "https://vnl.kz/api"
	}

	steamBaseURL := os.Getenv("STEAM_COMMUNITY_URL")
	if steamBaseURL == "" {
		steamBaseURL = "https://steamcommunity.com"
	}

	refreshHourStr := os.Getenv("MAP_REFRESH_HOUR")
	if refreshHourStr == "" {
		refreshHourStr = "5"
	}
	refreshHour, err := strconv.Atoi(refreshHourStr)
	if err != nil || refreshHour < 0 || refreshHour > 23 {
		log.Printf("Warning: Invalid MAP_REFRESH_HOUR value %q, using default of 5", refreshHourStr)
		refreshHour = 5
	}

	defaultMode := model.DefaultMode
	if s := os.Getenv("DEFAULT_MODE"); s != "" {
		m, err := model.ParseMode(s)
		if err != nil {
			log.Printf("Warning: Invalid DEFAULT_MODE value %q, using %s", s, model.DefaultMode)
		} else {
			defaultMode = m
		}
	}

	cfg := &model.Config{
		BotToken:       token,
		AppID:          appID,
		DBPath:         dbPath,
		APIBaseURL:     apiBaseURL,
		VnlAPIBaseURL:  vnlBaseURL,
		SteamBaseURL:   steamBaseURL,
		RefreshHour:    refreshHour,
		DisableRefresh: os.Getenv("DISABLE_MAP_REFRESH") == "true",
		DefaultMode:    defaultMode,
	}

	return cfg, nil
}
