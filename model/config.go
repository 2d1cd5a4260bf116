package model

// Config holds the application configuration loaded from the environment.
type Config struct {
	BotToken       string
	AppID          string
	DBPath         string
	APIBaseURL     string
	VnlAPIBaseURL  string
	SteamBaseURL   string
	RefreshHour    int  // local hour of day for the catalog refresh
	DisableRefresh bool // skip the scheduled refresh entirely
	DefaultMode    Mode
}
