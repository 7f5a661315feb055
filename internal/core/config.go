package core

import (
	"time"
)

type Config struct {
	Telegram TelegramConfig
	Spotify  SpotifyConfig
	Resolver ResolverConfig
	Search   SearchConfig
	Download DownloadConfig
	Store    StoreConfig
	Server   ServerConfig
	Log      LogConfig
	App      AppConfig
}

type TelegramConfig struct {
	BotToken string
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

type ResolverConfig struct {
	// Backend selects the resolution strategy: "aggregator" (with search
	// fallback) or "search" (direct platform lookup only).
	Backend           string
	AggregatorBaseURL string
}

type SearchConfig struct {
	Limit       int
	InlineLimit int
}

type DownloadConfig struct {
	CookiesPath  string
	AudioQuality string
}

type StoreConfig struct {
	CacheDir       string
	HistoryPath    string
	TrackCacheSize int
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Language             string
	SelectionTimeoutSecs int
	FloodLimitPerMinute  int
}

const (
	// BackendAggregator resolves through the aggregator service first.
	BackendAggregator = "aggregator"
	// BackendSearch resolves through platform lookup only.
	BackendSearch = "search"
)

func DefaultConfig() *Config {
	return &Config{
		Resolver: ResolverConfig{
			Backend:           BackendAggregator,
			AggregatorBaseURL: "https://api.song.link/v1-alpha.1/links",
		},
		Search: SearchConfig{
			Limit:       25,
			InlineLimit: 10,
		},
		Download: DownloadConfig{
			CookiesPath:  "cookies.txt",
			AudioQuality: "320K",
		},
		Store: StoreConfig{
			CacheDir:       "cache",
			HistoryPath:    "./songfetch_history.db",
			TrackCacheSize: 1000,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:             "en",
			SelectionTimeoutSecs: 300,
			FloodLimitPerMinute:  6,
		},
	}
}
