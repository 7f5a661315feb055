// Package main provides the songfetch CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"songfetch/internal/chat/telegram"
	"songfetch/internal/core"
	"songfetch/internal/download"
	"songfetch/internal/flood"
	httpserver "songfetch/internal/http"
	"songfetch/internal/i18n"
	"songfetch/internal/odesli"
	"songfetch/internal/spotify"
	"songfetch/internal/store"
	"songfetch/internal/youtube"
	"songfetch/pkg/links"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "songfetch",
	Short: "songfetch - Telegram song resolver and downloader",
	Long: `songfetch is a Telegram bot that turns song links (YouTube, Spotify) or
free-text searches into playable MP3 replies with title, performer and cover art.`,
	RunE: runSongfetch,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("bot-token", "", "Telegram bot token")
	rootCmd.PersistentFlags().String("spotify-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("resolver-backend", core.BackendAggregator,
		fmt.Sprintf("resolver backend (%s, %s)", core.BackendAggregator, core.BackendSearch))
	rootCmd.PersistentFlags().String("aggregator-url", "", "song.link API base URL")
	rootCmd.PersistentFlags().Int("search-limit", 25, "Maximum search results per query")
	rootCmd.PersistentFlags().Int("inline-limit", 10, "Maximum inline query results")
	rootCmd.PersistentFlags().String("cookies-path", "cookies.txt", "Path to a Netscape cookies file for yt-dlp")
	rootCmd.PersistentFlags().String("audio-quality", "320K", "Audio transcoding quality")
	rootCmd.PersistentFlags().String("cache-dir", "cache", "Artifact staging directory")
	rootCmd.PersistentFlags().String("history-path", "./songfetch_history.db", "Delivery history database path")
	rootCmd.PersistentFlags().Int("track-cache-size", 1000, "Resolved track cache capacity")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	rootCmd.PersistentFlags().Int("selection-timeout-secs", 300, "Selection prompt timeout in seconds")
	rootCmd.PersistentFlags().Int("flood-limit-per-minute", 6, "Maximum requests per user per minute")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	rootCmd.PersistentFlags().String("language", i18n.DefaultLanguage, fmt.Sprintf("Bot language (%s)", supportedLangs))

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if err := gotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	// Optional YAML config with flat keys (bot_token, spotify_id, ...).
	configFile := "config.yml"
	if cfgFile != "" {
		configFile = cfgFile
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}

	viper.SetEnvPrefix("SONGFETCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Telegram.BotToken = firstNonEmpty(viper.GetString("bot-token"), viper.GetString("bot_token"))
	cfg.Spotify.ClientID = firstNonEmpty(viper.GetString("spotify-id"), viper.GetString("spotify_id"))
	cfg.Spotify.ClientSecret = firstNonEmpty(viper.GetString("spotify-secret"), viper.GetString("spotify_secret"))

	cfg.Resolver.Backend = viper.GetString("resolver-backend")
	if url := viper.GetString("aggregator-url"); url != "" {
		cfg.Resolver.AggregatorBaseURL = url
	}

	if limit := viper.GetInt("search_limit"); limit > 0 {
		cfg.Search.Limit = limit
	}
	if limit := viper.GetInt("search-limit"); limit > 0 {
		cfg.Search.Limit = limit
	}
	if limit := viper.GetInt("inline-limit"); limit > 0 {
		cfg.Search.InlineLimit = limit
	}

	cfg.Download.CookiesPath = viper.GetString("cookies-path")
	cfg.Download.AudioQuality = viper.GetString("audio-quality")
	cfg.Store.CacheDir = viper.GetString("cache-dir")
	cfg.Store.HistoryPath = viper.GetString("history-path")
	if size := viper.GetInt("track-cache-size"); size > 0 {
		cfg.Store.TrackCacheSize = size
	}

	cfg.Server.Host = viper.GetString("server-host")
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")

	if secs := viper.GetInt("selection-timeout-secs"); secs > 0 {
		cfg.App.SelectionTimeoutSecs = secs
	}
	if limit := viper.GetInt("flood-limit-per-minute"); limit > 0 {
		cfg.App.FloodLimitPerMinute = limit
	}

	cfg.App.Language = viper.GetString("language")
	if !supportedLanguage(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'\n",
			cfg.App.Language, i18n.DefaultLanguage)
		cfg.App.Language = i18n.DefaultLanguage
	}

	return cfg
}

func supportedLanguage(lang string) bool {
	for _, supported := range i18n.GetSupportedLanguages() {
		if lang == supported {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func validateConfig() error {
	if config.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required (--bot-token, SONGFETCH_BOT_TOKEN or bot_token in config.yml)")
	}
	if config.Resolver.Backend != core.BackendAggregator && config.Resolver.Backend != core.BackendSearch {
		return fmt.Errorf("unknown resolver backend %q", config.Resolver.Backend)
	}
	return nil
}

func runSongfetch(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting songfetch",
		zap.String("resolver_backend", config.Resolver.Backend),
		zap.String("language", config.App.Language),
		zap.Bool("spotify_enabled", config.Spotify.ClientID != ""))

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	svcs, err := initializeServices(ctx)
	if err != nil {
		return err
	}
	defer svcs.close()

	return runServices(ctx, svcs)
}

type services struct {
	httpServer *httpserver.Server
	dispatcher *core.Dispatcher
	history    *store.History
	floodgate  *flood.Floodgate
}

func (s *services) close() {
	s.floodgate.Stop()
	if err := s.history.Close(); err != nil {
		logger.Debug("Failed to close history store", zap.Error(err))
	}
}

func initializeServices(ctx context.Context) (*services, error) {
	artifacts := store.NewArtifacts(config.Store.CacheDir, logger)
	if err := artifacts.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset artifact staging: %w", err)
	}

	history, err := store.NewHistory(config.Store.HistoryPath, logger)
	if err != nil {
		return nil, err
	}

	trackCache := store.NewTrackCache(config.Store.TrackCacheSize, 0.001)
	parser := links.NewParser()
	youtubeClient := youtube.NewClient(logger)
	odesliClient := odesli.NewClient(config.Resolver.AggregatorBaseURL, logger)

	// Streaming metadata is optional; without credentials the resolver
	// degrades to video-platform metadata.
	var metadata core.MetadataClient
	if config.Spotify.ClientID != "" && config.Spotify.ClientSecret != "" {
		spotifyClient := spotify.NewClient(&config.Spotify, logger)
		if err := spotifyClient.Authenticate(ctx); err != nil {
			return nil, fmt.Errorf("failed to authenticate with Spotify: %w", err)
		}
		metadata = spotifyClient
	} else {
		logger.Warn("No Spotify credentials, track metadata will come from the video platform only")
	}

	resolver, err := core.NewResolver(
		&config.Resolver,
		odesliClient,
		metadata,
		parser,
		youtubeClient,
		youtubeClient,
		trackCache,
		logger,
	)
	if err != nil {
		return nil, err
	}

	downloader := download.NewDownloader(&config.Download, logger)
	installCtx, installCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer installCancel()
	if err := downloader.Install(installCtx); err != nil {
		return nil, err
	}

	frontend := telegram.NewFrontend(&telegram.Config{BotToken: config.Telegram.BotToken}, logger)
	httpServer := httpserver.NewServer(&config.Server, logger)
	floodgate := flood.New(config.App.FloodLimitPerMinute)

	dispatcher := core.NewDispatcher(
		config,
		frontend,
		resolver,
		youtubeClient,
		parser,
		downloader,
		artifacts,
		history,
		httpServer.GetMetrics(),
		floodgate,
		logger,
	)

	return &services{
		httpServer: httpServer,
		dispatcher: dispatcher,
		history:    history,
		floodgate:  floodgate,
	}, nil
}

func runServices(ctx context.Context, svcs *services) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return svcs.dispatcher.Start(gCtx)
	})

	logger.Info("songfetch started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("songfetch stopped with error", zap.Error(err))
		return err
	}

	logger.Info("songfetch stopped gracefully")
	return nil
}
