package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/syncroom/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 3000,
		usage:        "Server port",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	staticDir = configVar[string]{
		envKey:       "SERVER_STATIC_DIR",
		flagKey:      "static-dir",
		defaultValue: "public",
		usage:        "Directory served at /",
	}
	mediaDir = configVar[string]{
		envKey:       "SERVER_MEDIA_DIR",
		flagKey:      "media-dir",
		defaultValue: "public/media",
		usage:        "Directory holding uploaded videos",
	}
	thumbnailDir = configVar[string]{
		envKey:       "SERVER_THUMBNAIL_DIR",
		flagKey:      "thumbnail-dir",
		defaultValue: "public/thumbnails",
		usage:        "Directory holding video thumbnails",
	}
	maxUploadMB = configVar[int]{
		envKey:       "SERVER_MAX_UPLOAD_MB",
		flagKey:      "max-upload-mb",
		defaultValue: 500,
		usage:        "Maximum upload size in megabytes",
	}
	tickInterval = configVar[time.Duration]{
		envKey:       "SERVER_TICK_INTERVAL",
		flagKey:      "tick-interval",
		defaultValue: time.Second,
		usage:        "Playback extrapolation interval",
	}
	messagesPerSecond = configVar[float64]{
		envKey:       "SERVER_MESSAGES_PER_SECOND",
		flagKey:      "messages-per-second",
		defaultValue: 20,
		usage:        "Sustained websocket messages per connection per second",
	}
	messageBurst = configVar[int]{
		envKey:       "SERVER_MESSAGE_BURST",
		flagKey:      "message-burst",
		defaultValue: 40,
		usage:        "Websocket message burst per connection",
	}
	sanitizeChat = configVar[bool]{
		envKey:       "SERVER_SANITIZE_CHAT",
		flagKey:      "sanitize-chat",
		defaultValue: false,
		usage:        "Strip markup from names, chat messages and reactions",
	}
	catalog = configVar[string]{
		envKey:       "SERVER_CATALOG",
		flagKey:      "catalog",
		defaultValue: app.CatalogFS,
		usage:        "Media catalog backend (fs or redis)",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
)

func bind[T any](flags *pflag.FlagSet, v configVar[T], define func(name string, value T, usage string) *T) {
	define(v.flagKey, v.defaultValue, v.usage)
	viper.BindPFlag(v.flagKey, flags.Lookup(v.flagKey))
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func bindFlags(flags *pflag.FlagSet) {
	bind(flags, host, flags.String)
	bind(flags, port, flags.Int)
	bind(flags, logLevel, flags.String)
	bind(flags, staticDir, flags.String)
	bind(flags, mediaDir, flags.String)
	bind(flags, thumbnailDir, flags.String)
	bind(flags, maxUploadMB, flags.Int)
	bind(flags, tickInterval, flags.Duration)
	bind(flags, messagesPerSecond, flags.Float64)
	bind(flags, messageBurst, flags.Int)
	bind(flags, sanitizeChat, flags.Bool)
	bind(flags, catalog, flags.String)
	bind(flags, redisHost, flags.String)
	bind(flags, redisPort, flags.Int)
	bind(flags, redisPassword, flags.String)
}

func loadAppConfig() *app.AppConfig {
	return &app.AppConfig{
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		StaticDir:         viper.GetString(staticDir.flagKey),
		MediaDir:          viper.GetString(mediaDir.flagKey),
		ThumbnailDir:      viper.GetString(thumbnailDir.flagKey),
		MaxUploadMB:       viper.GetInt(maxUploadMB.flagKey),
		TickInterval:      viper.GetDuration(tickInterval.flagKey),
		MessagesPerSecond: viper.GetFloat64(messagesPerSecond.flagKey),
		MessageBurst:      viper.GetInt(messageBurst.flagKey),
		SanitizeChat:      viper.GetBool(sanitizeChat.flagKey),
		Catalog:           viper.GetString(catalog.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "syncroom",
		Short:         "Watch party server keeping room playback in sync",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appConfig := loadAppConfig()
			if err := appConfig.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
			fmt.Printf("starting app with config: %s\n", jsonConfig)

			return app.Run(cmd.Context(), appConfig)
		},
	}
	bindFlags(cmd.Flags())

	return cmd
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
