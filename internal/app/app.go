package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sharetube/syncroom/internal/controller"
	"github.com/sharetube/syncroom/internal/fanout"
	"github.com/sharetube/syncroom/internal/metrics"
	"github.com/sharetube/syncroom/internal/repository/connection/inmemory"
	mediaRepo "github.com/sharetube/syncroom/internal/repository/media"
	mediaFS "github.com/sharetube/syncroom/internal/repository/media/fs"
	mediaRedis "github.com/sharetube/syncroom/internal/repository/media/redis"
	mediaService "github.com/sharetube/syncroom/internal/service/media"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/ctxlogger"
	"github.com/sharetube/syncroom/pkg/redisclient"
	"golang.org/x/sync/errgroup"
)

const (
	CatalogFS    = "fs"
	CatalogRedis = "redis"

	shutdownTimeout = 30 * time.Second
	inboxSize       = 1024
)

type AppConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	LogLevel          string        `json:"log_level"`
	StaticDir         string        `json:"static_dir"`
	MediaDir          string        `json:"media_dir"`
	ThumbnailDir      string        `json:"thumbnail_dir"`
	MaxUploadMB       int           `json:"max_upload_mb"`
	TickInterval      time.Duration `json:"tick_interval"`
	MessagesPerSecond float64       `json:"messages_per_second"`
	MessageBurst      int           `json:"message_burst"`
	SanitizeChat      bool          `json:"sanitize_chat"`
	Catalog           string        `json:"catalog"`
	RedisHost         string        `json:"redis_host"`
	RedisPort         int           `json:"redis_port"`
	RedisPassword     string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.MaxUploadMB < 1 {
		return fmt.Errorf("max upload size must be greater than 0")
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be greater than 0")
	}
	if cfg.MessagesPerSecond <= 0 || cfg.MessageBurst < 1 {
		return fmt.Errorf("message rate and burst must be greater than 0")
	}
	if cfg.Catalog != CatalogFS && cfg.Catalog != CatalogRedis {
		return fmt.Errorf("unknown catalog %q", cfg.Catalog)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLevel(level string) (slog.Level, error) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return logLevel, nil
}

func newLogger(cfg *AppConfig) (*slog.Logger, error) {
	logLevel, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(h), nil
}

type application struct {
	handler    http.Handler
	dispatcher *room.Dispatcher
	closers    []func() error
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func build(ctx context.Context, cfg *AppConfig, logger *slog.Logger, clk clock.Clock) (*application, error) {
	app := &application{}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	broadcaster := fanout.New(logger, m)
	connectionRepo := inmemory.NewRepo(logger)
	roomService := room.NewService(connectionRepo, clk, logger, &room.Config{
		SanitizeChat: cfg.SanitizeChat,
	})
	app.dispatcher = room.NewDispatcher(roomService, broadcaster, m, logger, &room.DispatcherConfig{
		TickInterval: cfg.TickInterval,
		InboxSize:    inboxSize,
	})

	storage, err := mediaFS.NewRepo(&mediaFS.Config{
		MediaDir:     cfg.MediaDir,
		ThumbnailDir: cfg.ThumbnailDir,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create media storage: %w", err)
	}

	var catalog mediaCatalog
	if cfg.Catalog == CatalogRedis {
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		app.closers = append(app.closers, rc.Close)

		catalog = mediaRedis.NewRepo(rc, logger)
		if err := indexStorage(ctx, storage, catalog); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to index media: %w", err)
		}
	}
	media := mediaService.NewService(storage, catalog, broadcaster, m, logger)

	app.handler = controller.NewController(
		app.dispatcher,
		media,
		broadcaster,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		logger,
		&controller.Config{
			StaticDir:         cfg.StaticDir,
			MediaDir:          cfg.MediaDir,
			ThumbnailDir:      cfg.ThumbnailDir,
			MaxUploadBytes:    int64(cfg.MaxUploadMB) << 20,
			MessagesPerSecond: cfg.MessagesPerSecond,
			MessageBurst:      cfg.MessageBurst,
		},
	).GetMux()

	return app, nil
}

type mediaStorage interface {
	GetVideo(context.Context, string) (mediaRepo.Video, error)
	ListVideos(context.Context) ([]mediaRepo.Video, error)
}

type mediaCatalog interface {
	AddVideo(context.Context, mediaRepo.Video) error
	GetVideo(context.Context, string) (mediaRepo.Video, error)
	ListVideos(context.Context) ([]mediaRepo.Video, error)
	RemoveVideo(context.Context, string) error
}

// indexStorage drops catalog entries whose file is gone and adds videos
// already on disk to the catalog.
func indexStorage(ctx context.Context, storage mediaStorage, catalog mediaCatalog) error {
	indexed, err := catalog.ListVideos(ctx)
	if err != nil {
		return err
	}

	for _, video := range indexed {
		_, err := storage.GetVideo(ctx, video.Name)
		switch {
		case errors.Is(err, mediaRepo.ErrVideoNotFound):
			if err := catalog.RemoveVideo(ctx, video.Name); err != nil {
				return err
			}
		case err != nil:
			return err
		}
	}

	videos, err := storage.ListVideos(ctx)
	if err != nil {
		return err
	}

	for _, video := range videos {
		if err := catalog.AddVideo(ctx, video); err != nil {
			return err
		}
	}

	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := build(ctx, cfg, logger, clock.New())
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.dispatcher.Run(gctx)
	})

	g.Go(func() error {
		logger.InfoContext(gctx, "starting server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
