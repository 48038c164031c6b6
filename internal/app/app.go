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

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"

	"github.com/sharetube/watchparty/internal/controller"
	blobAfero "github.com/sharetube/watchparty/internal/repository/blob/afero"
	connInmemory "github.com/sharetube/watchparty/internal/repository/connection/inmemory"
	roomInmemory "github.com/sharetube/watchparty/internal/repository/room/inmemory"
	videoRepo "github.com/sharetube/watchparty/internal/repository/video"
	videoInmemory "github.com/sharetube/watchparty/internal/repository/video/inmemory"
	videoRedis "github.com/sharetube/watchparty/internal/repository/video/redis"
	"github.com/sharetube/watchparty/internal/service/reaper"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/internal/service/video"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/randstr"
	"github.com/sharetube/watchparty/pkg/redisclient"
)

const (
	shutdownTimeout   = 30 * time.Second
	sendQueueCapacity = 256
	secretLength      = 32
)

type AppConfig struct {
	Secret           string        `json:"-"`
	Host             string        `json:"host"`
	Port             int           `json:"port"`
	LogLevel         string        `json:"log_level"`
	UploadDir        string        `json:"upload_dir"`
	MaxUploadSize    int64         `json:"max_upload_size"`
	ReaperInterval   time.Duration `json:"reaper_interval"`
	RoomMaxAge       time.Duration `json:"room_max_age"`
	RedisHost        string        `json:"redis_host"`
	RedisPort        int           `json:"redis_port"`
	RedisPassword    string        `json:"-"`
	RateLimitPerIP   float64       `json:"rate_limit_per_ip"`
	WSMessagesPerSec float64       `json:"ws_messages_per_sec"`
}

func (cfg *AppConfig) Validate() error {
	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&cfg.LogLevel, validation.Required, validation.In("DEBUG", "INFO", "WARN", "ERROR")),
		validation.Field(&cfg.UploadDir, validation.Required),
		validation.Field(&cfg.MaxUploadSize, validation.Required, validation.Min(int64(1))),
		validation.Field(&cfg.ReaperInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&cfg.RoomMaxAge, validation.Required, validation.Min(time.Minute)),
		validation.Field(&cfg.RedisPort, validation.When(cfg.RedisHost != "", validation.Required, validation.Max(65535))),
		validation.Field(&cfg.RateLimitPerIP, validation.Min(0.0)),
		validation.Field(&cfg.WSMessagesPerSec, validation.Min(0.0)),
	)
}

func newLogger(level string) (*slog.Logger, error) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

type metadataRepo interface {
	Save(context.Context, videoRepo.Video) error
	Get(context.Context, string) (videoRepo.Video, error)
	Delete(context.Context, string) error
}

type application struct {
	handler    http.Handler
	controller interface{ Run(ctx context.Context) }
	reaper     interface{ Run(ctx context.Context) }
	closers    []func() error
}

func (a *application) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}

	return errors.Join(errs...)
}

// build wires repositories, services and the controller. Video metadata
// lives in redis when RedisHost is set and in memory otherwise.
func build(ctx context.Context, cfg *AppConfig, fs afero.Fs, logger *slog.Logger) (*application, error) {
	app := &application{}

	var metadataRepo metadataRepo
	if cfg.RedisHost != "" {
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		app.closers = append(app.closers, rc.Close)
		// no TTL: a live room may hold its video for any length of time,
		// the room service deletes it when the room closes
		metadataRepo = videoRedis.NewRepo(rc, 0, logger)
	} else {
		metadataRepo = videoInmemory.NewRepo(logger)
	}

	blobRepo, err := blobAfero.NewRepo(fs, cfg.UploadDir, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to prepare upload dir: %w", err)
	}

	secret := cfg.Secret
	if secret == "" {
		logger.WarnContext(ctx, "no secret configured, generating one for this process")
		secret = randstr.New([]byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")).GenerateRandomString(secretLength)
	}

	videoService := video.NewService(metadataRepo, blobRepo, &video.Config{
		MaxSize: cfg.MaxUploadSize,
	}, logger)
	roomService := room.NewService(
		roomInmemory.NewRepo(logger),
		connInmemory.NewRepo(logger),
		videoService,
		&room.Config{Secret: secret},
		logger,
	)

	ctrl := controller.NewController(roomService, videoService, &controller.Config{
		MaxUploadSize:     cfg.MaxUploadSize,
		RateLimitPerIP:    cfg.RateLimitPerIP,
		RateLimitBurst:    max(int(cfg.RateLimitPerIP*2), 1),
		WSMessagesPerSec:  cfg.WSMessagesPerSec,
		WSMessagesBurst:   max(int(cfg.WSMessagesPerSec*2), 1),
		SendQueueCapacity: sendQueueCapacity,
	}, logger)

	app.handler = ctrl.GetMux()
	app.controller = ctrl
	app.reaper = reaper.NewService(roomService, &reaper.Config{
		Interval: cfg.ReaperInterval,
		MaxAge:   cfg.RoomMaxAge,
	}, logger)

	return app, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := build(ctx, cfg, afero.NewOsFs(), logger)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg conc.WaitGroup
	serveErr := make(chan error, 1)

	wg.Go(func() {
		logger.InfoContext(ctx, "starting server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	})
	wg.Go(func() { app.reaper.Run(ctx) })
	wg.Go(func() { app.controller.Run(ctx) })

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		server.Close()
	}
	wg.Wait()

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}
