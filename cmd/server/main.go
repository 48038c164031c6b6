package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/watchparty/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	secret = configVar[string]{
		envKey:  "SERVER_SECRET",
		flagKey: "secret",
		usage:   "Secret used to sign host tokens",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	uploadDir = configVar[string]{
		envKey:       "SERVER_UPLOAD_DIR",
		flagKey:      "upload-dir",
		defaultValue: "./uploads",
		usage:        "Directory for uploaded videos",
	}
	maxUploadSize = configVar[int64]{
		envKey:       "SERVER_MAX_UPLOAD_SIZE",
		flagKey:      "max-upload-size",
		defaultValue: 2 << 30,
		usage:        "Maximum video size in bytes",
	}
	reaperInterval = configVar[time.Duration]{
		envKey:       "SERVER_REAPER_INTERVAL",
		flagKey:      "reaper-interval",
		defaultValue: time.Hour,
		usage:        "How often stale rooms are swept",
	}
	roomMaxAge = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_MAX_AGE",
		flagKey:      "room-max-age",
		defaultValue: 24 * time.Hour,
		usage:        "Age after which a room is closed",
	}
	rateLimitPerIP = configVar[float64]{
		envKey:       "SERVER_RATE_LIMIT_PER_IP",
		flagKey:      "rate-limit-per-ip",
		defaultValue: 10,
		usage:        "HTTP requests per second per client IP, 0 disables",
	}
	wsMessagesPerSec = configVar[float64]{
		envKey:       "SERVER_WS_MESSAGES_PER_SEC",
		flagKey:      "ws-messages-per-sec",
		defaultValue: 20,
		usage:        "WebSocket messages per second per connection, 0 disables",
	}
	redisHost = configVar[string]{
		envKey:  "REDIS_HOST",
		flagKey: "redis-host",
		usage:   "Redis host for video metadata, empty keeps it in memory",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisPassword = configVar[string]{
		envKey:  "REDIS_PASSWORD",
		flagKey: "redis-password",
		usage:   "Redis password",
	}
)

// bind registers v on viper; the flag itself is declared by the caller.
func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String(secret.flagKey, secret.defaultValue, secret.usage)
	flags.Int(port.flagKey, port.defaultValue, port.usage)
	flags.String(host.flagKey, host.defaultValue, host.usage)
	flags.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	flags.String(uploadDir.flagKey, uploadDir.defaultValue, uploadDir.usage)
	flags.Int64(maxUploadSize.flagKey, maxUploadSize.defaultValue, maxUploadSize.usage)
	flags.Duration(reaperInterval.flagKey, reaperInterval.defaultValue, reaperInterval.usage)
	flags.Duration(roomMaxAge.flagKey, roomMaxAge.defaultValue, roomMaxAge.usage)
	flags.Float64(rateLimitPerIP.flagKey, rateLimitPerIP.defaultValue, rateLimitPerIP.usage)
	flags.Float64(wsMessagesPerSec.flagKey, wsMessagesPerSec.defaultValue, wsMessagesPerSec.usage)
	flags.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	flags.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	flags.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)

	viper.BindPFlags(flags)

	bind(secret)
	bind(port)
	bind(host)
	bind(logLevel)
	bind(uploadDir)
	bind(maxUploadSize)
	bind(reaperInterval)
	bind(roomMaxAge)
	bind(rateLimitPerIP)
	bind(wsMessagesPerSec)
	bind(redisHost)
	bind(redisPort)
	bind(redisPassword)
}

func loadAppConfig() *app.AppConfig {
	return &app.AppConfig{
		Secret:           viper.GetString(secret.flagKey),
		Host:             viper.GetString(host.flagKey),
		Port:             viper.GetInt(port.flagKey),
		LogLevel:         strings.ToUpper(viper.GetString(logLevel.flagKey)),
		UploadDir:        viper.GetString(uploadDir.flagKey),
		MaxUploadSize:    viper.GetInt64(maxUploadSize.flagKey),
		ReaperInterval:   viper.GetDuration(reaperInterval.flagKey),
		RoomMaxAge:       viper.GetDuration(roomMaxAge.flagKey),
		RateLimitPerIP:   viper.GetFloat64(rateLimitPerIP.flagKey),
		WSMessagesPerSec: viper.GetFloat64(wsMessagesPerSec.flagKey),
		RedisHost:        viper.GetString(redisHost.flagKey),
		RedisPort:        viper.GetInt(redisPort.flagKey),
		RedisPassword:    viper.GetString(redisPassword.flagKey),
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "watchparty",
		Short:         "Synchronized video watch party server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadAppConfig()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			jsonConfig, _ := json.MarshalIndent(cfg, "", "  ")
			fmt.Printf("starting app with config: %s\n", jsonConfig)

			return app.Run(cmd.Context(), cfg)
		},
	}

	registerFlags(cmd.Flags())
	return cmd
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
