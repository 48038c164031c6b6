package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sharetube/watchparty/internal/viewer"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
)

func newRootCmd() *cobra.Command {
	cfg := &viewer.Config{}
	var debug bool

	cmd := &cobra.Command{
		Use:          "viewer",
		Short:        "Join a watch party room and follow the host's playback",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(ctxlogger.ContextHandler{
				Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ctx = ctxlogger.AppendCtx(ctx, slog.String("room_id", cfg.RoomId))
			return viewer.New(cfg, nil, logger).Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.URL, "url", "ws://localhost:8080/api/ws", "WebSocket endpoint")
	flags.StringVar(&cfg.RoomId, "room", "", "Room id to join")
	flags.StringVar(&cfg.Nickname, "nickname", "viewer", "Display name")
	flags.StringVar(&cfg.HostToken, "host-token", "", "Host token, joins as host when valid")
	flags.DurationVar(&cfg.SyncInterval, "sync-interval", 30*time.Second, "How often to request a sync, 0 disables")
	flags.BoolVar(&debug, "debug", false, "Log every room event")
	cmd.MarkFlagRequired("room")

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
