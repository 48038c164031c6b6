package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

func (c controller) wsRequestIdWSMw() wsrouter.Middleware[*client] {
	return func(next wsrouter.HandlerFunc[*client]) wsrouter.HandlerFunc[*client] {
		return func(ctx context.Context, cl *client, payload json.RawMessage) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", c.generateTimeBasedId()))
			return next(ctx, cl, payload)
		}
	}
}

func (c controller) loggerWSMw() wsrouter.Middleware[*client] {
	return func(next wsrouter.HandlerFunc[*client]) wsrouter.HandlerFunc[*client] {
		return func(ctx context.Context, cl *client, payload json.RawMessage) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)))
			c.logger.DebugContext(ctx, "websocket message received", "payload_size", len(payload))

			start := time.Now()
			err := next(ctx, cl, payload)

			c.logger.InfoContext(ctx, "websocket message handled",
				"processing_time_us", time.Since(start).Microseconds(),
				"error", err,
			)

			return err
		}
	}
}

func (c controller) rateLimitWSMw() wsrouter.Middleware[*client] {
	return func(next wsrouter.HandlerFunc[*client]) wsrouter.HandlerFunc[*client] {
		return func(ctx context.Context, cl *client, payload json.RawMessage) error {
			if cl.limiter != nil && !cl.limiter.Allow() {
				return ErrRateLimited
			}

			return next(ctx, cl, payload)
		}
	}
}
