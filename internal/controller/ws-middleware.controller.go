package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/sharetube/syncroom/pkg/ctxlogger"
	"github.com/sharetube/syncroom/pkg/wsrouter"
)

var errRateLimited = errors.New("rate limit exceeded")

// Playback commands bypass the limiter: a leader scrubbing through a video
// must not leave the room behind.
var unlimitedMessageTypes = map[string]bool{
	"select-video": true,
	"video-event":  true,
}

func (c controller) wsRequestIdWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
		return func(ctx context.Context, payload json.RawMessage) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", c.generateTimeBasedId()))
			return next(ctx, payload)
		}
	}
}

func (c controller) rateLimitWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
		return func(ctx context.Context, payload json.RawMessage) error {
			if unlimitedMessageTypes[wsrouter.GetMessageTypeFromCtx(ctx)] {
				return next(ctx, payload)
			}
			if limiter := c.getLimiterFromCtx(ctx); limiter != nil && !limiter.Allow() {
				return errRateLimited
			}
			return next(ctx, payload)
		}
	}
}

func (c controller) loggerWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
		return func(ctx context.Context, payload json.RawMessage) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)))
			c.logger.DebugContext(ctx, "websocket message received", "payload_bytes", len(payload))

			start := time.Now()

			err := next(ctx, payload)

			c.logger.DebugContext(ctx, "websocket message handled",
				"processing_time_us", time.Since(start).Microseconds(),
				"goroutines", runtime.NumGoroutine(),
				"error", err,
			)

			return err
		}
	}
}
