package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/syncroom/internal/fanout"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/ctxlogger"
	"github.com/sharetube/syncroom/pkg/wsrouter"
)

func (c controller) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	connId := uuid.NewString()
	ctx := context.WithValue(r.Context(), connIdCtxKey, connId)
	ctx = context.WithValue(ctx, limiterCtxKey, c.newLimiter())
	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", connId))

	cl := newClient(connId, conn)
	go cl.writePump()
	c.broadcaster.Attach(cl)

	c.logger.InfoContext(ctx, "websocket connected", "remote_addr", r.RemoteAddr)

	if err := c.dispatcher.Do(ctx, "connect", func(s *room.Service) ([]fanout.Outbound, error) {
		return s.Connect(connId), nil
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to greet connection", "error", err)
	}

	c.readLoop(ctx, cl)

	// the request context may already be cancelled; the disconnect must run
	disconnectCtx := context.WithoutCancel(ctx)
	if err := c.dispatcher.Do(disconnectCtx, "disconnect", func(s *room.Service) ([]fanout.Outbound, error) {
		return s.Disconnect(connId), nil
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to apply disconnect", "error", err)
	}

	c.broadcaster.Detach(connId)
	cl.Close()

	c.logger.InfoContext(ctx, "websocket disconnected")
}

func (c controller) readLoop(ctx context.Context, cl *client) {
	cl.prepareRead()

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.InfoContext(ctx, "websocket read error", "error", err)
			}
			return
		}

		if err := c.wsRouter.Dispatch(ctx, data); err != nil {
			c.logDispatchError(ctx, err)
		}
	}
}

// Rejected messages are only logged; nothing is written back.
func (c controller) logDispatchError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, wsrouter.ErrMalformedMessage),
		errors.Is(err, wsrouter.ErrUnknownMessageType),
		errors.Is(err, errInvalidInput):
		c.logger.WarnContext(ctx, "websocket message rejected", "error", err)
	case errors.Is(err, errRateLimited):
		c.logger.InfoContext(ctx, "websocket message rejected", "error", err)
	default:
		c.logger.DebugContext(ctx, "websocket message dropped", "error", err)
	}
}
