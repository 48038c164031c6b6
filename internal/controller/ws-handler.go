package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"golang.org/x/time/rate"
)

func (c controller) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	sessionId := uuid.NewString()
	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("session_id", sessionId))

	var limiter *rate.Limiter
	if c.cfg.WSMessagesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.cfg.WSMessagesPerSec), max(c.cfg.WSMessagesBurst, 1))
	}
	cl := newClient(conn, sessionId, max(c.cfg.SendQueueCapacity, 1), limiter)

	if err := c.roomService.ConnectSession(ctx, &room.ConnectSessionParams{
		SessionId: sessionId,
		Conn:      cl,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to connect session", "error", err)
		conn.Close()
		return
	}

	go cl.WritePump()
	defer func() {
		if err := c.roomService.DisconnectSession(context.WithoutCancel(ctx), sessionId); err != nil {
			c.logger.InfoContext(ctx, "failed to disconnect session", "error", err)
		}
		cl.Close()
	}()

	c.logger.InfoContext(ctx, "websocket connected", "remote_addr", r.RemoteAddr)
	if err := cl.ReadPump(ctx, func(ctx context.Context, data []byte) {
		c.dispatch(ctx, cl, data)
	}); err != nil {
		c.logger.InfoContext(ctx, "websocket closed unexpectedly", "error", err)
	}
}

// dispatch routes one message and reports failures to the sender only.
// A panicking handler costs the message, not the connection.
func (c controller) dispatch(ctx context.Context, cl *client, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.ErrorContext(ctx, "panic in websocket handler", "panic", rec)
			c.sendError(ctx, cl, "Internal error")
		}
	}()

	if err := c.wsRouter.Dispatch(ctx, cl, data); err != nil {
		msg, expected := wsErrorMessage(err)
		if !expected {
			c.logger.ErrorContext(ctx, "failed to handle message", "error", err)
		}
		c.sendError(ctx, cl, msg)
	}
}

func (c controller) sendError(ctx context.Context, cl *client, message string) {
	data, err := marshalOutput(&room.Output{
		Type:    room.EventError,
		Payload: room.ErrorPayload{Message: message},
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to marshal error", "error", err)
		return
	}

	if !cl.Send(data) {
		cl.Close()
	}
}

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *client, _ EmptyInput) error {
	return nil
}

type JoinInput struct {
	RoomId    string `json:"roomId"`
	Nickname  string `json:"nickname"`
	HostToken string `json:"hostToken"`
}

func (c controller) handleJoin(ctx context.Context, cl *client, input JoinInput) error {
	_, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		SessionId: cl.sessionId,
		RoomId:    input.RoomId,
		Nickname:  input.Nickname,
		HostToken: input.HostToken,
	})
	return err
}

type ControlInput struct {
	Time float64 `json:"time"`
}

func (c controller) control(ctx context.Context, cl *client, action domain.PlaybackAction, input ControlInput) error {
	_, err := c.roomService.ControlPlayer(ctx, &room.ControlPlayerParams{
		SessionId: cl.sessionId,
		Action:    action,
		Time:      input.Time,
	})
	return err
}

func (c controller) handleControlPlay(ctx context.Context, cl *client, input ControlInput) error {
	return c.control(ctx, cl, domain.ActionPlay, input)
}

func (c controller) handleControlPause(ctx context.Context, cl *client, input ControlInput) error {
	return c.control(ctx, cl, domain.ActionPause, input)
}

func (c controller) handleControlSeek(ctx context.Context, cl *client, input ControlInput) error {
	return c.control(ctx, cl, domain.ActionSeek, input)
}

func (c controller) handleRequestSync(ctx context.Context, cl *client, _ EmptyInput) error {
	return c.roomService.RequestSync(ctx, cl.sessionId)
}

type SendMessageInput struct {
	Message string `json:"message"`
}

func (c controller) handleSendMessage(ctx context.Context, cl *client, input SendMessageInput) error {
	_, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		SessionId: cl.sessionId,
		Message:   input.Message,
	})
	return err
}

type SendReactionInput struct {
	Emoji string `json:"emoji"`
}

func (c controller) handleSendReaction(ctx context.Context, cl *client, input SendReactionInput) error {
	_, err := c.roomService.SendReaction(ctx, &room.SendReactionParams{
		SessionId: cl.sessionId,
		Emoji:     input.Emoji,
	})
	return err
}
