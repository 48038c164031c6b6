// Package viewer is a headless watch party participant. It joins a room over
// the websocket channel and keeps a simulated player in step with the host.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/playersync"
)

var ErrJoinRejected = errors.New("join rejected")

const writeWait = 10 * time.Second

type Config struct {
	URL          string
	RoomId       string
	Nickname     string
	HostToken    string
	SyncInterval time.Duration
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type Viewer struct {
	cfg    *Config
	player *playersync.Player
	clock  func() time.Time
	logger *slog.Logger

	writeMu sync.Mutex
	conn    *websocket.Conn
	joined  bool
	isHost  atomic.Bool
}

func New(cfg *Config, clock func() time.Time, logger *slog.Logger) *Viewer {
	if clock == nil {
		clock = time.Now
	}

	return &Viewer{
		cfg:    cfg,
		player: playersync.NewPlayer(clock),
		clock:  clock,
		logger: logger,
	}
}

func (v *Viewer) Player() *playersync.Player {
	return v.player
}

// IsHost reports whether the server bound host control to this viewer.
func (v *Viewer) IsHost() bool {
	return v.isHost.Load()
}

// Run joins the room and applies events until ctx is done or the server
// closes the connection.
func (v *Viewer) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, v.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", v.cfg.URL, err)
	}
	v.conn = conn
	defer conn.Close()

	if err := v.write("join", map[string]string{
		"roomId":    v.cfg.RoomId,
		"nickname":  v.cfg.Nickname,
		"hostToken": v.cfg.HostToken,
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if v.cfg.SyncInterval > 0 {
		go v.requestSyncLoop(ctx)
	}

	for {
		var msg envelope
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		if err := v.handle(ctx, msg); err != nil {
			return err
		}
	}
}

func (v *Viewer) requestSyncLoop(ctx context.Context) {
	ticker := time.NewTicker(v.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// the host is the source of the position
			if v.isHost.Load() {
				continue
			}
			if err := v.write("request-sync", nil); err != nil {
				v.logger.WarnContext(ctx, "failed to request sync", "error", err)
				return
			}
		}
	}
}

func (v *Viewer) write(typ string, payload any) error {
	v.writeMu.Lock()
	defer v.writeMu.Unlock()

	v.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return v.conn.WriteJSON(map[string]any{"type": typ, "payload": payload})
}

func (v *Viewer) handle(ctx context.Context, msg envelope) error {
	switch msg.Type {
	case room.EventRoomJoined:
		var payload room.RoomJoinedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode %s: %w", msg.Type, err)
		}
		v.joined = true
		v.isHost.Store(payload.IsHost)
		v.applyState(payload.VideoState)
		v.logger.InfoContext(ctx, "joined room",
			"room_id", payload.RoomId,
			"is_host", payload.IsHost,
			"video_id", payload.VideoId,
			"participants", len(payload.Participants),
		)
	case room.EventSync:
		var payload room.SyncPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode %s: %w", msg.Type, err)
		}
		seeked := v.player.Apply(playersync.Event{
			Action:          string(payload.Action),
			Time:            payload.Time,
			ServerTimestamp: payload.ServerTimestamp,
		})
		v.logger.InfoContext(ctx, "sync applied",
			"action", payload.Action,
			"position", v.player.CurrentTime(),
			"seeked", seeked,
		)
	case room.EventVideoUploaded:
		var payload room.VideoUploadedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode %s: %w", msg.Type, err)
		}
		v.player.Reset()
		v.logger.InfoContext(ctx, "video changed", "video_id", payload.VideoId, "filename", payload.Filename)
	case room.EventParticipantJoined, room.EventParticipantLeft, room.EventNewMessage, room.EventNewReaction:
		v.logger.DebugContext(ctx, "room event", "type", msg.Type, "payload", string(msg.Payload))
	case room.EventError:
		var payload room.ErrorPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode %s: %w", msg.Type, err)
		}
		if !v.joined {
			return fmt.Errorf("%w: %s", ErrJoinRejected, payload.Message)
		}
		v.logger.WarnContext(ctx, "server error", "message", payload.Message)
	default:
		v.logger.DebugContext(ctx, "unknown event", "type", msg.Type)
	}

	return nil
}

// applyState loads the snapshot from room-joined. currentTime is already
// extrapolated by the server, so it is applied with no latency.
func (v *Viewer) applyState(state room.VideoState) {
	action := playersync.ActionPause
	if state.IsPlaying {
		action = playersync.ActionPlay
	}

	v.player.Apply(playersync.Event{
		Action:          action,
		Time:            state.CurrentTime,
		ServerTimestamp: v.clock().UnixMilli(),
	})
}
