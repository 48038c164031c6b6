package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	blobAfero "github.com/sharetube/watchparty/internal/repository/blob/afero"
	connInmemory "github.com/sharetube/watchparty/internal/repository/connection/inmemory"
	roomInmemory "github.com/sharetube/watchparty/internal/repository/room/inmemory"
	videoInmemory "github.com/sharetube/watchparty/internal/repository/video/inmemory"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/internal/service/video"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	return newTestServerWithConfig(t, &Config{
		MaxUploadSize:     1 << 20,
		RateLimitPerIP:    1000,
		RateLimitBurst:    1000,
		WSMessagesPerSec:  1000,
		WSMessagesBurst:   1000,
		SendQueueCapacity: 64,
	})
}

func newTestServerWithConfig(t *testing.T, cfg *Config) *httptest.Server {
	logger := slog.Default()
	blobRepo, err := blobAfero.NewRepo(afero.NewMemMapFs(), "/uploads", logger)
	require.NoError(t, err)

	videoService := video.NewService(videoInmemory.NewRepo(logger), blobRepo, &video.Config{MaxSize: 1 << 20}, logger)
	roomService := room.NewService(
		roomInmemory.NewRepo(logger),
		connInmemory.NewRepo(logger),
		videoService,
		&room.Config{Secret: "secret"},
		logger,
	)

	c := NewController(roomService, videoService, cfg, logger)

	srv := httptest.NewServer(c.GetMux())
	t.Cleanup(srv.Close)
	return srv
}

func createRoom(t *testing.T, srv *httptest.Server) createRoomResponse {
	resp, err := http.Post(srv.URL+"/api/rooms", "application/json", strings.NewReader(`{"hostName":"alice"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out createRoomResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	require.NoError(t, conn.WriteJSON(map[string]any{"type": typ, "payload": payload}))
}

// readUntil skips messages until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ {
			return msg
		}
	}
}

func mp4(size int) []byte {
	b := make([]byte, size)
	copy(b, "\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41")
	for i := 32; i < size; i++ {
		b[i] = byte(i)
	}
	return b
}

func upload(t *testing.T, srv *httptest.Server, roomId, token string, data []byte) *http.Response {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("hostToken", token))
	fw, err := mw.CreateFormFile("video", "movie.mp4")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/rooms/"+roomId+"/video", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndGetRoom(t *testing.T) {
	srv := newTestServer(t)
	created := createRoom(t, srv)
	assert.Len(t, created.RoomId, 8)
	assert.NotEmpty(t, created.HostToken)

	resp, err := http.Get(srv.URL + "/api/rooms/" + strings.ToLower(created.RoomId))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info getRoomResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, created.RoomId, info.RoomId)
	assert.Equal(t, "alice", info.HostName)
	assert.False(t, info.HasVideo)

	missing, err := http.Get(srv.URL + "/api/rooms/NOPE0000")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCreateRoomValidation(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{`{}`, `{"hostName":""}`, `{"hostName":"a","extra":1}`, `not json`} {
		resp, err := http.Post(srv.URL+"/api/rooms", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestWatchSession(t *testing.T) {
	srv := newTestServer(t)
	created := createRoom(t, srv)

	host := dial(t, srv)
	send(t, host, "join", map[string]any{"roomId": created.RoomId, "nickname": "alice", "hostToken": created.HostToken})
	var hostJoined room.RoomJoinedPayload
	require.NoError(t, json.Unmarshal(readUntil(t, host, room.EventRoomJoined).Payload, &hostJoined))
	assert.True(t, hostJoined.IsHost)

	viewer := dial(t, srv)
	send(t, viewer, "join", map[string]any{"roomId": created.RoomId, "nickname": "bob"})
	var viewerJoined room.RoomJoinedPayload
	require.NoError(t, json.Unmarshal(readUntil(t, viewer, room.EventRoomJoined).Payload, &viewerJoined))
	assert.False(t, viewerJoined.IsHost)
	assert.Len(t, viewerJoined.Participants, 2)
	readUntil(t, host, room.EventParticipantJoined)

	// viewer control is ignored; host control reaches the viewer
	send(t, viewer, "control-play", map[string]any{"time": 99})
	send(t, host, "control-play", map[string]any{"time": 10})
	var sync room.SyncPayload
	require.NoError(t, json.Unmarshal(readUntil(t, viewer, room.EventSync).Payload, &sync))
	assert.Equal(t, 10.0, sync.Time)
	assert.Equal(t, "play", string(sync.Action))
	assert.NotZero(t, sync.ServerTimestamp)

	send(t, viewer, "request-sync", nil)
	require.NoError(t, json.Unmarshal(readUntil(t, viewer, room.EventSync).Payload, &sync))
	assert.GreaterOrEqual(t, sync.Time, 10.0)

	send(t, viewer, "send-message", map[string]any{"message": "hi"})
	readUntil(t, host, room.EventNewMessage)
	readUntil(t, viewer, room.EventNewMessage)

	send(t, viewer, "dance", nil)
	var errPayload room.ErrorPayload
	require.NoError(t, json.Unmarshal(readUntil(t, viewer, room.EventError).Payload, &errPayload))
	assert.Equal(t, "Unknown message type", errPayload.Message)

	// upload requires the host token
	resp := upload(t, srv, created.RoomId, "wrong", mp4(2048))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = upload(t, srv, "NOPE0000", created.HostToken, mp4(2048))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	data := mp4(2048)
	resp = upload(t, srv, created.RoomId, created.HostToken, data)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var uploaded uploadVideoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploaded))
	assert.Equal(t, int64(2048), uploaded.Size)
	assert.Equal(t, "movie.mp4", uploaded.Filename)

	var notice room.VideoUploadedPayload
	require.NoError(t, json.Unmarshal(readUntil(t, viewer, room.EventVideoUploaded).Payload, &notice))
	assert.Equal(t, uploaded.VideoId, notice.VideoId)
	readUntil(t, host, room.EventVideoUploaded)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/video/"+uploaded.VideoId, nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=100-199")
	rangeResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer rangeResp.Body.Close()
	assert.Equal(t, http.StatusPartialContent, rangeResp.StatusCode)
	assert.Equal(t, "bytes 100-199/2048", rangeResp.Header.Get("Content-Range"))
	assert.Equal(t, "video/mp4", rangeResp.Header.Get("Content-Type"))
	body, err := io.ReadAll(rangeResp.Body)
	require.NoError(t, err)
	assert.Equal(t, data[100:200], body)

	// the viewer leaving is announced to the host
	require.NoError(t, viewer.Close())
	var left room.ParticipantLeftPayload
	require.NoError(t, json.Unmarshal(readUntil(t, host, room.EventParticipantLeft).Payload, &left))
	assert.Equal(t, "bob", left.Nickname)
	assert.False(t, left.WasHost)
}

func TestStreamVideoNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/video/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadWithoutVideoPart(t *testing.T) {
	srv := newTestServer(t)
	created := createRoom(t, srv)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("hostToken", created.HostToken))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/rooms/"+created.RoomId+"/video", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJoinUnknownRoom(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, "join", map[string]any{"roomId": "NOPE0000", "nickname": "bob"})
	var errPayload room.ErrorPayload
	require.NoError(t, json.Unmarshal(readUntil(t, conn, room.EventError).Payload, &errPayload))
	assert.Equal(t, "Room not found", errPayload.Message)
}

func TestRateLimitPerIP(t *testing.T) {
	tests := []struct {
		name    string
		rps     float64
		allowed int
	}{
		{"disabled", 0, 5},
		{"one request burst", 0.001, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServerWithConfig(t, &Config{
				MaxUploadSize:     1 << 20,
				RateLimitPerIP:    tt.rps,
				RateLimitBurst:    1,
				SendQueueCapacity: 8,
			})

			allowed := 0
			for i := 0; i < 5; i++ {
				resp, err := http.Post(srv.URL+"/api/rooms", "application/json", strings.NewReader(`{"hostName":"alice"}`))
				require.NoError(t, err)
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					allowed++
				} else {
					assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
				}
			}
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}
