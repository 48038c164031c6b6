package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/internal/service/video"
	"github.com/sharetube/watchparty/pkg/ratelimit"
	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	GetRoom(ctx context.Context, roomId string) (room.GetRoomResponse, error)
	ConnectSession(context.Context, *room.ConnectSessionParams) error
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	ControlPlayer(context.Context, *room.ControlPlayerParams) (bool, error)
	RequestSync(ctx context.Context, sessionId string) error
	SendMessage(context.Context, *room.SendMessageParams) (domain.Message, error)
	SendReaction(context.Context, *room.SendReactionParams) (domain.Reaction, error)
	UploadVideo(context.Context, *room.UploadVideoParams) (room.UploadVideoResponse, error)
	DisconnectSession(ctx context.Context, sessionId string) error
}

type iVideoService interface {
	Open(ctx context.Context, id string) (video.OpenResponse, error)
}

type Config struct {
	MaxUploadSize     int64
	RateLimitPerIP    float64
	RateLimitBurst    int
	WSMessagesPerSec  float64
	WSMessagesBurst   int
	SendQueueCapacity int
}

type controller struct {
	roomService  iRoomService
	videoService iVideoService
	upgrader     websocket.Upgrader
	validate     *validator.Validator
	wsRouter     *wsrouter.WSRouter[*client]
	ipLimiter    *ratelimit.RateLimiter
	cfg          Config
	logger       *slog.Logger
}

func NewController(roomService iRoomService, videoService iVideoService, cfg *Config, logger *slog.Logger) *controller {
	c := &controller{
		roomService:  roomService,
		videoService: videoService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:  validator.NewValidator(),
		ipLimiter: ratelimit.New(cfg.RateLimitPerIP, cfg.RateLimitBurst),
		cfg:       *cfg,
		logger:    logger,
	}
	c.wsRouter = c.getWSRouter()

	return c
}

// Run evicts idle per-IP limiters until ctx is done.
func (c controller) Run(ctx context.Context) {
	c.ipLimiter.Run(ctx)
}

func (c controller) generateTimeBasedId() string {
	return ulid.Make().String()
}
