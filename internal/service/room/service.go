package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/video"
	videoService "github.com/sharetube/watchparty/internal/service/video"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrUnauthorized     = errors.New("host token mismatch")
	ErrUploadInProgress = errors.New("upload already in progress")
	ErrNotJoined        = errors.New("session has not joined a room")
	ErrAlreadyJoined    = errors.New("session already joined a room")
	ErrSessionNotFound  = errors.New("session not found")
	ErrValidation       = errors.New("validation error")
)

type iRoomRepo interface {
	Create(hostName, hostToken string, now time.Time) (*domain.Room, error)
	Get(id string) (*domain.Room, error)
	Update(id string, fn func(*domain.Room) error) error
	UpdateRoom(rm *domain.Room, fn func(*domain.Room) error) error
	List() []string
}

type iConnRepo interface {
	Add(sessionId string, conn connection.Conn) error
	Remove(sessionId string) (string, error)
	Get(sessionId string) (connection.Conn, error)
	SetRoomId(sessionId, roomId string) error
	GetRoomId(sessionId string) (string, error)
}

type iVideoService interface {
	Store(context.Context, *videoService.StoreParams) (video.Video, error)
	Delete(ctx context.Context, id string) error
}

type Config struct {
	Secret string
	Now    func() time.Time
}

type service struct {
	roomRepo     iRoomRepo
	connRepo     iConnRepo
	videoService iVideoService
	secret       []byte
	now          func() time.Time
	logger       *slog.Logger
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, videoService iVideoService, cfg *Config, logger *slog.Logger) *service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		roomRepo:     roomRepo,
		connRepo:     connRepo,
		videoService: videoService,
		secret:       []byte(cfg.Secret),
		now:          now,
		logger:       logger,
	}
}
