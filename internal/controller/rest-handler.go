package controller

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/internal/service/stream"
	"github.com/sharetube/watchparty/pkg/rest"
)

// multipartOverhead covers part headers and the host token field.
const (
	multipartOverhead = 1 << 20
	maxHostTokenSize  = 4 << 10
)

func (c controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := httpStatus(err)
	if status >= http.StatusInternalServerError {
		c.logger.ErrorContext(r.Context(), "request failed", "error", err)
	} else {
		c.logger.InfoContext(r.Context(), "request rejected", "status", status, "error", err)
	}

	rest.WriteJSON(w, status, rest.Envelope{"error": msg})
}

type createRoomInput struct {
	HostName string `json:"hostName" validate:"required,max=20"`
}

type createRoomResponse struct {
	RoomId    string `json:"roomId"`
	HostToken string `json:"hostToken"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomInput
	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.InfoContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.logger.InfoContext(r.Context(), "validation failed", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		HostName: req.HostName,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, createRoomResponse{
		RoomId:    resp.RoomId,
		HostToken: resp.HostToken,
	})
}

type getRoomResponse struct {
	RoomId           string    `json:"roomId"`
	HostName         string    `json:"hostName"`
	ParticipantCount int       `json:"participantCount"`
	HasVideo         bool      `json:"hasVideo"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	resp, err := c.roomService.GetRoom(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, getRoomResponse{
		RoomId:           resp.RoomId,
		HostName:         resp.HostName,
		ParticipantCount: resp.ParticipantCount,
		HasVideo:         resp.HasVideo,
		CreatedAt:        resp.CreatedAt,
	})
}

type uploadVideoResponse struct {
	VideoId  string `json:"videoId"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// uploadVideo streams the "video" part straight into storage. The host
// token comes from the X-Host-Token header or a "hostToken" field sent
// before the file.
func (c controller) uploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.cfg.MaxUploadSize+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		c.writeError(w, r, ErrNoVideoPart)
		return
	}

	hostToken := r.Header.Get(hostTokenHeader)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			c.writeError(w, r, ErrNoVideoPart)
			return
		}
		if err != nil {
			c.writeError(w, r, err)
			return
		}

		switch part.FormName() {
		case "hostToken":
			token, err := readField(part, maxHostTokenSize)
			if err != nil {
				c.writeError(w, r, err)
				return
			}
			hostToken = token
		case "video":
			c.storeVideo(w, r, part, hostToken)
			return
		}
		part.Close()
	}
}

func (c controller) storeVideo(w http.ResponseWriter, r *http.Request, part *multipart.Part, hostToken string) {
	defer part.Close()

	resp, err := c.roomService.UploadVideo(r.Context(), &room.UploadVideoParams{
		RoomId:       chi.URLParam(r, "room-id"),
		HostToken:    hostToken,
		Filename:     part.FileName(),
		DeclaredType: part.Header.Get("Content-Type"),
		Content:      part,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, uploadVideoResponse{
		VideoId:  resp.VideoId,
		Filename: resp.Filename,
		Size:     resp.Size,
	})
}

func readField(part *multipart.Part, limit int64) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, limit))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func (c controller) streamVideo(w http.ResponseWriter, r *http.Request) {
	resp, err := c.videoService.Open(r.Context(), chi.URLParam(r, "video-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	defer resp.Content.Close()

	if err := stream.Serve(w, r, resp.Content, resp.Size, resp.Video.MimeType); err != nil {
		c.logger.DebugContext(r.Context(), "stream ended early", "video_id", resp.Video.Id, "error", err)
	}
}
