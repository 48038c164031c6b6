package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sharetube/watchparty/internal/repository/blob"
	"github.com/sharetube/watchparty/internal/repository/video"
	"github.com/spf13/afero"
)

// sniffLen matches the number of bytes mimetype inspects by default.
const sniffLen = 3072

var allowedTypes = []string{
	"video/mp4",
	"video/webm",
	"video/ogg",
	"video/quicktime",
	"video/x-msvideo",
	"video/x-matroska",
}

func IsAllowedType(mimeType string) bool {
	return slices.Contains(allowedTypes, mimeType)
}

type StoreParams struct {
	Filename     string
	DeclaredType string
	Content      io.Reader
}

// Store streams Content into a new blob and records its metadata. A failed
// store leaves nothing behind.
func (s service) Store(ctx context.Context, params *StoreParams) (video.Video, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(params.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		s.logger.InfoContext(ctx, "failed to read upload", "error", err)
		return video.Video{}, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	head = head[:n]
	if n == 0 {
		return video.Video{}, fmt.Errorf("%w: empty file", ErrInvalidAsset)
	}

	mimeType := resolveType(params.DeclaredType, head)
	if !IsAllowedType(mimeType) {
		return video.Video{}, fmt.Errorf("%w: type %q not allowed", ErrInvalidAsset, mimeType)
	}

	id := uuid.NewString()
	name := id + extension(params.Filename, mimeType)

	size, err := s.blobRepo.Write(ctx, name, io.MultiReader(bytes.NewReader(head), params.Content), s.maxSize)
	if err != nil {
		if errors.Is(err, blob.ErrBlobTooLarge) {
			return video.Video{}, ErrAssetTooLarge
		}
		s.logger.InfoContext(ctx, "failed to write blob", "error", err)
		return video.Video{}, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	v := video.Video{
		Id:        id,
		Path:      name,
		MimeType:  mimeType,
		Filename:  filepath.Base(params.Filename),
		Size:      size,
		CreatedAt: s.now(),
	}
	if err := s.metadataRepo.Save(ctx, v); err != nil {
		s.logger.InfoContext(ctx, "failed to save video metadata", "error", err)
		if rerr := s.blobRepo.Remove(name); rerr != nil {
			s.logger.WarnContext(ctx, "failed to remove blob", "error", rerr)
		}
		return video.Video{}, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	return v, nil
}

func resolveType(declared string, head []byte) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		mediaType, _, _ = mime.ParseMediaType(mimetype.Detect(head).String())
	}

	return strings.ToLower(mediaType)
}

// extension keeps a short alphanumeric extension from the client filename,
// falling back to the one registered for mimeType.
func extension(filename, mimeType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 1 && len(ext) <= 8 && isAlnum(ext[1:]) {
		return ext
	}

	if m := mimetype.Lookup(mimeType); m != nil {
		return m.Extension()
	}

	return ""
}

func isAlnum(s string) bool {
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}

	return true
}

func (s service) GetMetadata(ctx context.Context, id string) (video.Video, error) {
	v, err := s.metadataRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, video.ErrVideoNotFound) {
			return video.Video{}, ErrVideoNotFound
		}
		s.logger.InfoContext(ctx, "failed to get video metadata", "error", err)
		return video.Video{}, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	return v, nil
}

type OpenResponse struct {
	Video   video.Video
	Content afero.File
	Size    int64
}

// Open returns a fresh read-only handle per call; the caller closes Content.
func (s service) Open(ctx context.Context, id string) (OpenResponse, error) {
	v, err := s.GetMetadata(ctx, id)
	if err != nil {
		return OpenResponse{}, err
	}

	f, size, err := s.blobRepo.Open(v.Path)
	if err != nil {
		if errors.Is(err, blob.ErrBlobNotFound) {
			return OpenResponse{}, ErrVideoNotFound
		}
		s.logger.InfoContext(ctx, "failed to open blob", "error", err)
		return OpenResponse{}, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	return OpenResponse{
		Video:   v,
		Content: f,
		Size:    size,
	}, nil
}

// Delete removes the blob and then its metadata. Blobs are named after the
// video id, so they are still found when the metadata is already gone.
func (s service) Delete(ctx context.Context, id string) error {
	v, err := s.GetMetadata(ctx, id)
	if errors.Is(err, ErrVideoNotFound) {
		return s.deleteOrphan(ctx, id)
	}
	if err != nil {
		return err
	}

	if err := s.blobRepo.Remove(v.Path); err != nil && !errors.Is(err, blob.ErrBlobNotFound) {
		s.logger.InfoContext(ctx, "failed to remove blob", "error", err)
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	if err := s.metadataRepo.Delete(ctx, id); err != nil && !errors.Is(err, video.ErrVideoNotFound) {
		s.logger.InfoContext(ctx, "failed to delete video metadata", "error", err)
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	return nil
}

func (s service) deleteOrphan(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrVideoNotFound
	}

	n, err := s.blobRepo.RemoveStem(id)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to remove orphan blob", "error", err)
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	if n == 0 {
		return ErrVideoNotFound
	}

	s.logger.WarnContext(ctx, "removed blob without metadata", "video_id", id)
	return nil
}
