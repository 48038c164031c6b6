package afero

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/sharetube/watchparty/internal/repository/blob"
	"github.com/spf13/afero"
)

type repo struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
}

func NewRepo(fs afero.Fs, dir string, logger *slog.Logger) (*repo, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}

	return &repo{
		fs:     fs,
		dir:    dir,
		logger: logger,
	}, nil
}

func (r *repo) path(name string) (string, error) {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", blob.ErrInvalidBlobName
	}

	return path.Join(r.dir, name), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}

// Write stores src under name, failing if more than limit bytes arrive.
// On any failure the partial file is removed.
func (r *repo) Write(ctx context.Context, name string, src io.Reader, limit int64) (n int64, err error) {
	funcName := "blob.afero.Write"
	p, err := r.path(name)
	if err != nil {
		return 0, err
	}

	f, err := r.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) || errors.Is(err, afero.ErrFileExists) {
			return 0, blob.ErrBlobExists
		}
		return 0, err
	}

	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			if rerr := r.fs.Remove(p); rerr != nil {
				r.logger.WarnContext(ctx, funcName, "remove error", rerr)
			}
		}
	}()

	n, err = io.Copy(f, io.LimitReader(ctxReader{ctx: ctx, r: src}, limit+1))
	if err != nil {
		return n, err
	}

	if n > limit {
		return n, blob.ErrBlobTooLarge
	}

	r.logger.DebugContext(ctx, funcName, "name", name, "size", n)
	return n, nil
}

// Open returns a read-only handle and the blob size. The caller closes it.
func (r *repo) Open(name string) (afero.File, int64, error) {
	p, err := r.path(name)
	if err != nil {
		return nil, 0, err
	}

	f, err := r.fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, blob.ErrBlobNotFound
		}
		return nil, 0, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}

	return f, info.Size(), nil
}

func (r *repo) Remove(name string) error {
	p, err := r.path(name)
	if err != nil {
		return err
	}

	if err := r.fs.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return blob.ErrBlobNotFound
		}
		return err
	}

	r.logger.Debug("blob.afero.Remove", "name", name)
	return nil
}

// RemoveStem removes every blob named stem or stem.<ext> and reports how
// many were removed.
func (r *repo) RemoveStem(stem string) (int, error) {
	if _, err := r.path(stem); err != nil {
		return 0, err
	}

	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || (name != stem && !strings.HasPrefix(name, stem+".")) {
			continue
		}

		if err := r.fs.Remove(path.Join(r.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		removed++
	}

	r.logger.Debug("blob.afero.RemoveStem", "stem", stem, "removed", removed)
	return removed, nil
}
