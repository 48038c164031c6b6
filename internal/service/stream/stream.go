package stream

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Serve writes content as the response to r, honouring a single byte range.
// Malformed and unsatisfiable ranges get 416 with the resource size.
func Serve(w http.ResponseWriter, r *http.Request, content io.ReaderAt, size int64, mimeType string) error {
	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	if mimeType != "" {
		h.Set("Content-Type", mimeType)
	}

	header := r.Header.Get("Range")
	if header == "" {
		h.Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		return copyBody(w, r, content, 0, size)
	}

	br, err := ParseRange(header, size)
	if err != nil {
		h.Del("Content-Type")
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return err
	}

	h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.Start, br.End, size))
	h.Set("Content-Length", strconv.FormatInt(br.Length(), 10))
	w.WriteHeader(http.StatusPartialContent)

	return copyBody(w, r, content, br.Start, br.Length())
}

func copyBody(w io.Writer, r *http.Request, content io.ReaderAt, offset, length int64) error {
	if r.Method == http.MethodHead || length == 0 {
		return nil
	}

	_, err := io.Copy(w, io.NewSectionReader(content, offset, length))
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}
