package stream

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrMalformedRange     = errors.New("malformed range")
	ErrUnsatisfiableRange = errors.New("unsatisfiable range")
)

// ByteRange is an inclusive byte interval.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ParseRange parses a single-range "bytes=" header against a resource of
// size bytes. Only one range is accepted; an end past the resource is
// clamped to its last byte.
func ParseRange(header string, size int64) (ByteRange, error) {
	rangeSet, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok {
		return ByteRange{}, ErrMalformedRange
	}

	rangeSet = strings.TrimSpace(rangeSet)
	if strings.Contains(rangeSet, ",") {
		return ByteRange{}, ErrMalformedRange
	}

	startStr, endStr, ok := strings.Cut(rangeSet, "-")
	if !ok {
		return ByteRange{}, ErrMalformedRange
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	if startStr == "" {
		// suffix range: the last N bytes
		n, err := parseOffset(endStr)
		if err != nil {
			return ByteRange{}, err
		}
		if n == 0 || size == 0 {
			return ByteRange{}, ErrUnsatisfiableRange
		}
		if n > size {
			n = size
		}
		return ByteRange{Start: size - n, End: size - 1}, nil
	}

	start, err := parseOffset(startStr)
	if err != nil {
		return ByteRange{}, err
	}

	end := size - 1
	if endStr != "" {
		end, err = parseOffset(endStr)
		if err != nil {
			return ByteRange{}, err
		}
		if end < start {
			return ByteRange{}, ErrUnsatisfiableRange
		}
		if end >= size {
			end = size - 1
		}
	}

	if start >= size {
		return ByteRange{}, ErrUnsatisfiableRange
	}

	return ByteRange{Start: start, End: end}, nil
}

func parseOffset(s string) (int64, error) {
	if s == "" {
		return 0, ErrMalformedRange
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, ErrMalformedRange
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrMalformedRange
	}

	return n, nil
}
