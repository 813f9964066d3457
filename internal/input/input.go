// Package input opens the files given on the command line.
// It transparently decompresses .xz, .gz, .zst and .lz4 files.
package input

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/textalign/core/errors"
)

// MaxFileSize is the maximum decompressed size of an input (256 MB).
// Reading past it fails with a ValidationError.
var MaxFileSize int64 = 256 << 20

// Reader reads a possibly compressed input file.
type Reader struct {
	io.Reader
	file         *os.File
	decompressor io.Closer
}

// Open opens path for reading. Files ending in .xz, .gz, .zst or .lz4 are
// decompressed; anything else is read as is. Reads fail once more than
// MaxFileSize decompressed bytes have been produced.
func Open(path string) (*Reader, error) {
	return openLimit(path, MaxFileSize)
}

func openLimit(path string, limit int64) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}

	var reader io.Reader = f
	var decompressor io.Closer

	switch {
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("decompress", path, err)
		}
		reader = xzr
	case strings.HasSuffix(path, ".gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("decompress", path, err)
		}
		reader = gzr
		decompressor = gzr
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("decompress", path, err)
		}
		rc := zr.IOReadCloser()
		reader = rc
		decompressor = rc
	case strings.HasSuffix(path, ".lz4"):
		reader = lz4.NewReader(f)
	}

	return &Reader{
		Reader:       &capReader{r: reader, path: path, limit: limit, left: limit},
		file:         f,
		decompressor: decompressor,
	}, nil
}

// Close closes the reader and any underlying decompressor.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ReadFile returns the decompressed contents of path. Inputs larger than
// MaxFileSize once decompressed are rejected.
func ReadFile(path string) ([]byte, error) {
	return readFile(path, MaxFileSize)
}

func readFile(path string, limit int64) ([]byte, error) {
	r, err := openLimit(path, limit)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if errors.Is(err, errors.ErrInvalidInput) {
		return nil, err
	}
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

// capReader fails with a ValidationError once the underlying reader
// produces more than limit bytes.
type capReader struct {
	r     io.Reader
	path  string
	limit int64
	left  int64
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.left <= 0 {
		var probe [1]byte
		n, err := c.r.Read(probe[:])
		if n > 0 {
			return 0, errors.NewValidation("input", c.path, fmt.Sprintf("exceeds %d bytes", c.limit))
		}
		return 0, err
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	return n, err
}

// ReadText returns the decompressed contents of path as a string.
func ReadText(path string) (string, error) {
	data, err := ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadLines returns the lines of path without their line endings. A final
// newline does not start another line.
func ReadLines(path string) ([]string, error) {
	text, err := ReadText(path)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}
