// Package fileio opens inputs and outputs with transparent compression
// chosen by file extension (.gz, .lz4), and runs the output pre-flight checks.
package fileio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

// Pre-flight errors.
var (
	ErrOutputIsDir  = errors.New("output path is a directory")
	ErrOutputExists = errors.New("output file exists (use --overwrite)")
)

// Stdin is the path that means "read standard input".
const Stdin = "-"

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open returns a reader for path, decompressing .gz and .lz4.
func Open(path string) (io.ReadCloser, error) {
	if path == Stdin {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch ext(path) {
	case ".gz":
		gr, err := gzip.NewReader(bufio.NewReaderSize(fh, 1<<16))
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return readCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	case ".lz4":
		return readCloser{Reader: lz4.NewReader(fh), closers: []io.Closer{fh}}, nil
	}
	return fh, nil
}

type writeCloser struct {
	io.Writer
	flush func() error
	file  *os.File
}

func (w writeCloser) Close() error {
	err := w.flush()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Create opens path for writing, compressing .gz and .lz4. Missing parent
// directories are created.
func Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriterSize(fh, 1<<16)
	switch ext(path) {
	case ".gz":
		gw := gzip.NewWriter(bw)
		return writeCloser{Writer: gw, file: fh, flush: func() error {
			if err := gw.Close(); err != nil {
				return err
			}
			return bw.Flush()
		}}, nil
	case ".lz4":
		zw := lz4.NewWriter(bw)
		return writeCloser{Writer: zw, file: fh, flush: func() error {
			if err := zw.Close(); err != nil {
				return err
			}
			return bw.Flush()
		}}, nil
	}
	return writeCloser{Writer: bw, file: fh, flush: bw.Flush}, nil
}

// CheckOutput fails when path is a directory, or an existing file and
// overwrite is false. An empty path is accepted (output disabled).
func CheckOutput(path string, overwrite bool) error {
	if path == "" {
		return nil
	}
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrOutputIsDir)
	}
	if !overwrite {
		return fmt.Errorf("%s: %w", path, ErrOutputExists)
	}
	return nil
}

func ext(path string) string { return strings.ToLower(filepath.Ext(path)) }
