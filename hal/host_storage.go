//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// dirStorage serves assets from a host directory standing in for the SD card.
type dirStorage struct {
	dir string
}

func (s *dirStorage) Open(name string) (File, error) {
	clean := filepath.Clean("/" + strings.TrimSpace(name))
	if clean == "/" {
		return nil, fmt.Errorf("storage: open %q: %w", name, os.ErrInvalid)
	}
	f, err := os.Open(filepath.Join(s.dir, clean))
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return &hostFile{f: f}, nil
}

type hostFile struct {
	f   *os.File
	pos int64
}

func (f *hostFile) Read(p []byte) (int, error) {
	n, err := f.f.Read(p)
	f.pos += int64(n)
	return n, err
}

func (f *hostFile) Seek(offset int64, whence int) (int64, error) {
	pos, err := f.f.Seek(offset, whence)
	if err != nil {
		return f.pos, err
	}
	f.pos = pos
	return pos, nil
}

func (f *hostFile) Position() int64 { return f.pos }

func (f *hostFile) Close() error { return f.f.Close() }

var _ io.ReadSeeker = (*hostFile)(nil)
