//go:build tinygo && baremetal

package hal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"machine"

	"tinygo.org/x/drivers/sdcard"
	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/fatfs"
)

// sdStorage reads assets from a FAT formatted SD card.
type sdStorage struct {
	sd  *sdcard.Device
	fat *fatfs.FATFS
}

func mountSD() (*sdStorage, error) {
	sd := sdcard.New(machine.SPI0, sdSCK, sdSDO, sdSDI, sdCS)
	if err := sd.Configure(); err != nil {
		return nil, fmt.Errorf("configure: %w", err)
	}

	fat := fatfs.New(&sd).Configure(&fatfs.Config{SectorSize: fatfs.SectorSize})
	if err := fat.Mount(); err != nil {
		// Do not auto-format removable media.
		return nil, fmt.Errorf("mount: %w", err)
	}
	return &sdStorage{sd: &sd, fat: fat}, nil
}

func (s *sdStorage) Open(name string) (File, error) {
	if s == nil || s.fat == nil {
		return nil, errors.New("sd: not ready")
	}
	f, err := s.fat.OpenFile(name, os.O_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("sd: open %s: %w", name, err)
	}
	return &sdFile{f: f}, nil
}

type sdFile struct {
	f   tinyfs.File
	pos int64
}

func (f *sdFile) Read(p []byte) (int, error) {
	n, err := f.f.Read(p)
	f.pos += int64(n)
	return n, err
}

func (f *sdFile) Seek(offset int64, whence int) (int64, error) {
	pos, err := f.f.Seek(offset, whence)
	if err != nil {
		return f.pos, err
	}
	f.pos = pos
	return pos, nil
}

func (f *sdFile) Position() int64 { return f.pos }

func (f *sdFile) Close() error { return f.f.Close() }

var _ io.ReadSeeker = (*sdFile)(nil)
