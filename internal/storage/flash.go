package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/clintonium-119/gb-rp2350/internal/fault"
)

// SectorSize is the flash erase unit.
const SectorSize = 4096

var ErrFlashRange = errors.New("storage: flash sector out of range")

// Flash is a sector-erasable flash block. Reads go straight to the mapped
// contents; writes erase a whole sector and program it. When backed by a
// file the image survives restarts.
type Flash struct {
	mem  []byte
	file afero.File
	log  *slog.Logger

	// fault, when set, is consulted before each sector write.
	fault func(sector int) error
}

// NewFlash returns an erased in-memory flash block of at least size bytes.
func NewFlash(size int, log *slog.Logger) *Flash {
	if log == nil {
		log = slog.Default()
	}
	n := (size + SectorSize - 1) / SectorSize * SectorSize
	return &Flash{mem: bytes.Repeat([]byte{0xFF}, n), log: log}
}

// OpenFlash maps the image file name on fs, creating an erased one if it
// does not exist.
func OpenFlash(fs afero.Fs, name string, size int, log *slog.Logger) (*Flash, error) {
	fl := NewFlash(size, log)
	f, err := fs.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: open flash image: %w", err)
	}
	n, err := f.ReadAt(fl.mem, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("storage: read flash image: %w", err)
	}
	if n < len(fl.mem) {
		// pad a new or short image to its erased size
		if _, err := f.WriteAt(fl.mem[n:], int64(n)); err != nil {
			f.Close()
			return nil, fmt.Errorf("storage: extend flash image: %w", err)
		}
	}
	fl.file = f
	return fl, nil
}

func (f *Flash) Sectors() int { return len(f.mem) / SectorSize }

// Bytes exposes the mapped flash contents.
func (f *Flash) Bytes() Region { return Region(f.mem) }

// EraseProgram erases sector and programs data into it. data may be
// shorter than a sector; the remainder stays erased. Write failures are
// transient.
func (f *Flash) EraseProgram(sector int, data []byte) error {
	if sector < 0 || sector >= f.Sectors() || len(data) > SectorSize {
		return fmt.Errorf("%w: sector %d, %d bytes", ErrFlashRange, sector, len(data))
	}
	if f.fault != nil {
		if err := f.fault(sector); err != nil {
			return fault.Transient(err)
		}
	}
	s := f.mem[sector*SectorSize : (sector+1)*SectorSize]
	for i := range s {
		s[i] = 0xFF
	}
	for i, b := range data {
		s[i] &= b
	}
	if f.file != nil {
		if _, err := f.file.WriteAt(s, int64(sector)*SectorSize); err != nil {
			return fault.Transient(fmt.Errorf("storage: write sector %d: %w", sector, err))
		}
	}
	return nil
}

// Install programs image from the first sector, skipping sectors that
// already hold the right bytes. Each sector is retried up to
// fault.DefaultAttempts times. progress, when set, receives the completed
// percentage after every sector.
func (f *Flash) Install(image []byte, progress func(pct int)) error {
	sectors := (len(image) + SectorSize - 1) / SectorSize
	if sectors > f.Sectors() {
		return fmt.Errorf("%w: image needs %d sectors, flash has %d", ErrFlashRange, sectors, f.Sectors())
	}
	written := 0
	for i := 0; i < sectors; i++ {
		chunk := image[i*SectorSize : min((i+1)*SectorSize, len(image))]
		cur := f.mem[i*SectorSize : i*SectorSize+len(chunk)]
		if !bytes.Equal(cur, chunk) {
			err := fault.Retry(fault.DefaultAttempts, func() error {
				return f.EraseProgram(i, chunk)
			}, func(attempt int, err error) {
				f.log.Warn("flash write failed, retrying", "sector", i, "attempt", attempt, "err", err)
			})
			if err != nil {
				return fmt.Errorf("storage: install sector %d: %w", i, err)
			}
			written++
		}
		if progress != nil {
			progress((i + 1) * 100 / sectors)
		}
	}
	f.log.Info("flash image installed", "bytes", len(image), "sectors", sectors, "written", written)
	return nil
}

func (f *Flash) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}
