// Package storage provides the slow backing stores the ROM is read from:
// a file on the SD card volume, a flat memory region (RAM or PSRAM) and
// the on-board flash.
package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// BankSize is the size of one cartridge ROM bank.
const BankSize = 0x4000

var ErrBankRange = errors.New("storage: bank out of range")

// BankReader fills dst with the contents of bank index.
type BankReader interface {
	ReadBank(index int, dst []byte) error
	Banks() int
}

// File reads banks from an open ROM file on a volume.
type File struct {
	f     afero.File
	size  int64
	banks int
}

// OpenFile opens name on fs for bank reads.
func OpenFile(fs afero.Fs, name string) (*File, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("storage: open rom: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: stat rom: %w", err)
	}
	if st.IsDir() {
		f.Close()
		return nil, fmt.Errorf("storage: %s is a directory", name)
	}
	size := st.Size()
	return &File{f: f, size: size, banks: int((size + BankSize - 1) / BankSize)}, nil
}

func (r *File) Banks() int  { return r.banks }
func (r *File) Size() int64 { return r.size }

// ReadBank reads one bank. A short final bank is padded with 0xFF, the
// value of unprogrammed cartridge ROM.
func (r *File) ReadBank(index int, dst []byte) error {
	if index < 0 || index >= r.banks {
		return fmt.Errorf("%w: %d of %d", ErrBankRange, index, r.banks)
	}
	n, err := r.f.ReadAt(dst, int64(index)*BankSize)
	if err != nil && !(errors.Is(err, io.EOF) && n > 0) {
		return fmt.Errorf("storage: read bank %d: %w", index, err)
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0xFF
	}
	return nil
}

func (r *File) Close() error { return r.f.Close() }

// Region is a ROM held entirely in addressable memory.
type Region []byte

func (r Region) Banks() int { return (len(r) + BankSize - 1) / BankSize }

func (r Region) ReadBank(index int, dst []byte) error {
	if index < 0 || index >= r.Banks() {
		return fmt.Errorf("%w: %d of %d", ErrBankRange, index, r.Banks())
	}
	n := copy(dst, r[index*BankSize:])
	for i := n; i < len(dst); i++ {
		dst[i] = 0xFF
	}
	return nil
}
