package storage

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Compressed reports whether data starts with a zstd frame.
func Compressed(data []byte) bool { return bytes.HasPrefix(data, zstdMagic) }

// LoadImage reads a ROM image into memory, decompressing zstd images.
func LoadImage(fs afero.Fs, name string) (Region, error) {
	raw, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("storage: read image: %w", err)
	}
	if !Compressed(raw) {
		return Region(raw), nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("storage: zstd: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: decompress %s: %w", name, err)
	}
	return Region(out), nil
}

// IsCompressedFile peeks at the first bytes of name.
func IsCompressedFile(fs afero.Fs, name string) (bool, error) {
	f, err := fs.Open(name)
	if err != nil {
		return false, fmt.Errorf("storage: open image: %w", err)
	}
	defer f.Close()
	var hdr [4]byte
	n, _ := f.Read(hdr[:])
	return Compressed(hdr[:n]), nil
}

// CompressImage encodes data as a zstd image.
func CompressImage(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, fmt.Errorf("storage: zstd: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}
