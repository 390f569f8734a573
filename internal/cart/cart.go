package cart

import "fmt"

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

// ROM is cartridge ROM as the mappers see it: 16 KiB banks read one byte
// at a time. Bank 0 is always cheap; other banks may come from a cache.
type ROM interface {
	ByteAt(bank, offset int) byte
	Banks() int
}

// Cartridge defines the minimal interface the core needs for ROM/RAM banking.
// Implementations can be ROM-only or MBC variants. Addresses are CPU addresses.
type Cartridge interface {
	// Read returns a byte for ROM (0x0000–0x7FFF) and external RAM (0xA000–0xBFFF).
	Read(addr uint16) byte
	// Write handles MBC control writes (0x0000–0x7FFF) and external RAM writes (0xA000–0xBFFF).
	Write(addr uint16, value byte)
}

// BatteryBacked is implemented by cartridges with external RAM.
type BatteryBacked interface {
	battery() *extRAM
}

// SaveStore keeps battery RAM banks between power cycles.
type SaveStore interface {
	Save(title string, bank int, data []byte) error
	Load(title string, bank int, out []byte) error
}

// NewCartridge picks an implementation based on the ROM header.
func NewCartridge(rom ROM) (Cartridge, *Header) {
	h, err := ReadHeader(rom)
	if err != nil {
		return NewROMOnly(rom), nil
	}
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom), h
	case 0x01, 0x02, 0x03: // MBC1 variants
		return NewMBC1(rom, h.RAMSizeBytes), h
	case 0x0F, 0x10, 0x11, 0x12, 0x13: // MBC3 variants (RTC not implemented here)
		return NewMBC3(rom, h.RAMSizeBytes), h
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E: // MBC5 variants
		return NewMBC5(rom, h.RAMSizeBytes), h
	default:
		// Fallback to ROM-only for unknown types to allow some homebrew/tests to run
		return NewROMOnly(rom), h
	}
}

// Restore loads every RAM bank of c saved under title. Banks never saved
// keep their power-on contents.
func Restore(c Cartridge, title string, s SaveStore) error {
	bb, ok := c.(BatteryBacked)
	if !ok {
		return nil
	}
	r := bb.battery()
	for i := range r.banks() {
		if err := s.Load(title, i, r.bank(i)); err != nil {
			return fmt.Errorf("cart: restore ram bank %d: %w", i, err)
		}
	}
	clear(r.dirty)
	return nil
}

// Persist saves the RAM banks written since the last Restore or Persist
// and reports how many were written.
func Persist(c Cartridge, title string, s SaveStore) (int, error) {
	bb, ok := c.(BatteryBacked)
	if !ok {
		return 0, nil
	}
	r := bb.battery()
	n := 0
	for i, d := range r.dirty {
		if !d {
			continue
		}
		if err := s.Save(title, i, r.bank(i)); err != nil {
			return n, fmt.Errorf("cart: persist ram bank %d: %w", i, err)
		}
		r.dirty[i] = false
		n++
	}
	return n, nil
}

// extRAM is switchable external RAM in 8 KiB banks.
type extRAM struct {
	data  []byte
	dirty []bool
}

func newExtRAM(size int) extRAM {
	if size <= 0 {
		return extRAM{}
	}
	n := (size + ramBankSize - 1) / ramBankSize
	return extRAM{data: make([]byte, size), dirty: make([]bool, n)}
}

func (r *extRAM) banks() int { return len(r.dirty) }

func (r *extRAM) bank(i int) []byte {
	return r.data[i*ramBankSize : min((i+1)*ramBankSize, len(r.data))]
}

func (r *extRAM) read(bank int, addr uint16) byte {
	off := bank*ramBankSize + int(addr-0xA000)
	if off >= 0 && off < len(r.data) {
		return r.data[off]
	}
	return 0xFF
}

func (r *extRAM) write(bank int, addr uint16, value byte) {
	off := bank*ramBankSize + int(addr-0xA000)
	if off >= 0 && off < len(r.data) {
		r.data[off] = value
		r.dirty[off/ramBankSize] = true
	}
}

// romByte reads offset of bank, wrapping bank numbers past the end of the
// ROM the way the address lines of a real cartridge do.
func romByte(rom ROM, bank int, offset uint16) byte {
	n := rom.Banks()
	if n == 0 {
		return 0xFF
	}
	return rom.ByteAt(bank%n, int(offset))
}
