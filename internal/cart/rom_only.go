package cart

// ROMOnly implements a simple cartridge without MBC or external RAM.
type ROMOnly struct {
	rom ROM
}

func NewROMOnly(rom ROM) *ROMOnly {
	return &ROMOnly{rom: rom}
}

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return romByte(c.rom, 0, addr)
	case addr < 0x8000:
		return romByte(c.rom, 1, addr-0x4000)
	default: // no external RAM
		return 0xFF
	}
}

func (c *ROMOnly) Write(addr uint16, value byte) {
	// ROM-only: writes are ignored (including 0x0000–0x7FFF and 0xA000–0xBFFF)
}
