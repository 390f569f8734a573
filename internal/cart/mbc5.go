package cart

// MBC5 supports up to 8MB ROM and 128KB RAM, simple banking.
type MBC5 struct {
	rom ROM
	ram extRAM

	romBank    uint16 // 9 bits (0..511)
	ramBank    byte   // 0..15
	ramEnabled bool
}

func NewMBC5(rom ROM, ramSize int) *MBC5 {
	return &MBC5{rom: rom, ram: newExtRAM(ramSize), romBank: 1}
}

func (m *MBC5) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return romByte(m.rom, 0, addr)
	case addr < 0x8000:
		// unlike MBC1/3, bank 0 can be mapped here
		return romByte(m.rom, int(m.romBank), addr-0x4000)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram.read(int(m.ramBank&0x0F), addr)
	default:
		return 0xFF
	}
}

func (m *MBC5) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x3000:
		// low 8 bits of ROM bank
		m.romBank = (m.romBank & 0x100) | uint16(value)
	case addr < 0x4000:
		// high bit of ROM bank (bit8)
		m.romBank = (m.romBank & 0x0FF) | uint16(value&0x01)<<8
	case addr < 0x6000:
		// RAM bank number 0..15
		m.ramBank = value & 0x0F
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled {
			m.ram.write(int(m.ramBank), addr, value)
		}
	}
}

func (m *MBC5) battery() *extRAM { return &m.ram }
