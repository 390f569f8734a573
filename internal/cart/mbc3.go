package cart

// MBC3 implements ROM/RAM banking (RTC not implemented here).
// Banking behavior:
// - 0000-1FFF: RAM enable (0x0A in low nibble)
// - 2000-3FFF: ROM bank low 7 bits (0 maps to 1)
// - 4000-5FFF: RAM bank (0-3) or RTC reg select (08-0C); RTC selects read as open bus
// - 6000-7FFF: Latch clock (ignored without RTC)
// - A000-BFFF: External RAM access when enabled and RAM present
// ROM: bank 0 fixed at 0000-3FFF; switchable 4000-7FFF uses bank (1..127)
type MBC3 struct {
	rom ROM
	ram extRAM

	ramEnabled bool
	romBank    byte // 7 bits (1..127)
	ramBank    byte // 0..3, or an RTC register select
}

func NewMBC3(rom ROM, ramSize int) *MBC3 {
	return &MBC3{rom: rom, ram: newExtRAM(ramSize), romBank: 1}
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return romByte(m.rom, 0, addr)
	case addr < 0x8000:
		return romByte(m.rom, int(m.romBank), addr-0x4000)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || m.ramBank > 0x03 {
			return 0xFF
		}
		return m.ram.read(int(m.ramBank), addr)
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		v := value & 0x7F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr < 0x6000:
		m.ramBank = value
	case addr < 0x8000:
		// latch clock: ignored without RTC
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled && m.ramBank <= 0x03 {
			m.ram.write(int(m.ramBank), addr, value)
		}
	}
}

func (m *MBC3) battery() *extRAM { return &m.ram }
