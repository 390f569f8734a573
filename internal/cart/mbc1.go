package cart

// MBC1 implements basic MBC1 ROM/RAM banking.
// Supports ROM banking up to 2MB and RAM up to 32KB.
type MBC1 struct {
	rom ROM
	ram extRAM

	romBankLow5       byte // lower 5 bits of ROM bank number (0->1 remapped)
	ramBankOrRomHigh2 byte // either RAM bank (mode1) or ROM bank high bits (mode0)
	ramEnabled        bool
	modeSelect        byte // 0: ROM banking (default), 1: RAM banking
}

func NewMBC1(rom ROM, ramSize int) *MBC1 {
	// default to bank 1 for switchable area
	return &MBC1{rom: rom, ram: newExtRAM(ramSize), romBankLow5: 1}
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if m.modeSelect == 0 {
			return romByte(m.rom, 0, addr)
		}
		// mode 1: apply high bits to bank 0 region
		return romByte(m.rom, int(m.ramBankOrRomHigh2&0x03)<<5, addr)
	case addr < 0x8000:
		return romByte(m.rom, int(m.effectiveROMBank()), addr-0x4000)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram.read(m.ramBank(), addr)
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		// RAM enable: low 4 bits must be 0x0A
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		// ROM bank low 5 bits (0 maps to 1)
		m.romBankLow5 = value & 0x1F
		if m.romBankLow5 == 0 {
			m.romBankLow5 = 1
		}
	case addr < 0x6000:
		m.ramBankOrRomHigh2 = value & 0x03
	case addr < 0x8000:
		m.modeSelect = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled {
			m.ram.write(m.ramBank(), addr, value)
		}
	}
}

func (m *MBC1) ramBank() int {
	if m.modeSelect == 1 {
		return int(m.ramBankOrRomHigh2 & 0x03)
	}
	return 0
}

func (m *MBC1) effectiveROMBank() byte {
	// low5 is never zero, so banks 0x00/0x20/0x40/0x60 read as the next bank up
	return m.romBankLow5 | (m.ramBankOrRomHigh2&0x03)<<5
}

func (m *MBC1) battery() *extRAM { return &m.ram }
