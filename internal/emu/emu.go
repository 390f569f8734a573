// Package emu assembles the runtime: ROM storage and bank cache, cartridge,
// emulation core, scaler, panel driver and display link, all on simulated
// board hardware.
package emu

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/clintonium-119/gb-rp2350/internal/cart"
	"github.com/clintonium-119/gb-rp2350/internal/config"
	"github.com/clintonium-119/gb-rp2350/internal/input"
	"github.com/clintonium-119/gb-rp2350/internal/panel"
	"github.com/clintonium-119/gb-rp2350/internal/rom"
	"github.com/clintonium-119/gb-rp2350/internal/scaler"
	"github.com/clintonium-119/gb-rp2350/internal/source"
	"github.com/clintonium-119/gb-rp2350/internal/storage"
)

var (
	ErrNoVolume         = errors.New("emu: no volume to load the ROM from")
	ErrCompressedBanked = errors.New("emu: compressed images need rom.location ram, psram or flash")
)

type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

// Stats are frame-level counters for logs and tests.
type Stats struct {
	Frames    int
	LastFrame time.Duration
	Cache     rom.Stats
}

type Machine struct {
	cfg Config
	log *slog.Logger
	hw  *board

	panel  *panel.Panel
	screen *source.LineScreen
	core   source.Core
	pixels *scaler.Scaler[uint16]

	// cartridge
	cart    cart.Cartridge
	header  *cart.Header
	store   *rom.Store // nil unless the ROM is read from the SD card
	closers []io.Closer

	stats Stats
	next  time.Time
}

// New powers up the board and initializes the panel. The core shows a test
// pattern until a cartridge is loaded.
func New(cfg Config) (*Machine, error) {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if err := cfg.Board.Validate(); err != nil {
		return nil, err
	}
	m := &Machine{cfg: cfg, log: cfg.Log, hw: newBoard(cfg)}
	c := cfg.Board
	w, h := c.Native()
	m.panel = panel.New(m.hw.link, panel.Options{
		Width:        w,
		Height:       h,
		Rotation:     c.Display.Rotation,
		Mirrored:     c.Display.Mirrored,
		InvertColors: c.Display.InvertColors,
		Delay:        cfg.Delay,
	}, m.log)
	if err := m.panel.Init(); err != nil {
		m.hw.close()
		return nil, fmt.Errorf("emu: panel init: %w", err)
	}
	if err := m.panel.Clear(0x0000); err != nil {
		m.hw.close()
		return nil, fmt.Errorf("emu: panel clear: %w", err)
	}
	m.screen = source.NewLineScreen()
	m.setCore(source.NewPattern(m.screen))
	return m, nil
}

func (m *Machine) setCore(core source.Core) {
	r := m.cfg.Board.Render
	m.core = core
	h := source.NewHandler(core, m.screen, input.NewMapper(m.hw.pins()))
	m.pixels = scaler.New[uint16](h, source.Width, source.Height, r.Width, r.Height)
}

// LoadCartridge opens the ROM at path on the volume from wherever the
// board is configured to keep it and starts the ROM viewer core on it.
func (m *Machine) LoadCartridge(path string) error {
	if m.cfg.Volume == nil {
		return ErrNoVolume
	}
	m.closeCartridge()
	var (
		r   cart.ROM
		err error
	)
	switch loc := m.cfg.Board.ROM.Location; loc {
	case config.LocationSD:
		r, err = m.openBanked(path)
	case config.LocationFlash:
		r, err = m.openFlash(path)
	default: // ram, psram
		var img storage.Region
		img, err = storage.LoadImage(m.cfg.Volume, path)
		if err == nil {
			r = rom.NewStatic(img)
			m.log.Info("rom loaded into memory", "location", loc, "bytes", len(img))
		}
	}
	if err != nil {
		return fmt.Errorf("emu: load %s: %w", path, err)
	}

	m.cart, m.header = cart.NewCartridge(r)
	if h := m.header; h != nil {
		m.log.Info("cartridge", "title", h.Title, "type", h.CartTypeStr, "banks", h.ROMBanks, "ram", h.RAMSizeBytes, "battery", h.Battery)
		if !h.ChecksumOK {
			m.log.Warn("cartridge header checksum mismatch", "title", h.Title)
		}
	}
	m.setCore(source.NewROMViewer(m.screen, m.cart, r.Banks()))
	return nil
}

func (m *Machine) openBanked(path string) (cart.ROM, error) {
	packed, err := storage.IsCompressedFile(m.cfg.Volume, path)
	if err != nil {
		return nil, err
	}
	if packed {
		return nil, ErrCompressedBanked
	}
	f, err := storage.OpenFile(m.cfg.Volume, path)
	if err != nil {
		return nil, err
	}
	s, err := rom.NewStore(f, m.cfg.Board.ROM.CacheBanks, m.log)
	if err != nil {
		f.Close()
		return nil, err
	}
	m.closers = append(m.closers, f)
	m.store = s
	m.log.Info("rom opened", "path", path, "banks", s.Banks(), "cache", m.cfg.Board.ROM.CacheBanks)
	return s, nil
}

func (m *Machine) openFlash(path string) (cart.ROM, error) {
	img, err := storage.LoadImage(m.cfg.Volume, path)
	if err != nil {
		return nil, err
	}
	fl, err := storage.OpenFlash(m.cfg.Volume, FlashImage, FlashSize, m.log)
	if err != nil {
		return nil, err
	}
	last := -1
	err = fl.Install(img, func(pct int) {
		if pct/25 != last/25 {
			m.log.Info("programming flash", "percent", pct)
		}
		last = pct
	})
	if err != nil {
		fl.Close()
		return nil, err
	}
	m.closers = append(m.closers, fl)
	return rom.NewStatic(fl.Bytes()[:len(img)]), nil
}

func (m *Machine) closeCartridge() {
	for _, c := range m.closers {
		c.Close()
	}
	m.closers = nil
	m.cart, m.header, m.store = nil, nil, nil
}

// Header of the loaded cartridge, or nil.
func (m *Machine) Header() *cart.Header { return m.header }

// Title is the name battery RAM is saved under.
func (m *Machine) Title() string {
	if m.header == nil {
		return ""
	}
	return m.header.Title
}

// Battery reports whether the cartridge keeps RAM across power cycles.
func (m *Machine) Battery() bool { return m.header != nil && m.header.Battery }

// LoadBattery restores cartridge RAM saved under the cartridge title.
func (m *Machine) LoadBattery(s cart.SaveStore) error {
	if !m.Battery() {
		return nil
	}
	return cart.Restore(m.cart, m.Title(), s)
}

// SaveBattery persists cartridge RAM written since the last save.
func (m *Machine) SaveBattery(s cart.SaveStore) (int, error) {
	if !m.Battery() {
		return 0, nil
	}
	return cart.Persist(m.cart, m.Title(), s)
}

// StepFrame renders one frame through the scaler onto the panel and waits
// for the bus to drain.
func (m *Machine) StepFrame() error {
	start := time.Now()
	x0, y0, x1, y1 := m.cfg.Board.Window()
	if err := m.panel.DrawRawIter(x0, y0, x1, y1, m.pixels.All()); err != nil {
		return fmt.Errorf("emu: frame %d: %w", m.stats.Frames, err)
	}
	m.hw.settle()
	m.stats.Frames++
	m.stats.LastFrame = time.Since(start)
	if m.store != nil {
		m.stats.Cache = m.store.Stats()
	}
	m.log.Debug("frame", "n", m.stats.Frames, "elapsed", m.stats.LastFrame)
	if m.cfg.LimitFPS {
		m.throttle()
	}
	return nil
}

func (m *Machine) throttle() {
	period := time.Second / time.Duration(m.cfg.Board.Render.FrameRate)
	now := time.Now()
	if m.next.IsZero() || now.Sub(m.next) > period {
		m.next = now
	}
	m.next = m.next.Add(period)
	time.Sleep(time.Until(m.next))
}

// Framebuffer is what the panel shows, as RGBA.
func (m *Machine) Framebuffer() (pix []byte, w, h int) { return m.hw.ctl.RGBA() }

// Pixel reads the panel at (x, y) as RGB565.
func (m *Machine) Pixel(x, y int) uint16 { return m.hw.ctl.Pixel(x, y) }

func (m *Machine) Stats() Stats { return m.stats }

// CachedBanks lists the ROM banks held in the cache, least recently used
// first.
func (m *Machine) CachedBanks() []int {
	if m.store == nil {
		return nil
	}
	return m.store.Cached()
}

// SetButtons drives the button pins; a pressed button pulls its pin low.
func (m *Machine) SetButtons(b Buttons) {
	state := [8]bool{
		input.A: b.A, input.B: b.B, input.Select: b.Select, input.Start: b.Start,
		input.Up: b.Up, input.Down: b.Down, input.Left: b.Left, input.Right: b.Right,
	}
	for i, pressed := range state {
		m.hw.buttons[i].Set(!pressed)
	}
}

func (m *Machine) Close() error {
	m.closeCartridge()
	m.hw.close()
	return nil
}
