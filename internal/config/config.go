// Package config holds the build-time settings of the firmware: panel
// geometry and bus, emulated screen size, where the ROM lives and how much
// of it is cached, and where saves go.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/clintonium-119/gb-rp2350/internal/pio"
)

var ErrUnsupported = errors.New("config: unsupported value")

// Config is the complete runtime configuration.
type Config struct {
	Display DisplayConfig `yaml:"display"`
	Render  RenderConfig  `yaml:"render"`
	ROM     ROMConfig     `yaml:"rom"`
	Saves   SavesConfig   `yaml:"saves"`
}

type DisplayConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	Rotation     int     `yaml:"rotation"` // 0, 90, 180, 270
	Mirrored     bool    `yaml:"mirrored"`
	InvertColors bool    `yaml:"invert_colors"`
	Interface    string  `yaml:"interface"`     // spi, parallel
	ClockDivider float64 `yaml:"clock_divider"` // bus state machine divisor
}

// RenderConfig places the scaled emulator screen on the display. X and Y
// default to centering it.
type RenderConfig struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	X         *int `yaml:"x"`
	Y         *int `yaml:"y"`
	FrameRate int  `yaml:"frame_rate"`
}

type ROMConfig struct {
	Location   string `yaml:"location"` // sd, ram, flash, psram
	Path       string `yaml:"path"`
	CacheBanks int    `yaml:"cache_banks"`
}

type SavesConfig struct {
	Root    string `yaml:"root"`
	Retries int    `yaml:"retries"`
}

const (
	InterfaceSPI      = "spi"
	InterfaceParallel = "parallel"

	LocationSD    = "sd"
	LocationRAM   = "ram"
	LocationFlash = "flash"
	LocationPSRAM = "psram"

	MaxCacheBanks = 64
)

// Default returns the configuration of the reference board: a 320x240 SPI
// panel showing the 160x144 screen, ROM on the SD card.
func Default() Config {
	var c Config
	c.Defaults()
	return c
}

// Defaults fills unset fields.
func (c *Config) Defaults() {
	if c.Display.Width == 0 {
		c.Display.Width = 320
	}
	if c.Display.Height == 0 {
		c.Display.Height = 240
	}
	if c.Display.Interface == "" {
		c.Display.Interface = InterfaceSPI
	}
	if c.Display.ClockDivider == 0 {
		c.Display.ClockDivider = 3
	}
	if c.Render.Width == 0 {
		c.Render.Width = 160
	}
	if c.Render.Height == 0 {
		c.Render.Height = 144
	}
	if c.Render.FrameRate == 0 {
		c.Render.FrameRate = 30
	}
	if c.ROM.Location == "" {
		c.ROM.Location = LocationSD
	}
	if c.ROM.CacheBanks == 0 {
		c.ROM.CacheBanks = 4
	}
	if c.Saves.Root == "" {
		c.Saves.Root = "/"
	}
	if c.Saves.Retries == 0 {
		c.Saves.Retries = 4
	}
}

// Validate rejects values the firmware cannot be built with.
func (c *Config) Validate() error {
	unsupported := func(field string, v any) error {
		return fmt.Errorf("%w: %s = %v", ErrUnsupported, field, v)
	}
	switch {
	case c.Display.Width <= 0:
		return unsupported("display.width", c.Display.Width)
	case c.Display.Height <= 0:
		return unsupported("display.height", c.Display.Height)
	case c.Render.Width <= 0:
		return unsupported("render.width", c.Render.Width)
	case c.Render.Height <= 0:
		return unsupported("render.height", c.Render.Height)
	case c.Render.FrameRate <= 0:
		return unsupported("render.frame_rate", c.Render.FrameRate)
	case c.ROM.CacheBanks < 1 || c.ROM.CacheBanks > MaxCacheBanks:
		return unsupported("rom.cache_banks", c.ROM.CacheBanks)
	case c.Saves.Retries < 1:
		return unsupported("saves.retries", c.Saves.Retries)
	case c.Display.ClockDivider < 1 || c.Display.ClockDivider >= 65536:
		return unsupported("display.clock_divider", c.Display.ClockDivider)
	}
	if x0, y0, x1, y1 := c.Window(); x0 < 0 || y0 < 0 || x1 >= c.Display.Width || y1 >= c.Display.Height {
		return unsupported("render window", fmt.Sprintf("(%d,%d)-(%d,%d) on %dx%d", x0, y0, x1, y1, c.Display.Width, c.Display.Height))
	}
	switch c.Display.Rotation {
	case 0, 90, 180, 270:
	default:
		return unsupported("display.rotation", c.Display.Rotation)
	}
	switch c.Display.Interface {
	case InterfaceSPI, InterfaceParallel:
	default:
		return unsupported("display.interface", c.Display.Interface)
	}
	switch c.ROM.Location {
	case LocationSD, LocationRAM, LocationFlash, LocationPSRAM:
	default:
		return unsupported("rom.location", c.ROM.Location)
	}
	return nil
}

// Window is the inclusive display area the emulator screen is drawn to.
func (c *Config) Window() (x0, y0, x1, y1 int) {
	x0 = (c.Display.Width - c.Render.Width) / 2
	y0 = (c.Display.Height - c.Render.Height) / 2
	if c.Render.X != nil {
		x0 = *c.Render.X
	}
	if c.Render.Y != nil {
		y0 = *c.Render.Y
	}
	return x0, y0, x0 + c.Render.Width - 1, y0 + c.Render.Height - 1
}

// Native is the panel size before rotation.
func (c *Config) Native() (w, h int) {
	if c.Display.Rotation == 90 || c.Display.Rotation == 270 {
		return c.Display.Height, c.Display.Width
	}
	return c.Display.Width, c.Display.Height
}

// Divider converts the configured clock divisor to the state machine's
// 16.8 fixed-point form.
func (c *Config) Divider() pio.ClockDivider {
	whole, frac := math.Modf(c.Display.ClockDivider)
	return pio.ClockDivider{Int: uint16(whole), Frac: uint8(frac * 256)}
}

// Load reads a YAML configuration from name on fsys. A missing file yields
// the defaults. The result is validated.
func Load(fsys afero.Fs, name string) (Config, error) {
	var c Config
	data, err := afero.ReadFile(fsys, name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("config: read %s: %w", name, err)
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", name, err)
		}
	}
	c.Defaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
