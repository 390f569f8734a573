package emu

import (
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/clintonium-119/gb-rp2350/internal/config"
	"github.com/clintonium-119/gb-rp2350/internal/hostsim"
)

// Config contains settings that affect how the machine is assembled.
type Config struct {
	Board    config.Config
	Volume   afero.Fs    // SD card; ROMs, flash image and saves live here
	Bridge   hostsim.Bus // optional second listener on the display bus
	LimitFPS bool        // throttle to Board.Render.FrameRate
	// Delay waits out panel power-up steps; nil uses time.Sleep.
	Delay func(time.Duration)
	Log   *slog.Logger
}

// FlashImage is the file on the volume standing in for the on-board flash.
const FlashImage = "flash.bin"

// FlashSize is the flash space reserved for ROM images.
const FlashSize = 8 << 20
