package main

import (
	"errors"
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/clintonium-119/gb-rp2350/internal/config"
	"github.com/clintonium-119/gb-rp2350/internal/emu"
	"github.com/clintonium-119/gb-rp2350/internal/fault"
	"github.com/clintonium-119/gb-rp2350/internal/hostsim"
	"github.com/clintonium-119/gb-rp2350/internal/saves"
	"github.com/clintonium-119/gb-rp2350/internal/ui"
)

type CLIFlags struct {
	Config  string
	SDRoot  string // directory standing in for the SD card
	ROMPath string // on the SD card; overrides rom.path
	Scale   int
	Title   string
	Verbose bool
	SaveRAM bool

	// display bridge
	Serial    string
	Baud      int
	ListPorts bool

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer CRC32 hex (e.g., "1a2b3c4d")
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.Config, "config", "board.yaml", "board configuration (YAML)")
	flag.StringVar(&f.SDRoot, "sd", ".", "directory mounted as the SD card")
	flag.StringVar(&f.ROMPath, "rom", "", "ROM path on the SD card (.gb, .gb.zst)")
	flag.IntVar(&f.Scale, "scale", 2, "window scale")
	flag.StringVar(&f.Title, "title", "gbstream", "window title")
	flag.BoolVar(&f.Verbose, "v", false, "debug logging")
	flag.BoolVar(&f.SaveRAM, "save", true, "restore battery RAM on start and persist it on exit")

	flag.StringVar(&f.Serial, "serial", "", "mirror display bus traffic to this serial port")
	flag.IntVar(&f.Baud, "baud", 921600, "serial bridge baud rate")
	flag.BoolVar(&f.ListPorts, "ports", false, "list serial ports and exit")

	// headless options
	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 60, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last panel image to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert panel image CRC32 (hex)")
	flag.Parse()
	return f
}

func runHeadless(log *slog.Logger, m *emu.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := m.StepFrame(); err != nil {
			return err
		}
	}
	dur := time.Since(start)

	fb, w, h := m.Framebuffer()
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()
	st := m.Stats()

	log.Info("headless run", "frames", frames, "elapsed", dur.Truncate(time.Millisecond),
		"fps", fmt.Sprintf("%.2f", fps), "fb_crc32", fmt.Sprintf("%08x", crc),
		"cache_hits", st.Cache.Hits, "cache_misses", st.Cache.Misses)

	if pngPath != "" {
		if err := saveFramePNG(fb, w, h, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Info("wrote panel image", "path", pngPath)
	}

	if expectCRC != "" {
		// normalize expected hex (allow with/without 0x, upper/lowercase)
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func main() {
	f := parseFlags()
	level := slog.LevelInfo
	if f.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if err := run(f, log); err != nil {
		var fatal *fault.Fatal
		if errors.As(err, &fatal) {
			log.Error("halted", "err", fatal.Err)
		} else {
			log.Error("exit", "err", err)
		}
		os.Exit(1)
	}
}

func run(f CLIFlags, log *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fault.Recover(r)
		}
	}()

	if f.ListPorts {
		ports, err := hostsim.SerialPorts()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	board, err := config.Load(afero.NewOsFs(), f.Config)
	if err != nil {
		return err
	}
	if f.ROMPath != "" {
		board.ROM.Path = f.ROMPath
	}

	cfg := emu.Config{
		Board:    board,
		Volume:   afero.NewBasePathFs(afero.NewOsFs(), f.SDRoot),
		LimitFPS: !f.Headless,
		Log:      log,
	}
	if f.Serial != "" {
		bridge, err := hostsim.OpenSerialBridge(f.Serial, f.Baud)
		if err != nil {
			return err
		}
		defer bridge.Close()
		cfg.Bridge = bridge
	}

	m, err := emu.New(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	store := saves.New(cfg.Volume, board.Saves.Root,
		saves.WithAttempts(board.Saves.Retries), saves.WithLogger(log))
	save := func() error {
		if !f.SaveRAM {
			return nil
		}
		n, err := m.SaveBattery(store)
		if n > 0 {
			log.Info("battery RAM saved", "title", m.Title(), "banks", n)
		}
		return err
	}

	if board.ROM.Path != "" {
		if err := m.LoadCartridge(board.ROM.Path); err != nil {
			return err
		}
		if f.SaveRAM {
			if err := m.LoadBattery(store); err != nil {
				return err
			}
		}
	} else {
		log.Info("no ROM configured, showing test pattern")
	}

	if f.Headless {
		if err := runHeadless(log, m, f.Frames, f.PNGOut, f.Expect); err != nil {
			return err
		}
		return save()
	}

	app := ui.NewApp(ui.Config{Title: f.Title, Scale: f.Scale, Save: save}, m)
	return app.Run()
}
