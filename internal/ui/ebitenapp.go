package ui

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/clintonium-119/gb-rp2350/internal/emu"
)

// App shows the simulated panel in a window and drives the board buttons
// from the keyboard.
type App struct {
	cfg    Config
	m      *emu.Machine
	tex    *ebiten.Image
	w, h   int
	paused bool
	fast   bool

	showStats bool
	status    string
	statusAt  time.Time
}

func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	_, w, h := m.Framebuffer()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w*cfg.Scale, h*cfg.Scale)
	return &App{cfg: cfg, m: m, w: w, h: h}
}

// Run blocks until the window is closed, then saves once more.
func (a *App) Run() error {
	err := ebiten.RunGame(a)
	if a.cfg.Save != nil {
		if serr := a.cfg.Save(); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

func (a *App) Update() error {
	// Keyboard → board buttons
	var btn emu.Buttons
	btn.Right = ebiten.IsKeyPressed(ebiten.KeyRight)
	btn.Left = ebiten.IsKeyPressed(ebiten.KeyLeft)
	btn.Up = ebiten.IsKeyPressed(ebiten.KeyUp)
	btn.Down = ebiten.IsKeyPressed(ebiten.KeyDown)
	btn.A = ebiten.IsKeyPressed(ebiten.KeyZ)
	btn.B = ebiten.IsKeyPressed(ebiten.KeyX)
	btn.Start = ebiten.IsKeyPressed(ebiten.KeyEnter)
	btn.Select = ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	a.m.SetButtons(btn)

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.showStats = !a.showStats
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) && a.cfg.Save != nil {
		if err := a.cfg.Save(); err != nil {
			a.notify("save failed: " + err.Error())
		} else {
			a.notify("saved")
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if name, err := a.saveScreenshot(); err != nil {
			a.notify("screenshot failed: " + err.Error())
		} else {
			a.notify("wrote " + name)
		}
	}

	if a.paused && !inpututil.IsKeyJustPressed(ebiten.KeyN) {
		return nil
	}
	n := 1
	if a.fast && !a.paused {
		n = 4
	}
	for i := 0; i < n; i++ {
		if err := a.m.StepFrame(); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) notify(s string) {
	a.status, a.statusAt = s, time.Now()
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(a.w, a.h)
	}
	pix, _, _ := a.m.Framebuffer()
	a.tex.WritePixels(pix)
	screen.DrawImage(a.tex, nil)

	if a.showStats {
		st := a.m.Stats()
		overlay := ebiten.NewImage(a.w, 56)
		overlay.Fill(color.RGBA{0, 0, 0, 160})
		screen.DrawImage(overlay, nil)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("frame %d  %.1fms  tps %.0f", st.Frames,
			float64(st.LastFrame.Microseconds())/1000, ebiten.ActualTPS()), 4, 4)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("cache hit %d miss %d  banks %v",
			st.Cache.Hits, st.Cache.Misses, a.m.CachedBanks()), 4, 20)
		if t := a.m.Title(); t != "" {
			ebitenutil.DebugPrintAt(screen, t, 4, 36)
		}
	}
	if a.status != "" && time.Since(a.statusAt) < 2*time.Second {
		ebitenutil.DebugPrintAt(screen, a.status, 4, a.h-16)
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return a.w, a.h }

func (a *App) saveScreenshot() (string, error) {
	pix, w, h := a.m.Framebuffer()
	img := &image.RGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	ts := time.Now().Format("20060102_150405")
	name := filepath.Join(a.cfg.ScreenshotDir, fmt.Sprintf("screenshot_%s.png", ts))
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return name, png.Encode(f, img)
}
