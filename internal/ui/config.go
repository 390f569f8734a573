package ui

// Config contains window and input related settings.
type Config struct {
	Title string // window title
	Scale int    // integer upscaling factor
	// Save, when set, is called on S and after the window closes.
	Save func() error
	// ScreenshotDir is where F12 writes PNGs.
	ScreenshotDir string
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbstream"
	}
	if c.Scale <= 0 {
		c.Scale = 2
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "."
	}
}
