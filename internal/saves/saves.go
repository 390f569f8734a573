// Package saves persists battery-backed cartridge RAM, one file per bank,
// under <root>/saves/<title>/<bank>.
package saves

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/clintonium-119/gb-rp2350/internal/fault"
)

const (
	dirName    = "saves"
	maxNameLen = 8
)

// Store reads and writes RAM banks on a volume. It shares the volume with
// the ROM reader but is only called between frames, never concurrently.
type Store struct {
	fs       afero.Fs
	root     string
	attempts int
	log      *slog.Logger
}

type Option func(*Store)

// WithAttempts sets how many times a save is tried before it fails.
func WithAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.attempts = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func New(fs afero.Fs, root string, opts ...Option) *Store {
	if root == "" {
		root = "/"
	}
	s := &Store{fs: fs, root: root, attempts: fault.DefaultAttempts, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DirName turns a cartridge title into its save directory name: lower
// case, at most 8 characters, keeping only letters, digits, '_' and '-'.
// Titles come from the ROM header, so separators and dots never reach the
// path. A title with nothing left maps to "untitled".
func DirName(title string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(title) {
		if b.Len() == maxNameLen {
			break
		}
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-' {
			b.WriteRune(c)
		}
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}

// Path is the file a bank of title is stored in.
func (s *Store) Path(title string, bank int) string {
	return path.Join(s.root, dirName, DirName(title), strconv.Itoa(bank))
}

// Save writes data as bank of title, creating the directories on first
// use. Failures are retried; the returned error means the save is lost.
func (s *Store) Save(title string, bank int, data []byte) error {
	name := s.Path(title, bank)
	s.log.Info("saving ram bank", "title", title, "bank", bank, "bytes", len(data))
	err := fault.Retry(s.attempts, func() error {
		return s.write(name, data)
	}, func(attempt int, err error) {
		s.log.Warn("save failed, retrying", "path", name, "attempt", attempt, "err", err)
	})
	if err != nil {
		return fmt.Errorf("saves: bank %d of %q: %w", bank, title, err)
	}
	return nil
}

func (s *Store) write(name string, data []byte) error {
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fault.Transient(err)
	}
	f, err := s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fault.Transient(err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fault.Transient(err)
	}
	if err := f.Close(); err != nil {
		return fault.Transient(err)
	}
	return nil
}

// Load reads bank of title into out. A bank that was never saved is not an
// error and leaves out untouched. A file shorter than out fills its prefix.
func (s *Store) Load(title string, bank int, out []byte) error {
	name := s.Path(title, bank)
	f, err := s.fs.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("no saved ram bank", "path", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("saves: open %s: %w", name, err)
	}
	defer f.Close()
	s.log.Info("loading ram bank", "title", title, "bank", bank)
	if _, err := io.ReadFull(f, out); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("saves: read %s: %w", name, err)
	}
	return nil
}
