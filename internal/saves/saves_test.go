package saves

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintonium-119/gb-rp2350/internal/fault"
)

// flakyFs fails the first n file creations.
type flakyFs struct {
	afero.Fs
	n     int
	calls int
}

func (f *flakyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 {
		f.calls++
		if f.n > 0 {
			f.n--
			return nil, errors.New("card busy")
		}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestDirName(t *testing.T) {
	cases := map[string]string{
		"POKEMON RED":     "pokemonr",
		"TETRIS":          "tetris",
		"ZELDA":           "zelda",
		"SUPER MARIOLAND": "supermar",
		"":                "untitled",
		"A/../../":        "a",
		"..":              "untitled",
		"MEGA\\MAN 2":     "megaman2",
		"F-1_RACE":        "f-1_race",
		"\xff\xff\x00":    "untitled",
	}
	for title, want := range cases {
		assert.Equal(t, want, DirName(title), title)
	}
}

func TestStore_Path(t *testing.T) {
	s := New(afero.NewMemMapFs(), "")
	assert.Equal(t, "/saves/pokemonr/3", s.Path("POKEMON RED", 3))
	s = New(afero.NewMemMapFs(), "/sd")
	assert.Equal(t, "/sd/saves/tetris/0", s.Path("TETRIS", 0))
	// header titles cannot climb out of the saves directory
	assert.Equal(t, "/sd/saves/a/0", s.Path("A/../../", 0))
	assert.Equal(t, "/sd/saves/untitled/1", s.Path("../..", 1))
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "/")
	data := make([]byte, 0x2000)
	for i := range data {
		data[i] = byte(i * 3)
	}
	require.NoError(t, s.Save("POKEMON RED", 1, data))

	ok, err := afero.Exists(fs, "/saves/pokemonr/1")
	require.NoError(t, err)
	assert.True(t, ok)

	out := make([]byte, len(data))
	require.NoError(t, s.Load("POKEMON RED", 1, out))
	assert.Equal(t, data, out)

	// a second save truncates the first
	require.NoError(t, s.Save("POKEMON RED", 1, []byte{9}))
	raw, err := afero.ReadFile(fs, "/saves/pokemonr/1")
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, raw)
}

func TestStore_LoadMissingLeavesBuffer(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/")
	out := make([]byte, 16)
	require.NoError(t, s.Load("TETRIS", 0, out))
	assert.Equal(t, make([]byte, 16), out)

	require.NoError(t, s.Save("TETRIS", 0, []byte{1, 2}))
	require.NoError(t, s.Load("TETRIS", 1, out))
	assert.Equal(t, make([]byte, 16), out)
}

func TestStore_LoadShortFile(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/")
	require.NoError(t, s.Save("TETRIS", 0, []byte{1, 2}))
	out := []byte{7, 7, 7}
	require.NoError(t, s.Load("TETRIS", 0, out))
	assert.Equal(t, []byte{1, 2, 7}, out)
}

func TestStore_SaveRetries(t *testing.T) {
	fs := &flakyFs{Fs: afero.NewMemMapFs(), n: 3}
	s := New(fs, "/")
	require.NoError(t, s.Save("ZELDA", 0, []byte{1}))
	assert.Equal(t, 4, fs.calls)

	out := make([]byte, 1)
	require.NoError(t, s.Load("ZELDA", 0, out))
	assert.Equal(t, []byte{1}, out)
}

func TestStore_SaveGivesUp(t *testing.T) {
	fs := &flakyFs{Fs: afero.NewMemMapFs(), n: 100}
	s := New(fs, "/")
	err := s.Save("ZELDA", 0, []byte{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrRetriesExhausted)
	assert.Equal(t, 4, fs.calls)

	fs.calls = 0
	s = New(fs, "/", WithAttempts(2))
	assert.Error(t, s.Save("ZELDA", 0, []byte{1}))
	assert.Equal(t, 2, fs.calls)
}
