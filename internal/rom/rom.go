// Package rom serves cartridge ROM bytes by bank. Bank 0 is always resident;
// switchable banks are fetched from slow storage on demand and kept in a
// small LRU cache.
package rom

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/clintonium-119/gb-rp2350/internal/fault"
	"github.com/clintonium-119/gb-rp2350/internal/storage"
)

const BankSize = storage.BankSize

var (
	ErrCapacity = errors.New("rom: cache capacity must be at least 1")
	ErrEmpty    = errors.New("rom: backing store holds no banks")
)

// Stats counts cache activity since the store was created.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Store is a bank-cached view of a ROM held in a storage.BankReader. It is
// not safe for concurrent use; the emulation core is its only caller.
type Store struct {
	backing storage.BankReader
	bank0   []byte
	cache   *simplelru.LRU[int, []byte]
	free    [][]byte
	log     *slog.Logger
	stats   Stats
}

// NewStore reads bank 0 from backing and allocates capacity bank slots.
// All memory the store will ever use is allocated here.
func NewStore(backing storage.BankReader, capacity int, log *slog.Logger) (*Store, error) {
	if capacity < 1 {
		return nil, ErrCapacity
	}
	if backing.Banks() == 0 {
		return nil, ErrEmpty
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		backing: backing,
		bank0:   make([]byte, BankSize),
		free:    make([][]byte, 0, capacity),
		log:     log,
	}
	if err := backing.ReadBank(0, s.bank0); err != nil {
		return nil, fmt.Errorf("rom: load bank 0: %w", err)
	}
	for range capacity {
		s.free = append(s.free, make([]byte, BankSize))
	}
	cache, err := simplelru.NewLRU(capacity, func(bank int, slot []byte) {
		s.free = append(s.free, slot)
	})
	if err != nil {
		return nil, fmt.Errorf("rom: %w", err)
	}
	s.cache = cache
	return s, nil
}

// ByteAt returns the byte at offset within bank. A failed read of a
// missing bank halts the program: the core has no way to continue without
// the instruction or data it asked for.
func (s *Store) ByteAt(bank, offset int) byte {
	offset &= BankSize - 1
	if bank == 0 {
		return s.bank0[offset]
	}
	if data, ok := s.cache.Get(bank); ok {
		s.stats.Hits++
		return data[offset]
	}
	s.stats.Misses++
	return s.load(bank)[offset]
}

func (s *Store) load(bank int) []byte {
	if len(s.free) == 0 {
		old, _, _ := s.cache.RemoveOldest()
		s.log.Debug("rom bank evicted", "bank", old)
	}
	slot := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	if err := s.backing.ReadBank(bank, slot); err != nil {
		s.free = append(s.free, slot)
		fault.Halt(fmt.Errorf("rom: load bank %d: %w", bank, err))
	}
	s.cache.Add(bank, slot)
	s.log.Debug("rom bank loaded", "bank", bank, "cached", s.cache.Len())
	return slot
}

// Banks is the number of 16 KiB banks in the ROM.
func (s *Store) Banks() int { return s.backing.Banks() }

// Size is Banks() * BankSize.
func (s *Store) Size() int { return s.backing.Banks() * BankSize }

// Cached lists the cached banks from least to most recently used.
func (s *Store) Cached() []int { return s.cache.Keys() }

func (s *Store) Stats() Stats { return s.stats }

// Static serves a ROM held entirely in addressable memory, the RAM, PSRAM
// and flash build variants. Reads past the end return 0xFF.
type Static struct {
	region storage.Region
}

func NewStatic(region storage.Region) *Static { return &Static{region: region} }

func (s *Static) ByteAt(bank, offset int) byte {
	i := bank*BankSize + offset&(BankSize-1)
	if i < 0 || i >= len(s.region) {
		return 0xFF
	}
	return s.region[i]
}

func (s *Static) Banks() int { return s.region.Banks() }
