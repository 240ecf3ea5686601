package store

import (
	"path/filepath"
	"sort"
	"sync"

	"fusionswap/internal/domain"
)

const swapsFile = "swaps.json" // map[orderHash]SwapRecord

// SwapFileStore keeps the swap journal in dir.
type SwapFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewSwapFileStore returns a journal rooted at dir. The directory is created
// on first write.
func NewSwapFileStore(dir string) *SwapFileStore { return &SwapFileStore{dir: dir} }

func (s *SwapFileStore) path() string { return filepath.Join(s.dir, swapsFile) }

func (s *SwapFileStore) load() (map[domain.OrderHash]domain.SwapRecord, error) {
	m := make(map[domain.OrderHash]domain.SwapRecord)
	if err := readJSON(s.path(), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveSwap inserts or replaces the record for rec.OrderHash. The creation
// time of an existing record is kept.
func (s *SwapFileStore) SaveSwap(rec domain.SwapRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	if prev, ok := m[rec.OrderHash]; ok && prev.CreatedUTC != 0 {
		rec.CreatedUTC = prev.CreatedUTC
	}
	m[rec.OrderHash] = rec
	return writeJSON(s.path(), m, 0o600)
}

// LoadSwap returns the record for orderHash.
func (s *SwapFileStore) LoadSwap(orderHash domain.OrderHash) (domain.SwapRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return domain.SwapRecord{}, false, err
	}
	rec, ok := m[orderHash]
	return rec, ok, nil
}

// ListSwaps returns every record, newest first.
func (s *SwapFileStore) ListSwaps() ([]domain.SwapRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.SwapRecord, 0, len(m))
	for _, rec := range m {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedUTC != out[j].CreatedUTC {
			return out[i].CreatedUTC > out[j].CreatedUTC
		}
		return out[i].OrderHash < out[j].OrderHash
	})
	return out, nil
}

var _ domain.SwapStore = (*SwapFileStore)(nil)
