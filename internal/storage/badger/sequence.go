package badger

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const sequenceBandwidth = 100

// sequences hands out record IDs per record kind. IDs start at 1 so the zero
// value always means "not stored yet".
type sequences struct {
	db   *badger.DB
	mu   sync.Mutex
	byID map[string]*badger.Sequence
}

func newSequences(db *badger.DB) *sequences {
	return &sequences{db: db, byID: make(map[string]*badger.Sequence)}
}

func (s *sequences) next(kind string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.byID[kind]
	if !ok {
		var err error
		seq, err = s.db.GetSequence([]byte("_seq:"+kind), sequenceBandwidth)
		if err != nil {
			return 0, fmt.Errorf("failed to open %s sequence: %w", kind, err)
		}
		s.byID[kind] = seq
	}

	for {
		id, err := seq.Next()
		if err != nil {
			return 0, fmt.Errorf("failed to allocate %s id: %w", kind, err)
		}
		if id != 0 {
			return id, nil
		}
	}
}

// release returns unused leases so the next start continues without gaps
func (s *sequences) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for kind, seq := range s.byID {
		_ = seq.Release()
		delete(s.byID, kind)
	}
}
