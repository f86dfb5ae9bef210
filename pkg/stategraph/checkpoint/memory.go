package checkpoint

import (
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps the audit trail in memory. Data is lost on exit.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string][]entry
	closed bool
}

type entry struct {
	nodeID    string
	data      []byte
	timestamp time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string][]entry),
	}
}

func (m *MemoryStore) Append(runID, nodeID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.runs[runID] = append(m.runs[runID], entry{
		nodeID:    nodeID,
		data:      slices.Clone(data),
		timestamp: time.Now().UTC(),
	})
	return nil
}

func (m *MemoryStore) Load(runID string, sequence int) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	entries := m.runs[runID]
	if sequence < 1 || sequence > len(entries) {
		return nil, ErrNotFound
	}
	return slices.Clone(entries[sequence-1].data), nil
}

func (m *MemoryStore) Latest(runID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	entries := m.runs[runID]
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return slices.Clone(entries[len(entries)-1].data), nil
}

func (m *MemoryStore) List(runID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	entries := m.runs[runID]
	infos := make([]Info, 0, len(entries))
	for i, e := range entries {
		infos = append(infos, Info{
			RunID:     runID,
			NodeID:    e.nodeID,
			Sequence:  i + 1,
			Timestamp: e.timestamp,
			Size:      int64(len(e.data)),
		})
	}
	return infos, nil
}

func (m *MemoryStore) DeleteRun(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.runs, runID)
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.runs = nil
	return nil
}

// Len returns the number of entries across all runs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, entries := range m.runs {
		n += len(entries)
	}
	return n
}
