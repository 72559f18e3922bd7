package slot

import "sync"

// Memory keeps snapshots in process memory.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory slot.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Load returns a copy of the bytes stored under key.
func (m *Memory) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), stored...), nil
}

// Save replaces the bytes stored under key.
func (m *Memory) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// Close implements io.Closer.
func (m *Memory) Close() error {
	return nil
}
