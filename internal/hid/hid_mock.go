package hid

import (
	"io"
	"sync"
)

// Mock is an in-memory Device for tests. Writes are recorded; reads
// pop from a queue the test fills with Queue. Feature reports are
// tracked separately so tests can tell the two pipes apart.
type Mock struct {
	mu       sync.Mutex
	writes   [][]byte
	features [][]byte
	reads    [][]byte
	featureQ [][]byte
	closed   bool
	WriteFn  func(p []byte) error // optional per-write hook
}

func NewMock() *Mock { return &Mock{} }

// Queue appends one input report for a later Read.
func (m *Mock) Queue(report []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(report))
	copy(cp, report)
	m.reads = append(m.reads, cp)
}

// Writes returns everything written so far.
func (m *Mock) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

func (m *Mock) Write(p []byte) (int, error) {
	m.mu.Lock()
	cp := make([]byte, len(p))
	copy(cp, p)
	m.writes = append(m.writes, cp)
	hook := m.WriteFn
	m.mu.Unlock()
	if hook != nil {
		if err := hook(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (m *Mock) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reads) == 0 {
		return 0, io.EOF
	}
	buf := m.reads[0]
	m.reads = m.reads[1:]
	return copy(p, buf), nil
}

// QueueFeature appends one feature report for a later ReadFeature.
func (m *Mock) QueueFeature(report []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(report))
	copy(cp, report)
	m.featureQ = append(m.featureQ, cp)
}

// FeatureWrites returns every feature report written so far, report ID
// prepended.
func (m *Mock) FeatureWrites() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.features))
	copy(out, m.features)
	return out
}

// Advanced
func (m *Mock) WriteOutput(reportID byte, data []byte) error {
	_, err := m.Write(append([]byte{reportID}, data...))
	return err
}

func (m *Mock) ReadInput() ([]byte, error) {
	buf := make([]byte, 64)
	n, err := m.Read(buf)
	return buf[:n], err
}

func (m *Mock) WriteFeature(reportID byte, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.features = append(m.features, append([]byte{reportID}, data...))
	return nil
}

func (m *Mock) ReadFeature(byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.featureQ) == 0 {
		return nil, io.EOF
	}
	buf := m.featureQ[0]
	m.featureQ = m.featureQ[1:]
	return buf, nil
}

func (m *Mock) ReportLens() (int, int, int) { return 0, 0, 0 }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
