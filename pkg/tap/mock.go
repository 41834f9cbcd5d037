package tap

import (
	"io/fs"
	"os"
	"sync"
	"time"
)

// MockIO is an in-memory DeviceIO for tests. Reads are scripted through
// Queue* calls; writes are captured for inspection. It needs no kernel
// access or elevated privileges.
type MockIO struct {
	readCh     chan mockRead
	closed     chan struct{}
	closeOnce  sync.Once
	deadlineCh chan struct{}

	mu        sync.Mutex
	written   [][]byte
	deadline  time.Time
	nextWErr  error
	nextWrote int
}

type mockRead struct {
	data []byte
	err  error
}

// NewMockIO returns a mock descriptor with room for 64 queued reads.
func NewMockIO() *MockIO {
	return &MockIO{
		readCh:     make(chan mockRead, 64),
		closed:     make(chan struct{}),
		deadlineCh: make(chan struct{}, 1),
	}
}

// QueueRead schedules data to be returned by a future Read.
func (m *MockIO) QueueRead(data []byte) {
	m.readCh <- mockRead{data: append([]byte(nil), data...)}
}

// QueueReadErr schedules an error return for a future Read.
func (m *MockIO) QueueReadErr(err error) {
	m.readCh <- mockRead{err: err}
}

// QueueEOF schedules a zero-byte, nil-error read (end-of-stream).
func (m *MockIO) QueueEOF() {
	m.readCh <- mockRead{}
}

// Read behaves like a real descriptor: it honors the deadline even when
// the deadline is set while the read is parked.
func (m *MockIO) Read(p []byte) (int, error) {
	for {
		var timeout <-chan time.Time
		m.mu.Lock()
		if !m.deadline.IsZero() {
			d := time.Until(m.deadline)
			if d <= 0 {
				m.mu.Unlock()
				return 0, os.ErrDeadlineExceeded
			}
			t := time.NewTimer(d)
			defer t.Stop()
			timeout = t.C
		}
		m.mu.Unlock()

		select {
		case r := <-m.readCh:
			if r.err != nil {
				return 0, r.err
			}
			return copy(p, r.data), nil
		case <-m.closed:
			return 0, fs.ErrClosed
		case <-timeout:
			return 0, os.ErrDeadlineExceeded
		case <-m.deadlineCh:
			// re-evaluate the new deadline
		}
	}
}

func (m *MockIO) Write(p []byte) (int, error) {
	select {
	case <-m.closed:
		return 0, fs.ErrClosed
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nextWErr != nil {
		err := m.nextWErr
		m.nextWErr = nil
		return 0, err
	}
	if m.nextWrote > 0 && m.nextWrote < len(p) {
		n := m.nextWrote
		m.nextWrote = 0
		return n, nil
	}
	m.written = append(m.written, append([]byte(nil), p...))
	return len(p), nil
}

// FailNextWrite makes the next Write return err.
func (m *MockIO) FailNextWrite(err error) {
	m.mu.Lock()
	m.nextWErr = err
	m.mu.Unlock()
}

// ShortNextWrite makes the next Write report only n bytes written.
func (m *MockIO) ShortNextWrite(n int) {
	m.mu.Lock()
	m.nextWrote = n
	m.mu.Unlock()
}

// Written returns copies of all captured writes.
func (m *MockIO) Written() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.written))
	for i, b := range m.written {
		out[i] = append([]byte(nil), b...)
	}
	return out
}

// Closed reports whether Close has been called.
func (m *MockIO) Closed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

func (m *MockIO) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

func (m *MockIO) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	m.deadline = t
	m.mu.Unlock()
	select {
	case m.deadlineCh <- struct{}{}:
	default:
	}
	return nil
}
