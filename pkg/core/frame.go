package core

// Frame is a view over the first bytes of the receive buffer a frame was
// read into. It never owns memory beyond the current dispatch: a handler
// that keeps the bytes must copy them, and should call Release when done
// so the backing buffer returns to its pool.
type Frame struct {
	data    []byte
	release func([]byte)
}

// NewFrame wraps a received view. The view must be a prefix of the
// backing buffer. release may be nil for frames that do not come from a
// pool.
func NewFrame(view []byte, release func([]byte)) Frame {
	return Frame{data: view, release: release}
}

// Data returns the frame bytes. The slice aliases the backing buffer.
func (f Frame) Data() []byte { return f.data }

// Length returns the number of bytes in the frame.
func (f Frame) Length() int { return len(f.data) }

// Release returns the backing buffer to its pool. The frame must not be
// used afterwards; extra calls are no-ops.
func (f *Frame) Release() {
	if f.release != nil {
		f.release(f.data[:cap(f.data)])
		f.release = nil
	}
	f.data = nil
}

// FrameHandler consumes one received frame. The listen loop invokes
// handlers on their own goroutine in receive order; an error return or a
// panic is logged by the loop and never stops it.
type FrameHandler func(Frame) error
