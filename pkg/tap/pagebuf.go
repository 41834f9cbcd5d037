package tap

import (
	"os"
	"sync"
)

// Every receive attempt works on exactly one OS page. Page-sized objects
// get their own size class, so the runtime hands them back aligned on
// the page boundary.
var pageSize = os.Getpagesize()

var pagePool = sync.Pool{
	New: func() any {
		b := make([]byte, pageSize)
		return &b
	},
}

// PageSize returns the frame buffer capacity used for device I/O.
func PageSize() int { return pageSize }

func getPage() []byte {
	return *pagePool.Get().(*[]byte)
}

func putPage(b []byte) {
	if cap(b) != pageSize {
		return // not one of ours
	}
	b = b[:pageSize]
	pagePool.Put(&b)
}
