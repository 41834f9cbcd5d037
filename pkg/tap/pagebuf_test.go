package tap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageSize(t *testing.T) {
	assert.Greater(t, PageSize(), 0)
}

func TestPagePoolRoundTrip(t *testing.T) {
	buf := getPage()
	assert.Len(t, buf, PageSize())
	putPage(buf[:10]) // views go back at full capacity

	again := getPage()
	assert.Len(t, again, PageSize())
	putPage(again)
}

func TestPagePoolRejectsForeignBuffers(t *testing.T) {
	// Must not panic or poison the pool.
	putPage(make([]byte, 16))
	assert.Len(t, getPage(), PageSize())
}
