package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersTrackTransfers(t *testing.T) {
	var c Counters
	c.AddRx(100)
	c.AddRx(28)
	c.AddTx(64)

	snap := c.Snapshot()
	assert.Equal(t, uint32(2), snap.RxPackets)
	assert.Equal(t, uint64(128), snap.RxBytes)
	assert.Equal(t, uint32(1), snap.TxPackets)
	assert.Equal(t, uint64(64), snap.TxBytes)
}

func TestCountersReset(t *testing.T) {
	var c Counters
	c.AddRx(10)
	c.AddTx(20)

	c.Reset()

	assert.Equal(t, Stats{}, c.Snapshot())
}

func TestSnapshotIsACopy(t *testing.T) {
	var c Counters
	c.AddRx(1)
	snap := c.Snapshot()
	c.AddRx(1)
	assert.Equal(t, uint32(1), snap.RxPackets)
}
