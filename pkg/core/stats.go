package core

import "sync/atomic"

// Stats is a snapshot of a device's transfer counters. Packet counters
// are 32 bits wide and wrap on overflow; byte counters are 64 bits.
type Stats struct {
	RxPackets uint32 `json:"rxPackets"`
	TxPackets uint32 `json:"txPackets"`
	RxBytes   uint64 `json:"rxBytes"`
	TxBytes   uint64 `json:"txBytes"`
}

// Counters is the live form of Stats. Only the task owning a device's
// I/O mutates it; atomics make snapshots taken from other goroutines
// (stats reporters) safe.
type Counters struct {
	rxPackets atomic.Uint32
	txPackets atomic.Uint32
	rxBytes   atomic.Uint64
	txBytes   atomic.Uint64
}

// AddRx records one received frame of n bytes.
func (c *Counters) AddRx(n int) {
	c.rxPackets.Add(1)
	c.rxBytes.Add(uint64(n))
}

// AddTx records one transmitted frame of n bytes.
func (c *Counters) AddTx(n int) {
	c.txPackets.Add(1)
	c.txBytes.Add(uint64(n))
}

// Snapshot returns a copy of the current counter values.
func (c *Counters) Snapshot() Stats {
	return Stats{
		RxPackets: c.rxPackets.Load(),
		TxPackets: c.txPackets.Load(),
		RxBytes:   c.rxBytes.Load(),
		TxBytes:   c.txBytes.Load(),
	}
}

// Reset zeroes all four counters.
func (c *Counters) Reset() {
	c.rxPackets.Store(0)
	c.txPackets.Store(0)
	c.rxBytes.Store(0)
	c.txBytes.Store(0)
}
