package tap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ethernetFrame(etherType uint16, payload []byte) []byte {
	frame := make([]byte, ethernetHeaderLen+len(payload))
	frame[12] = byte(etherType >> 8)
	frame[13] = byte(etherType)
	copy(frame[ethernetHeaderLen:], payload)
	return frame
}

func TestEtherTypeOf(t *testing.T) {
	assert.Equal(t, EtherTypeIPv4, EtherTypeOf(ethernetFrame(0x0800, []byte{0x45})))
	assert.Equal(t, EtherTypeARP, EtherTypeOf(ethernetFrame(0x0806, nil)))
	assert.Equal(t, EtherTypeIPv6, EtherTypeOf(ethernetFrame(0x86dd, nil)))
}

func TestEtherTypeOfVLAN(t *testing.T) {
	// 802.1Q tag: TPID 0x8100, TCI, then the real EtherType.
	frame := make([]byte, 18)
	frame[12], frame[13] = 0x81, 0x00
	frame[16], frame[17] = 0x08, 0x00
	assert.Equal(t, EtherTypeIPv4, EtherTypeOf(frame))
}

func TestEtherTypeOfRuntFrame(t *testing.T) {
	assert.Equal(t, EtherType(0), EtherTypeOf([]byte{1, 2, 3}))
}

func TestEthernetPayload(t *testing.T) {
	payload := []byte{0x45, 0x00}
	assert.Equal(t, payload, EthernetPayload(ethernetFrame(0x0800, payload)))
	assert.Nil(t, EthernetPayload([]byte{1, 2, 3}))
}
