package tap

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/tapio-net/tapio/pkg/core"
)

func newTestDevice(t *testing.T, name string) (*Device, *MockIO) {
	t.Helper()
	mock := NewMockIO()
	dev, err := NewRegistry().ConnectIO(name, mock)
	require.NoError(t, err)
	return dev, mock
}

func TestReadUpdatesStats(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-read")
	payload := bytes.Repeat([]byte{0xab}, 64)
	mock.QueueRead(payload)

	frame, err := dev.Read()
	require.NoError(t, err)
	defer frame.Release()

	assert.Equal(t, 64, frame.Length())
	assert.Equal(t, payload, frame.Data())

	stats := dev.Stats()
	assert.Equal(t, uint32(1), stats.RxPackets)
	assert.Equal(t, uint64(64), stats.RxBytes)
	assert.Equal(t, uint32(0), stats.TxPackets)
}

func TestReadRetriesWouldBlock(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-eagain")
	mock.QueueReadErr(unix.EAGAIN)
	mock.QueueReadErr(unix.EAGAIN)
	mock.QueueRead([]byte{1, 2, 3})

	frame, err := dev.Read()
	require.NoError(t, err)
	defer frame.Release()
	assert.Equal(t, []byte{1, 2, 3}, frame.Data())

	stats := dev.Stats()
	assert.Equal(t, uint32(1), stats.RxPackets, "would-block retries must not count as packets")
}

func TestReadEOFMeansDisconnected(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-eof")
	mock.QueueEOF()

	_, err := dev.Read()
	assert.ErrorIs(t, err, core.ErrDisconnected)
}

func TestReadDeviceGoneMeansDisconnected(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-enodev")
	mock.QueueReadErr(unix.ENODEV)

	_, err := dev.Read()
	assert.ErrorIs(t, err, core.ErrDisconnected)
}

func TestReadUnexpectedFaultIsTransient(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-fault")
	mock.QueueReadErr(errors.New("cosmic rays"))

	_, err := dev.Read()
	assert.ErrorIs(t, err, core.ErrTransient)

	stats := dev.Stats()
	assert.Equal(t, uint32(0), stats.RxPackets)
}

func TestWriteUpdatesStats(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-write")
	payload := bytes.Repeat([]byte{0x42}, 64)

	require.NoError(t, dev.Write(payload))

	written := mock.Written()
	require.Len(t, written, 1)
	assert.Equal(t, payload, written[0])

	stats := dev.Stats()
	assert.Equal(t, uint32(1), stats.TxPackets)
	assert.Equal(t, uint64(64), stats.TxBytes)
}

func TestWriteShortFailsWithLengths(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-short")
	mock.ShortNextWrite(2)

	err := dev.Write([]byte{1, 2, 3, 4, 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrote 2 of 5")

	stats := dev.Stats()
	assert.Equal(t, uint32(0), stats.TxPackets, "short writes must not count")
}

func TestWriteErrorIsUnknown(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-werr")
	mock.FailNextWrite(errors.New("backpressure"))

	err := dev.Write([]byte{1})
	require.Error(t, err)
	var unknown *core.UnknownError
	assert.ErrorAs(t, err, &unknown)
}

func TestWritevEmptyIsNoop(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-wv0")

	require.NoError(t, dev.Writev())

	assert.Empty(t, mock.Written())
	assert.Equal(t, uint32(0), dev.Stats().TxPackets)
}

func TestWritevSingleMatchesWrite(t *testing.T) {
	devA, mockA := newTestDevice(t, "tap-wv1a")
	devB, mockB := newTestDevice(t, "tap-wv1b")
	payload := []byte("one buffer, no copy")

	require.NoError(t, devA.Write(payload))
	require.NoError(t, devB.Writev(payload))

	assert.Equal(t, mockA.Written(), mockB.Written())
}

func TestWritevConcatenatesInOrder(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-wv3")
	a, b, c := []byte("aaa"), []byte("bb"), []byte("cccc")

	require.NoError(t, dev.Writev(a, b, c))

	written := mock.Written()
	require.Len(t, written, 1, "gathered buffers must go out as a single write")
	assert.Equal(t, []byte("aaabbcccc"), written[0])

	stats := dev.Stats()
	assert.Equal(t, uint32(1), stats.TxPackets)
	assert.Equal(t, uint64(9), stats.TxBytes)
}

func TestWritevOverPageCapacityFails(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-wvbig")
	a := make([]byte, PageSize())
	b := []byte{0x01}

	err := dev.Writev(a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page capacity")
	assert.Empty(t, mock.Written())
}

func TestSetMAC(t *testing.T) {
	dev, _ := newTestDevice(t, "tap-mac")

	original := dev.MAC()
	require.Len(t, original, 6)
	assert.NotZero(t, original[0]&0x02, "generated MAC must be locally administered")
	assert.Zero(t, original[0]&0x01, "generated MAC must be unicast")

	next := []byte{0x02, 0x11, 0x22, 0x33, 0x44, 0x55}
	require.NoError(t, dev.SetMAC(next))
	assert.Equal(t, next, []byte(dev.MAC()))

	assert.Error(t, dev.SetMAC([]byte{0x02, 0x11}), "truncated MAC must be rejected")
}

func TestResetStats(t *testing.T) {
	dev, mock := newTestDevice(t, "tap-reset")
	mock.QueueRead([]byte{1, 2, 3})
	frame, err := dev.Read()
	require.NoError(t, err)
	frame.Release()
	require.NoError(t, dev.Write([]byte{4, 5}))

	dev.ResetStats()

	assert.Equal(t, core.Stats{}, dev.Stats())
}
