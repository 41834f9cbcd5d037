// Package tap opens virtual network devices (TUN/TAP) and exposes a
// non-blocking frame read/write protocol, a callback-driven listen loop
// and per-device transfer counters over them.
package tap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/tapio-net/tapio/pkg/core"
	"github.com/tapio-net/tapio/pkg/logging"
)

// DefaultMTU is used when a Config leaves MTU unset.
const DefaultMTU = 1500

// Mode selects the layer a device operates at.
type Mode int

const (
	// TAP delivers raw Ethernet frames (layer 2).
	TAP Mode = iota
	// TUN delivers IP packets (layer 3).
	TUN
)

func (m Mode) String() string {
	switch m {
	case TAP:
		return "tap"
	case TUN:
		return "tun"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Backend selects how the OS device node is allocated.
type Backend int

const (
	// Native opens /dev/net/tun directly.
	Native Backend = iota
	// WireGuardTUN allocates through wireguard-go's userspace tun
	// driver. TUN mode only.
	WireGuardTUN
)

// Config describes a device to connect.
type Config struct {
	// Name is the interface name hint. Empty lets the kernel pick one.
	Name    string
	Mode    Mode
	MTU     int
	Backend Backend
}

// DeviceIO abstracts the open descriptor so kernel devices, userspace
// tunnels and test fakes all speak the same read/write protocol. Real
// descriptors are non-blocking; Read parks the calling goroutine on the
// runtime poller until the device is readable.
type DeviceIO interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
}

// Device owns one open virtual network device: its descriptor, MAC
// address, active flag and transfer counters. A Device is produced by
// (*Registry).Connect or (*Registry).ConnectIO and torn down by
// (*Registry).Disconnect.
//
// One task owns the receive path (Read or Listen); writes may come from
// other goroutines.
type Device struct {
	name   string
	mode   Mode
	io     DeviceIO
	osLink bool // true when an OS-level link of this name exists

	active atomic.Bool

	macMu sync.RWMutex
	mac   net.HardwareAddr

	stats core.Counters
}

// Name returns the resolved OS name of the device.
func (d *Device) Name() string { return d.name }

// Mode returns the device's layer mode.
func (d *Device) Mode() Mode { return d.mode }

// Active reports whether the listen loop should keep running.
func (d *Device) Active() bool { return d.active.Load() }

// MAC returns a copy of the device's hardware address.
func (d *Device) MAC() net.HardwareAddr {
	d.macMu.RLock()
	defer d.macMu.RUnlock()
	mac := make(net.HardwareAddr, len(d.mac))
	copy(mac, d.mac)
	return mac
}

// SetMAC replaces the device's hardware address, pushing it down to the
// OS link when one exists.
func (d *Device) SetMAC(mac net.HardwareAddr) error {
	if len(mac) != 6 {
		return fmt.Errorf("set mac on %s: want 6 bytes, got %d", d.name, len(mac))
	}
	if d.osLink {
		if err := linkSetHardwareAddr(d.name, mac); err != nil {
			return err
		}
	}
	d.macMu.Lock()
	d.mac = append(net.HardwareAddr(nil), mac...)
	d.macMu.Unlock()
	return nil
}

// Stats returns a snapshot of the device's transfer counters.
func (d *Device) Stats() core.Stats { return d.stats.Snapshot() }

// ResetStats zeroes all four transfer counters.
func (d *Device) ResetStats() { d.stats.Reset() }

// Read performs one receive attempt into a fresh page buffer and returns
// the received frame as a view over it. Callers should Release the frame
// once done with it.
//
// core.ErrTransient means nothing was received but the device is still
// healthy; the caller should simply try again. core.ErrDisconnected is
// terminal: the device reached end-of-stream or was removed underneath
// us.
func (d *Device) Read() (core.Frame, error) {
	buf := getPage()
	for {
		n, err := d.io.Read(buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				// Would-block from a raw descriptor. Real files never
				// surface this (the poller parks the goroutine instead),
				// so an immediate retry cannot spin the CPU.
				continue
			}
			putPage(buf)
			if isDisconnect(err) {
				logging.Warnf("device %s: read: device gone: %v", d.name, err)
				return core.Frame{}, core.ErrDisconnected
			}
			if os.IsTimeout(err) {
				// Deadline nudge from Stop; let the loop re-check the flag.
				return core.Frame{}, core.ErrTransient
			}
			logging.Errorf("device %s: read: unexpected fault: %v", d.name, err)
			return core.Frame{}, core.ErrTransient
		}
		if n == 0 {
			// Zero bytes without error is end-of-stream.
			putPage(buf)
			return core.Frame{}, core.ErrDisconnected
		}
		d.stats.AddRx(n)
		return core.NewFrame(buf[:n], putPage), nil
	}
}

// isDisconnect classifies errors that mean the device is gone for good.
func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, fs.ErrClosed) ||
		errors.Is(err, unix.ENODEV) ||
		errors.Is(err, unix.ENXIO) ||
		errors.Is(err, unix.EIO)
}

// Write sends one frame. A write that moves fewer bytes than requested
// fails; it is not retried here.
func (d *Device) Write(p []byte) error {
	n, err := d.io.Write(p)
	if err != nil {
		return &core.UnknownError{Op: "write", Device: d.name, Err: err}
	}
	if n != len(p) {
		return fmt.Errorf("short write on %s: wrote %d of %d bytes", d.name, n, len(p))
	}
	d.stats.AddTx(n)
	return nil
}

// Writev sends an ordered sequence of buffers as one frame. A single
// buffer goes straight to Write without copying; several are gathered
// into one page buffer first, so their combined length must fit a page.
func (d *Device) Writev(bufs ...[]byte) error {
	switch len(bufs) {
	case 0:
		return nil
	case 1:
		return d.Write(bufs[0])
	}
	total := 0
	for _, b := range bufs {
		total += len(b)
	}
	if total > pageSize {
		return fmt.Errorf("writev on %s: %d bytes exceeds page capacity of %d", d.name, total, pageSize)
	}
	page := getPage()
	defer putPage(page)
	off := 0
	for _, b := range bufs {
		off += copy(page[off:], b)
	}
	// TODO: use unix.Writev on native descriptors to skip the copy.
	return d.Write(page[:off])
}

// Listen drives the receive path until Stop is called or the device
// disconnects. Every received frame is handed to handler on its own
// goroutine, in receive order; handler completion order is
// unconstrained. Handler errors and panics are logged and never stop the
// loop.
func (d *Device) Listen(handler core.FrameHandler) {
	logging.Infof("device %s: listening", d.name)
	for d.active.Load() {
		frame, err := d.Read()
		switch {
		case err == nil:
			d.dispatch(handler, frame)
		case errors.Is(err, core.ErrTransient):
			continue
		default:
			logging.Warnf("device %s: listen: %v", d.name, err)
			d.active.Store(false)
		}
	}
	logging.Infof("device %s: listen loop stopped", d.name)
}

// dispatch runs the handler on its own goroutine, fencing off faults so
// they cannot reach the listen loop.
func (d *Device) dispatch(handler core.FrameHandler, frame core.Frame) {
	go func() {
		defer frame.Release()
		defer func() {
			if r := recover(); r != nil {
				logging.Errorf("device %s: handler panic: %v", d.name, r)
			}
		}()
		if err := handler(frame); err != nil {
			logging.Errorf("device %s: handler: %v", d.name, err)
		}
	}()
}

// Stop marks the device inactive. The flag transitions true to false
// exactly once; an in-flight read is allowed to finish. The read
// deadline nudge below unparks a read waiting on the poller so the
// listen loop observes the flag promptly.
func (d *Device) Stop() {
	if !d.active.CompareAndSwap(true, false) {
		return
	}
	if err := d.io.SetReadDeadline(time.Now()); err != nil && !errors.Is(err, core.ErrUnimplemented) {
		logging.Debugf("device %s: stop: set read deadline: %v", d.name, err)
	}
}
