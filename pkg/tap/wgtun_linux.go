//go:build linux

package tap

import (
	"fmt"
	"time"

	wgtun "golang.zx2c4.com/wireguard/tun"

	"github.com/tapio-net/tapio/pkg/core"
)

// wgOffset leaves headroom for the virtio-net header wireguard-go's
// native tun prepends when the kernel grants it offloads.
const wgOffset = 16

// allocWireGuard opens a TUN device through wireguard-go's userspace
// driver instead of the raw clone device.
func allocWireGuard(cfg Config) (DeviceIO, string, error) {
	if cfg.Mode != TUN {
		return nil, "", fmt.Errorf("wireguard backend is tun-only: %w", core.ErrUnimplemented)
	}
	mtu := cfg.MTU
	if mtu <= 0 {
		mtu = DefaultMTU
	}
	name := cfg.Name
	if name == "" {
		name = "tun%d"
	}
	dev, err := wgtun.CreateTUN(name, mtu)
	if err != nil {
		return nil, "", fmt.Errorf("create wireguard tun: %w", err)
	}
	resolved, err := dev.Name()
	if err != nil {
		dev.Close()
		return nil, "", fmt.Errorf("resolve tun name: %w", err)
	}
	return &wgIO{
		dev:    dev,
		rbuf:   make([]byte, wgOffset+pageSize),
		rbufs:  make([][]byte, 1),
		rsizes: make([]int, 1),
		wbufs:  make([][]byte, 1),
	}, resolved, nil
}

// wgIO adapts wireguard-go's batched tun API to DeviceIO with a batch
// size of one. Read state and write state are separate, matching the
// single-reader/single-writer discipline of Device.
type wgIO struct {
	dev wgtun.Device

	rbuf   []byte
	rbufs  [][]byte
	rsizes []int

	wbufs [][]byte
}

func (w *wgIO) Read(p []byte) (int, error) {
	for {
		w.rbufs[0] = w.rbuf
		n, err := w.dev.Read(w.rbufs, w.rsizes, wgOffset)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			continue
		}
		return copy(p, w.rbuf[wgOffset:wgOffset+w.rsizes[0]]), nil
	}
}

func (w *wgIO) Write(p []byte) (int, error) {
	buf := getPage()
	defer putPage(buf)
	if wgOffset+len(p) > len(buf) {
		buf = make([]byte, wgOffset+len(p))
	}
	copy(buf[wgOffset:], p)
	w.wbufs[0] = buf[:wgOffset+len(p)]
	n, err := w.dev.Write(w.wbufs, wgOffset)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return len(p), nil
}

func (w *wgIO) Close() error { return w.dev.Close() }

// SetReadDeadline is not supported by the wireguard tun driver; Stop
// falls back to waiting for the next read to complete.
func (w *wgIO) SetReadDeadline(time.Time) error { return core.ErrUnimplemented }
