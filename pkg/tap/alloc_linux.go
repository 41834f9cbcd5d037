//go:build linux

package tap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// allocate opens the OS device node for cfg and returns its descriptor
// abstraction plus the kernel-resolved interface name.
func allocate(cfg Config) (DeviceIO, string, error) {
	switch cfg.Backend {
	case Native:
		return allocNative(cfg)
	case WireGuardTUN:
		return allocWireGuard(cfg)
	default:
		return nil, "", fmt.Errorf("unknown backend %d", cfg.Backend)
	}
}

// allocNative clones /dev/net/tun and binds it to an interface via
// TUNSETIFF. The descriptor comes back in non-blocking mode so reads
// integrate with the runtime poller instead of pinning a thread.
func allocNative(cfg Config) (DeviceIO, string, error) {
	fd, err := unix.Open("/dev/net/tun", unix.O_RDWR, 0)
	if err != nil {
		return nil, "", fmt.Errorf("open /dev/net/tun: %w", err)
	}

	ifr, err := unix.NewIfreq(cfg.Name)
	if err != nil {
		unix.Close(fd)
		return nil, "", fmt.Errorf("ifreq for %q: %w", cfg.Name, err)
	}
	flags := uint16(unix.IFF_NO_PI)
	switch cfg.Mode {
	case TAP:
		flags |= unix.IFF_TAP
	case TUN:
		flags |= unix.IFF_TUN
	default:
		unix.Close(fd)
		return nil, "", fmt.Errorf("unknown device mode %d", cfg.Mode)
	}
	ifr.SetUint16(flags)
	if err := unix.IoctlIfreq(fd, unix.TUNSETIFF, ifr); err != nil {
		unix.Close(fd)
		return nil, "", fmt.Errorf("ioctl TUNSETIFF: %w", err)
	}
	// The kernel fills in the final name (e.g. "tap0" from a "tap%d"
	// hint, or its own pick when the hint was empty).
	name := ifr.Name()

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, "", fmt.Errorf("set nonblock: %w", err)
	}
	return os.NewFile(uintptr(fd), "/dev/net/tun/"+name), name, nil
}
