//go:build linux

package tap

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/vishvananda/netlink"
)

// linkSetUp marks the named link administratively up. Idempotent at the
// kernel level.
func linkSetUp(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("find link %q: %w", name, err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("bring link %q up: %w", name, err)
	}
	return nil
}

// linkDelete removes the OS-level device.
func linkDelete(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("find link %q: %w", name, err)
	}
	if err := netlink.LinkDel(link); err != nil {
		return fmt.Errorf("delete link %q: %w", name, err)
	}
	return nil
}

// linkSetHardwareAddr pushes a MAC address to the link. TUN links take
// no MAC; that case is not an error.
func linkSetHardwareAddr(name string, mac net.HardwareAddr) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("find link %q: %w", name, err)
	}
	if err := netlink.LinkSetHardwareAddr(link, mac); err != nil {
		if errors.Is(err, syscall.EOPNOTSUPP) {
			return nil
		}
		return fmt.Errorf("set mac %s on link %q: %w", mac, name, err)
	}
	return nil
}

// linkSetMTU sets the link MTU.
func linkSetMTU(name string, mtu int) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("find link %q: %w", name, err)
	}
	if err := netlink.LinkSetMTU(link, mtu); err != nil {
		return fmt.Errorf("set mtu %d on link %q: %w", mtu, name, err)
	}
	return nil
}

// ConfigureAddress assigns an address in CIDR notation to the named
// link. An address that is already present is not an error.
func ConfigureAddress(name, cidr string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("find link %q: %w", name, err)
	}
	addr, err := netlink.ParseAddr(cidr)
	if err != nil {
		return fmt.Errorf("parse address %q: %w", cidr, err)
	}
	if err := netlink.AddrAdd(link, addr); err != nil && !errors.Is(err, syscall.EEXIST) {
		return fmt.Errorf("add address %q to link %q: %w", cidr, name, err)
	}
	return nil
}
