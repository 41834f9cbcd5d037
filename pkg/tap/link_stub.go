//go:build !linux

package tap

import (
	"net"

	"github.com/tapio-net/tapio/pkg/core"
)

func linkSetUp(string) error { return core.ErrUnimplemented }

func linkDelete(string) error { return core.ErrUnimplemented }

func linkSetHardwareAddr(string, net.HardwareAddr) error { return core.ErrUnimplemented }

func linkSetMTU(string, int) error { return core.ErrUnimplemented }

// ConfigureAddress assigns an address to the named link. Only
// implemented on Linux.
func ConfigureAddress(string, string) error { return core.ErrUnimplemented }
