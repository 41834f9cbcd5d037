package tap

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/tapio-net/tapio/pkg/core"
	"github.com/tapio-net/tapio/pkg/logging"
)

// Registry maps device names to open handles. It belongs to whatever
// component manages device lifecycles; there is deliberately no
// package-level instance. Concurrent connects to different names are
// independent.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device

	// alloc overrides the platform allocator; tests use it to simulate
	// allocation failures without touching /dev/net/tun.
	alloc func(Config) (DeviceIO, string, error)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*Device)}
}

// Connect opens a virtual network device: allocates the OS device node,
// puts the descriptor in non-blocking mode, gives the device a random
// locally-administered MAC, brings the link up and registers the handle
// under its kernel-resolved name.
//
// A permission failure comes back with an actionable message; any other
// allocation failure is wrapped as a core.UnknownError carrying the
// underlying text. Neither is fatal to the process.
func (r *Registry) Connect(cfg Config) (*Device, error) {
	alloc := r.alloc
	if alloc == nil {
		alloc = allocate
	}
	devIO, name, err := alloc(cfg)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, &core.UnknownError{
				Op:     "connect",
				Device: cfg.Name,
				Message: fmt.Sprintf("permission denied opening %s device: "+
					"run with elevated privileges (root or CAP_NET_ADMIN): %v", cfg.Mode, err),
				Err: err,
			}
		}
		return nil, &core.UnknownError{Op: "connect", Device: cfg.Name, Err: err}
	}

	mac, err := randomMAC()
	if err != nil {
		devIO.Close()
		return nil, &core.UnknownError{Op: "connect", Device: name, Err: err}
	}

	d := &Device{name: name, mode: cfg.Mode, io: devIO, osLink: true, mac: mac}
	d.active.Store(true)

	if cfg.Mode == TAP {
		if err := linkSetHardwareAddr(name, mac); err != nil {
			logging.Warnf("device %s: connect: set mac %s: %v", name, mac, err)
		}
	}
	if cfg.MTU > 0 {
		if err := linkSetMTU(name, cfg.MTU); err != nil {
			logging.Warnf("device %s: connect: set mtu %d: %v", name, cfg.MTU, err)
		}
	}
	if err := linkSetUp(name); err != nil {
		devIO.Close()
		return nil, &core.UnknownError{Op: "connect", Device: name, Message: fmt.Sprintf("bring link up: %v", err), Err: err}
	}

	if err := r.insert(d); err != nil {
		devIO.Close()
		return nil, err
	}
	logging.Infof("device %s: connected (%s, mac %s)", name, cfg.Mode, mac)
	return d, nil
}

// ConnectIO wraps an already-open descriptor abstraction as a registered
// device. No OS-level setup happens; this is the entry point for
// userspace backends and tests.
func (r *Registry) ConnectIO(name string, devIO DeviceIO) (*Device, error) {
	if name == "" {
		return nil, fmt.Errorf("connect: device name required")
	}
	mac, err := randomMAC()
	if err != nil {
		return nil, &core.UnknownError{Op: "connect", Device: name, Err: err}
	}
	d := &Device{name: name, mode: TAP, io: devIO, mac: mac}
	d.active.Store(true)
	if err := r.insert(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Disconnect tears the device down: stops the listen loop, removes the
// OS link, closes the descriptor and drops the registry entry. Teardown
// faults are logged rather than returned; from the caller's view
// disconnect always completes.
func (r *Registry) Disconnect(d *Device) {
	d.Stop()
	if d.osLink {
		if err := linkDelete(d.name); err != nil {
			logging.Warnf("device %s: disconnect: remove link: %v", d.name, err)
		}
	}
	if err := d.io.Close(); err != nil && !errors.Is(err, fs.ErrClosed) {
		logging.Warnf("device %s: disconnect: close: %v", d.name, err)
	}
	r.mu.Lock()
	if r.devices[d.name] == d {
		delete(r.devices, d.name)
	}
	r.mu.Unlock()
	logging.Infof("device %s: disconnected", d.name)
}

// Lookup returns the registered device with the given name.
func (r *Registry) Lookup(name string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[name]
	return d, ok
}

// Names returns the currently registered device names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.devices))
	for name := range r.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) insert(d *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[d.name]; ok {
		return fmt.Errorf("device %q already registered", d.name)
	}
	r.devices[d.name] = d
	return nil
}
