// Command tapiod opens a virtual network device and runs its listen
// loop, logging a summary of every received frame and, optionally, a
// periodic counter report.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/net/ipv4"

	"github.com/tapio-net/tapio/pkg/config"
	"github.com/tapio-net/tapio/pkg/core"
	"github.com/tapio-net/tapio/pkg/logging"
	"github.com/tapio-net/tapio/pkg/tap"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML or JSON config file")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		if err := config.LoadFromFile(*cfgPath, cfg); err != nil {
			logging.Fatalf("config: %v", err)
		}
	}
	config.LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		logging.Fatalf("config: %v", err)
	}

	logging.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.File != "" {
		dir := cfg.Logging.Dir
		if dir == "" {
			dir = "."
		}
		if err := logging.EnableFileLogging(dir, cfg.Logging.File,
			cfg.Logging.MaxSize, cfg.Logging.MaxBackups, cfg.Logging.MaxAge); err != nil {
			logging.Fatalf("file logging: %v", err)
		}
	}

	registry := tap.NewRegistry()
	dev, err := registry.Connect(deviceConfig(cfg))
	if err != nil {
		logging.Fatalf("connect: %v", err)
	}
	defer registry.Disconnect(dev)

	if cfg.Device.Address != "" {
		if err := tap.ConfigureAddress(dev.Name(), cfg.Device.Address); err != nil {
			logging.Fatalf("configure address: %v", err)
		}
		logging.Infof("device %s: address %s", dev.Name(), cfg.Device.Address)
	}

	if cfg.Stats.Interval != "" {
		go runStatsReporter(dev, cfg.Stats.Interval)
	}
	if cfg.HealthAddr != "" {
		go serveHealth(cfg.HealthAddr)
	}

	go dev.Listen(frameLogger(dev))

	sigc := make(chan os.Signal, 2)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logging.Infof("shutting down")
}

func deviceConfig(cfg *config.Config) tap.Config {
	out := tap.Config{Name: cfg.Device.Name, MTU: cfg.Device.MTU}
	if strings.EqualFold(cfg.Device.Mode, "tun") {
		out.Mode = tap.TUN
	}
	if strings.EqualFold(cfg.Device.Backend, "wireguard") {
		out.Backend = tap.WireGuardTUN
	}
	return out
}

// frameLogger returns a handler that debug-logs a one-line summary of
// each received frame. Receive-path work beyond logging belongs to
// whatever stack sits on top of the device.
func frameLogger(dev *tap.Device) core.FrameHandler {
	mode := dev.Mode()
	return func(f core.Frame) error {
		logging.Debugf("device %s: rx %s", dev.Name(), describeFrame(mode, f))
		return nil
	}
}

func describeFrame(mode tap.Mode, f core.Frame) string {
	data := f.Data()
	if mode == tap.TAP {
		return fmt.Sprintf("ethertype=%s len=%d", tap.EtherTypeOf(data), f.Length())
	}
	if hdr, err := ipv4.ParseHeader(data); err == nil {
		return fmt.Sprintf("ipv4 %s -> %s proto=%d len=%d", hdr.Src, hdr.Dst, hdr.Protocol, f.Length())
	}
	return fmt.Sprintf("len=%d", f.Length())
}

func serveHealth(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if err := http.ListenAndServe(addr, mux); err != nil {
		logging.Errorf("health endpoint: %v", err)
	}
}
