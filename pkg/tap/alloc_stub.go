//go:build !linux

package tap

import (
	"fmt"
	"runtime"

	"github.com/tapio-net/tapio/pkg/core"
)

func allocate(cfg Config) (DeviceIO, string, error) {
	return nil, "", fmt.Errorf("%s devices on %s: %w", cfg.Mode, runtime.GOOS, core.ErrUnimplemented)
}
