package tap

import (
	"crypto/rand"
	"fmt"
	"net"
)

// randomMAC returns a fresh locally-administered unicast hardware
// address.
func randomMAC() (net.HardwareAddr, error) {
	mac := make(net.HardwareAddr, 6)
	if _, err := rand.Read(mac); err != nil {
		return nil, fmt.Errorf("generate mac: %w", err)
	}
	mac[0] |= 0x02 // locally administered
	mac[0] &= 0xfe // unicast
	return mac, nil
}
