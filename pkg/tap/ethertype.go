package tap

import "encoding/binary"

// EtherType identifies the network-layer protocol of an Ethernet frame.
type EtherType uint16

const (
	EtherTypeIPv4 EtherType = 0x0800
	EtherTypeARP  EtherType = 0x0806
	EtherTypeVLAN EtherType = 0x8100
	EtherTypeIPv6 EtherType = 0x86dd
)

const ethernetHeaderLen = 14

func (t EtherType) String() string {
	switch t {
	case EtherTypeIPv4:
		return "ipv4"
	case EtherTypeARP:
		return "arp"
	case EtherTypeVLAN:
		return "vlan"
	case EtherTypeIPv6:
		return "ipv6"
	case 0:
		return "none"
	default:
		return "unknown"
	}
}

// EtherTypeOf reads the EtherType of a raw Ethernet frame, looking
// through one VLAN tag. Runt frames report zero.
func EtherTypeOf(frame []byte) EtherType {
	if len(frame) < ethernetHeaderLen {
		return 0
	}
	t := EtherType(binary.BigEndian.Uint16(frame[12:14]))
	if t == EtherTypeVLAN && len(frame) >= ethernetHeaderLen+4 {
		t = EtherType(binary.BigEndian.Uint16(frame[16:18]))
	}
	return t
}

// EthernetPayload returns the network-layer payload of a raw Ethernet
// frame, skipping one VLAN tag if present. Runt frames return nil.
func EthernetPayload(frame []byte) []byte {
	if len(frame) < ethernetHeaderLen {
		return nil
	}
	off := ethernetHeaderLen
	if EtherType(binary.BigEndian.Uint16(frame[12:14])) == EtherTypeVLAN {
		if len(frame) < ethernetHeaderLen+4 {
			return nil
		}
		off += 4
	}
	return frame[off:]
}
