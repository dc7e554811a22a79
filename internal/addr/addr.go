// Package addr generates collision-resistant unique-local IPv6 addresses
// following the RFC 4193 section 3.2.1 layout.
package addr

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
)

// ErrGlobalIDRange is returned when a global id does not fit in 40 bits.
var ErrGlobalIDRange = errors.New("global id may only be 40 bits wide")

const globalIDBits = 40

// Generate returns a unique-local IPv6 address with the given global and
// subnet ids and a random 64-bit interface id. The randomness is there for
// collision resistance, not secrecy.
func Generate(globalID uint64, subnetID uint16) (netip.Addr, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return netip.Addr{}, fmt.Errorf("random interface id: %w", err)
	}
	return GenerateWithInterfaceID(globalID, subnetID, binary.BigEndian.Uint64(buf[:]))
}

// GenerateWithInterfaceID is Generate with the interface id fixed, making the
// result fully deterministic. The address layout is:
//
//	byte 0      0xfc, the unique-local prefix
//	bytes 1-5   globalID (40 bits)
//	bytes 6-7   subnetID
//	bytes 8-15  interfaceID
func GenerateWithInterfaceID(globalID uint64, subnetID uint16, interfaceID uint64) (netip.Addr, error) {
	if globalID >= 1<<globalIDBits {
		return netip.Addr{}, ErrGlobalIDRange
	}
	var b [16]byte
	b[0] = 0xfc
	b[1] = byte(globalID >> 32)
	b[2] = byte(globalID >> 24)
	b[3] = byte(globalID >> 16)
	b[4] = byte(globalID >> 8)
	b[5] = byte(globalID)
	binary.BigEndian.PutUint16(b[6:8], subnetID)
	binary.BigEndian.PutUint64(b[8:16], interfaceID)
	return netip.AddrFrom16(b), nil
}
