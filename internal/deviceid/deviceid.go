// Package deviceid derives the session GUID a login request's TLV body
// carries, adapted from the teacher's agent-identity package: the same
// fixed-size, hex-marshalling identifier type, but computed from a device's
// IMEI and WiFi MAC rather than drawn from crypto/rand.
package deviceid

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Size is the length of a GUID in bytes.
const Size = 16

var (
	// ErrInvalidLength is returned when a byte slice is the wrong size to
	// be a GUID.
	ErrInvalidLength = errors.New("deviceid: invalid GUID length: expected 16 bytes")

	// ErrInvalidHexString is returned when a hex string is malformed.
	ErrInvalidHexString = errors.New("deviceid: invalid hex string for GUID")

	// Zero is the uninitialized GUID.
	Zero = GUID{}
)

// GUID is the 128-bit device identifier a login request's TLV body embeds.
type GUID [Size]byte

// Compute derives the GUID for a device from its IMEI and WiFi MAC, per the
// wire format's guid = md5(imei ‖ mac) convention.
func Compute(imei, mac string) GUID {
	return GUID(md5.Sum([]byte(imei + mac)))
}

// ParseGUID parses a GUID from a hex string, tolerating a leading 0x and
// surrounding whitespace.
func ParseGUID(s string) (GUID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")

	if len(s) != Size*2 {
		return Zero, fmt.Errorf("%w: got %d hex chars, expected %d", ErrInvalidHexString, len(s), Size*2)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %v", ErrInvalidHexString, err)
	}
	var g GUID
	copy(g[:], b)
	return g, nil
}

// FromBytes builds a GUID from a byte slice of exactly Size bytes.
func FromBytes(b []byte) (GUID, error) {
	if len(b) != Size {
		return Zero, fmt.Errorf("%w: got %d bytes", ErrInvalidLength, len(b))
	}
	var g GUID
	copy(g[:], b)
	return g, nil
}

// String returns the hex representation of the GUID.
func (g GUID) String() string { return hex.EncodeToString(g[:]) }

// Bytes returns the GUID as a byte slice.
func (g GUID) Bytes() []byte { return g[:] }

// IsZero reports whether g is the uninitialized GUID.
func (g GUID) IsZero() bool { return g == Zero }

// Equal reports whether two GUIDs are identical.
func (g GUID) Equal(other GUID) bool { return g == other }

// MarshalText implements encoding.TextMarshaler.
func (g GUID) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GUID) UnmarshalText(text []byte) error {
	parsed, err := ParseGUID(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
