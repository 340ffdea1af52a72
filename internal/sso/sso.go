// Package sso builds and parses the outer SSO request/response frame: a
// fixed header, a TEA-encrypted TLV body, and the begin/end frame markers
// the gateway expects on every exchange.
package sso

import (
	"errors"
	"fmt"

	"github.com/tencentrelay/qqlogin/internal/crypto"
)

// Mode selects how a request's inner body is encrypted.
type Mode int

const (
	// Ecdh mode is used when no prior session key is available: the
	// frame carries the client's ECDH public key so the gateway can
	// derive the same share key.
	Ecdh Mode = iota
	// Kc mode reuses a previously established random session key.
	Kc
)

const (
	beginMarker byte = 0x02
	endMarker   byte = 0x03
	headSize    int  = 27 // header constant of the total_size formula; the fields begin through ext_instance occupy 30 bytes
)

// ErrProtocolViolation reports a structurally invalid frame: a missing or
// wrong marker byte, or a total_size field inconsistent with the frame's
// actual length.
type ErrProtocolViolation struct {
	What string
}

func (e *ErrProtocolViolation) Error() string {
	return fmt.Sprintf("sso: protocol violation: %s", e.What)
}

// ErrShortFrame is returned when a frame is shorter than headSize+2 bytes,
// or when ParseResponse finds no room for a body and end marker after the
// header; a frame that passes the length check but ends inside the header
// fails with the wire reader's truncation error instead.
var ErrShortFrame = errors.New("sso: frame shorter than fixed header")

// Material is the session's key state a request or response is built or
// parsed against.
type Material struct {
	Uin           uint32
	ClientVersion uint16
	ShareKey      [16]byte
	RandomKey     [16]byte
	PubKey        [crypto.ECDHPubKeyLen]byte
}

// KeyFor returns the TEA key the given mode encrypts its inner body under.
func (m Material) KeyFor(mode Mode) crypto.TEAKey {
	switch mode {
	case Ecdh:
		return crypto.NewTEAKey(m.ShareKey[:])
	default:
		return crypto.NewTEAKey(m.RandomKey[:])
	}
}
