package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// ErrCryptoInit is returned when keypair generation or a curve operation
// cannot complete (RNG failure, a malformed server public key, or a shared
// point at infinity).
var ErrCryptoInit = errors.New("crypto: ECDH initialization failed")

// ECDHPubKeyLen is the length in bytes of a compressed secp192k1 public
// key: one prefix byte plus a 24-byte X coordinate.
const ECDHPubKeyLen = 25

// peerUncompressedLen is the length of the fixed, uncompressed server
// public key point embedded in every ECDH-mode login request.
const peerUncompressedLen = 49

// ServerPubKey is the gateway's fixed secp192k1 public key, uncompressed
// (0x04 || X || Y), 49 bytes. The original client embeds this as a literal
// constant (S_PUB_KEY) extracted from a captured binary; without a captured
// trace to source the real server key from, this placeholder uses the
// curve's own base point, which has the correct length and is guaranteed
// to be a valid point on secp192k1 — see DESIGN.md.
var ServerPubKey = secp192k1().marshalUncompressed(secp192k1().basePoint())

// ECDHKeypair holds one session's ephemeral ECDH keypair and the shared key
// derived against ServerPubKey.
type ECDHKeypair struct {
	PubKey   [ECDHPubKeyLen]byte // compressed local public key, sent on the wire
	ShareKey [MD5Size]byte       // md5(shared secret X coordinate), the TEA key
}

// GenerateECDHKeypair creates a fresh ephemeral keypair on secp192k1 and
// computes the shared key against the fixed server public key.
func GenerateECDHKeypair() (*ECDHKeypair, error) {
	c := secp192k1()

	priv, err := randScalar(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoInit, err)
	}

	pub := c.scalarMult(priv, c.basePoint())

	peer, ok := c.unmarshalUncompressed(ServerPubKey)
	if !ok || len(ServerPubKey) != peerUncompressedLen {
		return nil, fmt.Errorf("%w: malformed server public key", ErrCryptoInit)
	}

	shared := c.scalarMult(priv, peer)
	if c.isInfinity(shared) {
		return nil, fmt.Errorf("%w: shared point at infinity", ErrCryptoInit)
	}

	xBytes := make([]byte, c.byteLen)
	shared.x.FillBytes(xBytes)

	kp := &ECDHKeypair{ShareKey: MD5(xBytes)}
	copy(kp.PubKey[:], c.marshalCompressed(pub))
	return kp, nil
}

// randScalar draws a uniform random scalar in [1, n-1].
func randScalar(c *curve) (*big.Int, error) {
	for {
		buf := make([]byte, c.byteLen)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		k := new(big.Int).SetBytes(buf)
		if k.Sign() > 0 && k.Cmp(c.n) < 0 {
			return k, nil
		}
	}
}
