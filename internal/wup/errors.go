// Package wup implements the RPC envelope that carries a JCE-encoded
// request packet and its named attribute bag, framed with a length prefix.
package wup

import "errors"

// ErrAttributeTypeMismatch is returned when a caller requests an
// attribute under a type name different from the one it was stored with.
var ErrAttributeTypeMismatch = errors.New("wup: attribute type mismatch")

// ErrAttributeMissing is returned when a caller requests an attribute
// name that was never put into the bag.
var ErrAttributeMissing = errors.New("wup: attribute not present")
