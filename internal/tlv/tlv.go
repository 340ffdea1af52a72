// Package tlv builds and parses the numbered, fixed-layout blocks carried
// inside SSO login requests: each block is a (id, length, body) tuple
// with its own schema, catalogued by id.
package tlv

import (
	"errors"
	"fmt"

	"github.com/tencentrelay/qqlogin/internal/wire"
)

// ErrBlockTooLong is returned when a block's body would overflow its
// length field (wider than a uint16).
var ErrBlockTooLong = errors.New("tlv: block body exceeds 65535 bytes")

// Block is a decoded (id, body) pair, used by the response-side reader.
type Block struct {
	ID   uint16
	Body []byte
}

// Builder assembles a back-to-back sequence of TLV blocks into w, tracking
// how many have been written so the caller can backfill an outer count
// field.
type Builder struct {
	w     *wire.Writer
	count int
}

// NewBuilder wraps w for block assembly, starting the running count at
// initialCount (nonzero when some blocks were already written directly).
func NewBuilder(w *wire.Writer, initialCount int) *Builder {
	return &Builder{w: w, count: initialCount}
}

// Count returns the number of blocks written so far.
func (b *Builder) Count() int { return b.count }

// Write emits one block: a u16 big-endian id, a placeholder u16 length,
// the body produced by fn, then backfills the length with the body's
// actual size.
func (b *Builder) Write(id uint16, fn func(w *wire.Writer) error) error {
	if err := b.w.WriteU16(id, wire.BigEndian); err != nil {
		return err
	}
	lenPos := b.w.Len()
	if err := b.w.WriteU16(0, wire.BigEndian); err != nil {
		return err
	}
	bodyStart := b.w.Len()
	if err := fn(b.w); err != nil {
		return err
	}
	bodyLen := b.w.Len() - bodyStart
	if bodyLen > 0xFFFF {
		return ErrBlockTooLong
	}
	if err := b.w.PutU16At(lenPos, uint16(bodyLen), wire.BigEndian); err != nil {
		return err
	}
	b.count++
	return nil
}

// WriteRaw emits a block whose body is already-assembled bytes.
func (b *Builder) WriteRaw(id uint16, body []byte) error {
	return b.Write(id, func(w *wire.Writer) error { return w.WriteBytes(body) })
}

// ReadBlocks decodes count back-to-back (id, length, body) tuples from r.
func ReadBlocks(r *wire.Reader, count int) ([]Block, error) {
	out := make([]Block, 0, count)
	for i := 0; i < count; i++ {
		id, err := r.ReadU16(wire.BigEndian)
		if err != nil {
			return nil, fmt.Errorf("tlv: read block %d id: %w", i, err)
		}
		n, err := r.ReadU16(wire.BigEndian)
		if err != nil {
			return nil, fmt.Errorf("tlv: read block %d length: %w", i, err)
		}
		body, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, fmt.Errorf("tlv: read block %#x body: %w", id, err)
		}
		out = append(out, Block{ID: id, Body: append([]byte(nil), body...)})
	}
	return out, nil
}

// ByID indexes a decoded block slice by id for lookup, the shape a
// response parser wants (duplicate ids keep the first occurrence).
func ByID(blocks []Block) map[uint16]Block {
	m := make(map[uint16]Block, len(blocks))
	for _, blk := range blocks {
		if _, exists := m[blk.ID]; !exists {
			m[blk.ID] = blk
		}
	}
	return m
}

// putString1 writes a 1-byte length prefix followed by s's UTF-8 bytes,
// truncating to maxLen bytes first when maxLen > 0.
func putString1(w *wire.Writer, s string, maxLen int) error {
	b := []byte(s)
	if maxLen > 0 && len(b) > maxLen {
		b = b[:maxLen]
	}
	if len(b) > 0xFF {
		b = b[:0xFF]
	}
	if err := w.WriteU8(byte(len(b))); err != nil {
		return err
	}
	return w.WriteBytes(b)
}

// putString2 writes a 2-byte big-endian length prefix followed by s's
// UTF-8 bytes.
func putString2(w *wire.Writer, s string) error {
	b := []byte(s)
	if err := w.WriteU16(uint16(len(b)), wire.BigEndian); err != nil {
		return err
	}
	return w.WriteBytes(b)
}

// putBytes2 writes a 2-byte big-endian length prefix followed by raw bytes.
func putBytes2(w *wire.Writer, b []byte) error {
	if err := w.WriteU16(uint16(len(b)), wire.BigEndian); err != nil {
		return err
	}
	return w.WriteBytes(b)
}
