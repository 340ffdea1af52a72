package jce

import (
	"math"

	"github.com/tencentrelay/qqlogin/internal/wire"
)

// Writer encodes JCE fields into a growable buffer.
type Writer struct {
	w *wire.Writer
}

// NewWriter creates an empty Writer with an optional capacity hint.
func NewWriter(sizeHint int) *Writer {
	return &Writer{w: wire.NewWriter(sizeHint)}
}

// Bytes returns the encoded buffer.
func (w *Writer) Bytes() []byte { return w.w.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.w.Len() }

// writeHead emits a field head, splitting tags ≥15 into the two-byte form.
func (w *Writer) writeHead(tag byte, t Type) error {
	if tag < 0x0F {
		return w.w.WriteU8((tag << 4) | byte(t))
	}
	if err := w.w.WriteU8(0xF0 | byte(t)); err != nil {
		return err
	}
	return w.w.WriteU8(tag)
}

// WriteInt64 writes a signed integer, narrowing to the smallest kind that
// round-trips it exactly (ZeroTag for 0, then Byte, Short, Int, Long).
func (w *Writer) WriteInt64(tag byte, v int64) error {
	switch {
	case v == 0:
		return w.writeHead(tag, TypeZeroTag)
	case v >= math.MinInt8 && v <= math.MaxInt8:
		if err := w.writeHead(tag, TypeByte); err != nil {
			return err
		}
		return w.w.WriteU8(byte(int8(v)))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		if err := w.writeHead(tag, TypeShort); err != nil {
			return err
		}
		return w.w.WriteU16(uint16(int16(v)), wire.LittleEndian)
	case v >= math.MinInt32 && v <= math.MaxInt32:
		if err := w.writeHead(tag, TypeInt); err != nil {
			return err
		}
		return w.w.WriteU32(uint32(int32(v)), wire.LittleEndian)
	default:
		if err := w.writeHead(tag, TypeLong); err != nil {
			return err
		}
		return w.w.WriteU64(uint64(v), wire.LittleEndian)
	}
}

// WriteInt8 is a convenience wrapper around WriteInt64 for byte fields.
func (w *Writer) WriteInt8(tag byte, v int8) error { return w.WriteInt64(tag, int64(v)) }

// WriteInt16 is a convenience wrapper around WriteInt64 for short fields.
func (w *Writer) WriteInt16(tag byte, v int16) error { return w.WriteInt64(tag, int64(v)) }

// WriteInt32 is a convenience wrapper around WriteInt64 for int fields.
func (w *Writer) WriteInt32(tag byte, v int32) error { return w.WriteInt64(tag, int64(v)) }

// WriteFloat32 writes a Float field.
func (w *Writer) WriteFloat32(tag byte, v float32) error {
	if err := w.writeHead(tag, TypeFloat); err != nil {
		return err
	}
	return w.w.WriteU32(math.Float32bits(v), wire.LittleEndian)
}

// WriteFloat64 writes a Double field.
func (w *Writer) WriteFloat64(tag byte, v float64) error {
	if err := w.writeHead(tag, TypeDouble); err != nil {
		return err
	}
	return w.w.WriteU64(math.Float64bits(v), wire.LittleEndian)
}

// WriteString writes a String1 field when the UTF-8 payload fits in a
// byte, otherwise a String4 field.
func (w *Writer) WriteString(tag byte, v string) error {
	b := []byte(v)
	if len(b) <= math.MaxUint8 {
		if err := w.writeHead(tag, TypeString1); err != nil {
			return err
		}
		if err := w.w.WriteU8(byte(len(b))); err != nil {
			return err
		}
		return w.w.WriteBytes(b)
	}
	if len(b) > maxString4Len {
		return ErrStringTooLong
	}
	if err := w.writeHead(tag, TypeString4); err != nil {
		return err
	}
	if err := w.w.WriteU32(uint32(len(b)), wire.BigEndian); err != nil {
		return err
	}
	return w.w.WriteBytes(b)
}

// WriteBytes writes a SimpleList field, the byte-array shortcut.
func (w *Writer) WriteBytes(tag byte, v []byte) error {
	if err := w.writeHead(tag, TypeSimpleList); err != nil {
		return err
	}
	if err := w.writeHead(0, TypeByte); err != nil {
		return err
	}
	if err := w.WriteInt32(0, int32(len(v))); err != nil {
		return err
	}
	return w.w.WriteBytes(v)
}

// WriteStruct emits StructBegin, invokes encode to write the struct's own
// fields, then emits StructEnd.
func (w *Writer) WriteStruct(tag byte, encode func(*Writer) error) error {
	if err := w.writeHead(tag, TypeStructBegin); err != nil {
		return err
	}
	if err := encode(w); err != nil {
		return err
	}
	return w.writeHead(0, TypeStructEnd)
}

// WriteList encodes a slice as a List field, using elem to write each
// entry (always at tag 0).
func WriteList[T any](w *Writer, tag byte, list []T, elem func(*Writer, T) error) error {
	if err := w.writeHead(tag, TypeList); err != nil {
		return err
	}
	if err := w.WriteInt32(0, int32(len(list))); err != nil {
		return err
	}
	for _, v := range list {
		if err := elem(w, v); err != nil {
			return err
		}
	}
	return nil
}

// WriteMap encodes a Go map as a Map field, using key/val to write each
// entry's key (tag 0) and value (tag 1). Iteration order is
// nondeterministic, matching the wire format's lack of ordering
// requirement for map entries.
func WriteMap[K comparable, V any](w *Writer, tag byte, m map[K]V, key func(*Writer, K) error, val func(*Writer, V) error) error {
	if err := w.writeHead(tag, TypeMap); err != nil {
		return err
	}
	if err := w.WriteInt32(0, int32(len(m))); err != nil {
		return err
	}
	for k, v := range m {
		if err := key(w, k); err != nil {
			return err
		}
		if err := val(w, v); err != nil {
			return err
		}
	}
	return nil
}
