package jce

import (
	"fmt"
	"math"

	"github.com/tencentrelay/qqlogin/internal/wire"
)

// Reader decodes JCE fields from a borrowed byte slice. It holds no state
// beyond its cursor; the caller owns the underlying buffer.
type Reader struct {
	w *wire.Reader
}

// NewReader wraps buf for JCE decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{w: wire.NewReader(buf)}
}

// Pos returns the current absolute byte offset.
func (r *Reader) Pos() int { return r.w.Pos() }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return r.w.Len() }

// Seek repositions the cursor to an absolute offset.
func (r *Reader) Seek(abs int) error { return r.w.Seek(abs) }

// ReadHead reads one field head, returning its encoded size (1 or 2) along
// with the decoded (tag, type) pair.
func (r *Reader) ReadHead() (Head, int, error) {
	b0, err := r.w.ReadU8()
	if err != nil {
		return Head{}, 0, err
	}
	tag := b0 >> 4
	typ := Type(b0 & 0x0F)
	if tag != 0x0F {
		return Head{Tag: tag, Type: typ}, 1, nil
	}
	b1, err := r.w.ReadU8()
	if err != nil {
		return Head{}, 0, err
	}
	return Head{Tag: b1, Type: typ}, 2, nil
}

// PeekHead reads a head then restores the cursor, so callers can inspect
// the next field without committing to consuming it.
func (r *Reader) PeekHead() (Head, int, error) {
	pos := r.w.Pos()
	h, n, err := r.ReadHead()
	if serr := r.w.Seek(pos); serr != nil {
		return Head{}, 0, serr
	}
	if err != nil {
		return Head{}, 0, err
	}
	return h, n, nil
}

// SkipToTag advances past any wire fields whose tag is below the
// requested tag, leaving the cursor positioned exactly before the head of
// the requested tag (if found) or before the first field with a larger
// tag, or at a StructEnd head. It reports whether a field at exactly
// tag was found; in every case it never consumes the head it stops on.
func (r *Reader) SkipToTag(tag byte) (bool, error) {
	for {
		h, _, err := r.PeekHead()
		if err != nil {
			return false, err
		}
		if h.Type == TypeStructEnd {
			return false, nil
		}
		if h.Tag == tag {
			return true, nil
		}
		if h.Tag > tag {
			return false, nil
		}
		if _, _, err := r.ReadHead(); err != nil {
			return false, err
		}
		if err := r.skipField(h.Type); err != nil {
			return false, err
		}
	}
}

// SkipToStructEnd consumes fields until a StructEnd head is reached,
// including that head.
func (r *Reader) SkipToStructEnd() error {
	for {
		h, _, err := r.ReadHead()
		if err != nil {
			return err
		}
		if h.Type == TypeStructEnd {
			return nil
		}
		if err := r.skipField(h.Type); err != nil {
			return err
		}
	}
}

// skipField consumes the payload of a field whose head (of the given
// type) has already been read.
func (r *Reader) skipField(t Type) error {
	switch t {
	case TypeByte:
		return r.w.Skip(1)
	case TypeShort:
		return r.w.Skip(2)
	case TypeInt:
		return r.w.Skip(4)
	case TypeLong:
		return r.w.Skip(8)
	case TypeFloat:
		return r.w.Skip(4)
	case TypeDouble:
		return r.w.Skip(8)
	case TypeZeroTag:
		return nil
	case TypeString1:
		n, err := r.w.ReadU8()
		if err != nil {
			return err
		}
		return r.w.Skip(int(n))
	case TypeString4:
		n, err := r.w.ReadU32(wire.BigEndian)
		if err != nil {
			return err
		}
		if n > maxString4Len {
			return ErrStringTooLong
		}
		return r.w.Skip(int(n))
	case TypeMap:
		count, err := r.readCount()
		if err != nil {
			return err
		}
		for i := 0; i < count*2; i++ {
			h, _, err := r.ReadHead()
			if err != nil {
				return err
			}
			if err := r.skipField(h.Type); err != nil {
				return err
			}
		}
		return nil
	case TypeList:
		count, err := r.readCount()
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			h, _, err := r.ReadHead()
			if err != nil {
				return err
			}
			if err := r.skipField(h.Type); err != nil {
				return err
			}
		}
		return nil
	case TypeStructBegin:
		return r.SkipToStructEnd()
	case TypeSimpleList:
		if _, _, err := r.ReadHead(); err != nil { // inner Byte head at tag 0
			return err
		}
		n, err := r.readCount()
		if err != nil {
			return err
		}
		return r.w.Skip(n)
	default:
		return fmt.Errorf("jce: skip: unsupported type %s", t)
	}
}

// readCount reads a full Int-kind field (head plus payload, narrowing
// tolerant) and returns it as a count, used for Map/List lengths and the
// SimpleList byte count.
func (r *Reader) readCount() (int, error) {
	h, _, err := r.ReadHead()
	if err != nil {
		return 0, err
	}
	v, err := r.readIntValue(h.Type)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, ErrInvalidSize
	}
	return int(v), nil
}

// readIntValue reads the payload of an already-headed integer-kind field
// and widens it to int64.
func (r *Reader) readIntValue(t Type) (int64, error) {
	switch t {
	case TypeZeroTag:
		return 0, nil
	case TypeByte:
		b, err := r.w.ReadU8()
		if err != nil {
			return 0, err
		}
		return int64(int8(b)), nil
	case TypeShort:
		v, err := r.w.ReadU16(wire.LittleEndian)
		if err != nil {
			return 0, err
		}
		return int64(int16(v)), nil
	case TypeInt:
		v, err := r.w.ReadU32(wire.LittleEndian)
		if err != nil {
			return 0, err
		}
		return int64(int32(v)), nil
	case TypeLong:
		v, err := r.w.ReadU64(wire.LittleEndian)
		if err != nil {
			return 0, err
		}
		return int64(v), nil
	default:
		return 0, &TypeMismatchError{Expected: TypeLong, Got: t}
	}
}

// findTag locates the head for tag using SkipToTag, then actually
// consumes it, returning (head, found).
func (r *Reader) findTag(tag byte) (Head, bool, error) {
	found, err := r.SkipToTag(tag)
	if err != nil || !found {
		return Head{}, false, err
	}
	h, _, err := r.ReadHead()
	return h, true, err
}

// ReadInt8 reads a byte-kind field, accepting ZeroTag or Byte.
func (r *Reader) ReadInt8(tag byte) (value int8, present bool, err error) {
	h, found, err := r.findTag(tag)
	if err != nil || !found {
		return 0, found, err
	}
	switch h.Type {
	case TypeZeroTag:
		return 0, true, nil
	case TypeByte:
		b, err := r.w.ReadU8()
		return int8(b), true, err
	default:
		return 0, true, &TypeMismatchError{Expected: TypeByte, Got: h.Type}
	}
}

// ReadInt16 reads a short-kind field, accepting ZeroTag, Byte or Short.
func (r *Reader) ReadInt16(tag byte) (value int16, present bool, err error) {
	h, found, err := r.findTag(tag)
	if err != nil || !found {
		return 0, found, err
	}
	switch h.Type {
	case TypeZeroTag:
		return 0, true, nil
	case TypeByte:
		b, err := r.w.ReadU8()
		return int16(int8(b)), true, err
	case TypeShort:
		v, err := r.w.ReadU16(wire.LittleEndian)
		return int16(v), true, err
	default:
		return 0, true, &TypeMismatchError{Expected: TypeShort, Got: h.Type}
	}
}

// ReadInt32 reads an int-kind field, accepting ZeroTag, Byte, Short or Int.
func (r *Reader) ReadInt32(tag byte) (value int32, present bool, err error) {
	h, found, err := r.findTag(tag)
	if err != nil || !found {
		return 0, found, err
	}
	switch h.Type {
	case TypeZeroTag:
		return 0, true, nil
	case TypeByte:
		b, err := r.w.ReadU8()
		return int32(int8(b)), true, err
	case TypeShort:
		v, err := r.w.ReadU16(wire.LittleEndian)
		return int32(int16(v)), true, err
	case TypeInt:
		v, err := r.w.ReadU32(wire.LittleEndian)
		return int32(v), true, err
	default:
		return 0, true, &TypeMismatchError{Expected: TypeInt, Got: h.Type}
	}
}

// ReadInt64 reads a long-kind field, accepting any narrower integer kind.
func (r *Reader) ReadInt64(tag byte) (value int64, present bool, err error) {
	h, found, err := r.findTag(tag)
	if err != nil || !found {
		return 0, found, err
	}
	v, err := r.readIntValue(h.Type)
	return v, true, err
}

// ReadFloat32 reads a float-kind field; widening from Float only.
func (r *Reader) ReadFloat32(tag byte) (value float32, present bool, err error) {
	h, found, err := r.findTag(tag)
	if err != nil || !found {
		return 0, found, err
	}
	if h.Type != TypeFloat {
		return 0, true, &TypeMismatchError{Expected: TypeFloat, Got: h.Type}
	}
	bits, err := r.w.ReadU32(wire.LittleEndian)
	if err != nil {
		return 0, true, err
	}
	return math.Float32frombits(bits), true, nil
}

// ReadFloat64 reads a double-kind field, accepting widening from Float.
func (r *Reader) ReadFloat64(tag byte) (value float64, present bool, err error) {
	h, found, err := r.findTag(tag)
	if err != nil || !found {
		return 0, found, err
	}
	switch h.Type {
	case TypeFloat:
		bits, err := r.w.ReadU32(wire.LittleEndian)
		return float64(math.Float32frombits(bits)), true, err
	case TypeDouble:
		bits, err := r.w.ReadU64(wire.LittleEndian)
		return math.Float64frombits(bits), true, err
	default:
		return 0, true, &TypeMismatchError{Expected: TypeDouble, Got: h.Type}
	}
}

// ReadString reads a String1 or String4 field.
func (r *Reader) ReadString(tag byte) (value string, present bool, err error) {
	h, found, err := r.findTag(tag)
	if err != nil || !found {
		return "", found, err
	}
	switch h.Type {
	case TypeString1:
		n, err := r.w.ReadU8()
		if err != nil {
			return "", true, err
		}
		b, err := r.w.ReadBytes(int(n))
		return string(b), true, err
	case TypeString4:
		n, err := r.w.ReadU32(wire.BigEndian)
		if err != nil {
			return "", true, err
		}
		if n > maxString4Len {
			return "", true, ErrStringTooLong
		}
		b, err := r.w.ReadBytes(int(n))
		return string(b), true, err
	default:
		return "", true, &TypeMismatchError{Expected: TypeString1, Got: h.Type}
	}
}

// ReadBytes reads a SimpleList field, the byte-array shortcut.
func (r *Reader) ReadBytes(tag byte) (value []byte, present bool, err error) {
	h, found, err := r.findTag(tag)
	if err != nil || !found {
		return nil, found, err
	}
	if h.Type != TypeSimpleList {
		return nil, true, &TypeMismatchError{Expected: TypeSimpleList, Got: h.Type}
	}
	if _, _, err := r.ReadHead(); err != nil { // inner Byte head at tag 0
		return nil, true, err
	}
	n, err := r.readCount()
	if err != nil {
		return nil, true, err
	}
	b, err := r.w.ReadBytes(n)
	if err != nil {
		return nil, true, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

// ReadStruct locates a StructBegin field at tag, invokes decode with a
// Reader scoped to the same cursor, and consumes the trailing StructEnd.
// decode should read the struct's own fields by their own tags and must
// not consume the StructEnd itself.
func (r *Reader) ReadStruct(tag byte, decode func(*Reader) error) (present bool, err error) {
	h, found, err := r.findTag(tag)
	if err != nil || !found {
		return found, err
	}
	if h.Type != TypeStructBegin {
		return true, &TypeMismatchError{Expected: TypeStructBegin, Got: h.Type}
	}
	if err := decode(r); err != nil {
		return true, err
	}
	return true, r.SkipToStructEnd()
}

// ReadList decodes a List field at tag into a slice, using elem to decode
// each entry (which always appears at tag 0 inside the list).
func ReadList[T any](r *Reader, tag byte, elem func(*Reader) (T, error)) (value []T, present bool, err error) {
	h, found, err := r.findTag(tag)
	if err != nil || !found {
		return nil, found, err
	}
	if h.Type != TypeList {
		return nil, true, &TypeMismatchError{Expected: TypeList, Got: h.Type}
	}
	count, err := r.readCount()
	if err != nil {
		return nil, true, err
	}
	out := make([]T, 0, count)
	for i := 0; i < count; i++ {
		v, err := elem(r)
		if err != nil {
			return nil, true, err
		}
		out = append(out, v)
	}
	return out, true, nil
}

// ReadMap decodes a Map field at tag into a Go map, using key/val to
// decode each entry's key (tag 0) and value (tag 1).
func ReadMap[K comparable, V any](r *Reader, tag byte, key func(*Reader) (K, error), val func(*Reader) (V, error)) (value map[K]V, present bool, err error) {
	h, found, err := r.findTag(tag)
	if err != nil || !found {
		return nil, found, err
	}
	if h.Type != TypeMap {
		return nil, true, &TypeMismatchError{Expected: TypeMap, Got: h.Type}
	}
	count, err := r.readCount()
	if err != nil {
		return nil, true, err
	}
	out := make(map[K]V, count)
	for i := 0; i < count; i++ {
		k, err := key(r)
		if err != nil {
			return nil, true, err
		}
		v, err := val(r)
		if err != nil {
			return nil, true, err
		}
		out[k] = v
	}
	return out, true, nil
}
