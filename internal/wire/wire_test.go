package wire

import (
	"bytes"
	"testing"
)

func TestReaderScalarsBigEndian(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}
	r := NewReader(buf)

	u8, err := r.ReadU8()
	if err != nil || u8 != 0x01 {
		t.Fatalf("ReadU8() = %v, %v", u8, err)
	}

	u16, err := r.ReadU16(BigEndian)
	if err != nil || u16 != 0x0203 {
		t.Fatalf("ReadU16() = %#x, %v", u16, err)
	}

	u32, err := r.ReadU32(BigEndian)
	if err != nil || u32 != 0x04050607 {
		t.Fatalf("ReadU32() = %#x, %v", u32, err)
	}

	b, err := r.ReadBytes(2)
	if err != nil || !bytes.Equal(b, []byte{0x08, 0x09}) {
		t.Fatalf("ReadBytes() = %v, %v", b, err)
	}

	if r.Len() != 0 {
		t.Fatalf("expected 0 remaining, got %d", r.Len())
	}
}

func TestReaderLittleEndian(t *testing.T) {
	r := NewReader([]byte{0x01, 0x00, 0x00, 0x00})
	v, err := r.ReadU32(LittleEndian)
	if err != nil || v != 1 {
		t.Fatalf("ReadU32(LE) = %v, %v", v, err)
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.ReadU16(BigEndian); err == nil {
		t.Fatal("expected truncated error")
	}
}

func TestReaderSeekAndSkip(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})
	if err := r.Seek(3); err != nil {
		t.Fatal(err)
	}
	v, err := r.ReadU8()
	if err != nil || v != 4 {
		t.Fatalf("ReadU8() after seek = %v, %v", v, err)
	}
	if err := r.Seek(0); err != nil {
		t.Fatal(err)
	}
	if err := r.Skip(2); err != nil {
		t.Fatal(err)
	}
	v, err = r.ReadU8()
	if err != nil || v != 3 {
		t.Fatalf("ReadU8() after skip = %v, %v", v, err)
	}
	if err := r.Seek(100); err == nil {
		t.Fatal("expected error seeking past end")
	}
}

func TestReaderPeekDoesNotConsume(t *testing.T) {
	r := NewReader([]byte{0x42, 0x43})
	v, err := r.PeekU8()
	if err != nil || v != 0x42 {
		t.Fatalf("PeekU8() = %v, %v", v, err)
	}
	if r.Pos() != 0 {
		t.Fatalf("peek should not advance position, got %d", r.Pos())
	}
}

func TestWriterGrowable(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteU8(0xAA); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteU16(0x1234, BigEndian); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xAA, 0x12, 0x34}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("Bytes() = %x, want %x", w.Bytes(), want)
	}
}

func TestWriterFixedOverflow(t *testing.T) {
	w := NewFixedWriter(2)
	if err := w.WriteU8(1); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteU16(1, BigEndian); err == nil {
		t.Fatal("expected out of space error")
	}
}

func TestWriterBackfill(t *testing.T) {
	w := NewWriter(0)
	_ = w.WriteU16(0, BigEndian) // placeholder
	_ = w.WriteBytes([]byte{1, 2, 3})
	if err := w.PutU16At(0, uint16(w.Len()-2), BigEndian); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x03, 1, 2, 3}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("Bytes() = %x, want %x", w.Bytes(), want)
	}
}
