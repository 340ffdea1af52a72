package jce

import (
	"errors"
	"testing"
)

func TestHeadEncodingSmallTag(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteInt32(5, 0); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x5C} // tag 5, ZeroTag
	if string(w.Bytes()) != string(want) {
		t.Fatalf("bytes = %x, want %x", w.Bytes(), want)
	}
}

func TestHeadEncodingLargeTag(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteInt32(20, 233); err != nil {
		t.Fatal(err)
	}
	r := NewReader(w.Bytes())
	h, n, err := r.ReadHead()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || h.Tag != 20 || h.Type != TypeShort {
		t.Fatalf("head = %+v, size %d", h, n)
	}
}

func TestInt32RoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 127, 128, -128, 32767, -32768, 32768, 1 << 20, -(1 << 20), 233}
	for _, v := range cases {
		w := NewWriter(0)
		if err := w.WriteInt32(0, v); err != nil {
			t.Fatal(err)
		}
		r := NewReader(w.Bytes())
		got, present, err := r.ReadInt32(0)
		if err != nil || !present {
			t.Fatalf("ReadInt32(%d): got=%d present=%v err=%v", v, got, present, err)
		}
		if got != v {
			t.Fatalf("round trip %d -> %d", v, got)
		}
	}
}

func TestZeroTagEncoding(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteInt32(0, 0); err != nil {
		t.Fatal(err)
	}
	if len(w.Bytes()) != 1 {
		t.Fatalf("zero value should encode as a single head byte, got %d bytes", len(w.Bytes()))
	}
	r := NewReader(w.Bytes())
	got, present, err := r.ReadInt32(0)
	if err != nil || !present || got != 0 {
		t.Fatalf("got=%d present=%v err=%v", got, present, err)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteFloat32(0, 2.0); err != nil {
		t.Fatal(err)
	}
	r := NewReader(w.Bytes())
	got, present, err := r.ReadFloat32(0)
	if err != nil || !present || got != 2.0 {
		t.Fatalf("got=%v present=%v err=%v", got, present, err)
	}
}

func TestDoubleWideningFromFloat(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteFloat32(0, 1.5); err != nil {
		t.Fatal(err)
	}
	r := NewReader(w.Bytes())
	got, present, err := r.ReadFloat64(0)
	if err != nil || !present || got != 1.5 {
		t.Fatalf("got=%v present=%v err=%v", got, present, err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteString(0, "hello"); err != nil {
		t.Fatal(err)
	}
	r := NewReader(w.Bytes())
	got, present, err := r.ReadString(0)
	if err != nil || !present || got != "hello" {
		t.Fatalf("got=%q present=%v err=%v", got, present, err)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	w := NewWriter(0)
	payload := []byte{1, 2, 3, 4, 5}
	if err := w.WriteBytes(0, payload); err != nil {
		t.Fatal(err)
	}
	r := NewReader(w.Bytes())
	got, present, err := r.ReadBytes(0)
	if err != nil || !present || string(got) != string(payload) {
		t.Fatalf("got=%v present=%v err=%v", got, present, err)
	}
}

func TestMissingOptionalFieldNotPresent(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteInt32(5, 1); err != nil {
		t.Fatal(err)
	}
	r := NewReader(w.Bytes())
	_, present, err := r.ReadInt32(0)
	if err != nil {
		t.Fatal(err)
	}
	if present {
		t.Fatal("expected tag 0 to be absent")
	}
}

func TestTypeMismatch(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteString(0, "not an int"); err != nil {
		t.Fatal(err)
	}
	r := NewReader(w.Bytes())
	_, _, err := r.ReadInt32(0)
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
}

func TestSkipUnknownTrailingFields(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteInt32(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteString(9, "unknown field the reader doesn't declare"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteInt32(3, 42); err != nil {
		t.Fatal(err)
	}
	w2 := NewWriter(0)
	if err := w2.WriteStruct(0, func(inner *Writer) error { return inner.w.WriteBytes(w.Bytes()) }); err != nil {
		t.Fatal(err)
	}

	r := NewReader(w2.Bytes())
	present, err := r.ReadStruct(0, func(inner *Reader) error {
		v, present, err := inner.ReadInt32(0)
		if err != nil || !present || v != 1 {
			t.Fatalf("ReadInt32(0) = %d, %v, %v", v, present, err)
		}
		return nil
	})
	if err != nil || !present {
		t.Fatalf("ReadStruct: present=%v err=%v", present, err)
	}
}

func TestJceTestStructRoundTrip(t *testing.T) {
	orig := JceTest{
		TestInt:   233,
		TestFloat: 2.0,
		TestMap:   map[int32]float64{1: 2.0, 3: 5.0},
	}

	w := NewWriter(0)
	if err := w.WriteStruct(0, orig.Encode); err != nil {
		t.Fatal(err)
	}

	r := NewReader(w.Bytes())
	var got JceTest
	present, err := r.ReadStruct(0, got.Decode)
	if err != nil || !present {
		t.Fatalf("ReadStruct: present=%v err=%v", present, err)
	}

	if got.TestInt != orig.TestInt || got.TestFloat != orig.TestFloat {
		t.Fatalf("scalar fields mismatch: %+v", got)
	}
	if len(got.TestMap) != len(orig.TestMap) {
		t.Fatalf("map mismatch: got %v want %v", got.TestMap, orig.TestMap)
	}
	for k, v := range orig.TestMap {
		if got.TestMap[k] != v {
			t.Fatalf("map[%d] = %v, want %v", k, got.TestMap[k], v)
		}
	}
	if len(got.TestList) != len(defaultTestList) {
		t.Fatalf("expected default test_list, got %v", got.TestList)
	}
	for i, v := range defaultTestList {
		if got.TestList[i] != v {
			t.Fatalf("test_list[%d] = %v, want %v", i, got.TestList[i], v)
		}
	}
}
