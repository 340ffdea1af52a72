package jce

// JceTest is a small struct schema exercising a scalar int, a scalar
// float, a map, and a list with a declared default; nested structs and
// SimpleList fields are not part of it. It doubles as the worked example for the schema
// registry pattern every higher-level struct (RequestPacket, block bodies)
// follows: a pair of hand-written Encode/Decode functions driven by
// explicit per-field tags, with no reflection involved.
type JceTest struct {
	TestInt   int32
	TestFloat float32
	TestMap   map[int32]float64
	TestList  []float64
}

// defaultTestList is TestList's declared default when absent from the wire.
var defaultTestList = []float64{1.0, 2.0, 3.0}

// Encode writes t's fields at tags 0-3.
func (t *JceTest) Encode(w *Writer) error {
	if err := w.WriteInt32(0, t.TestInt); err != nil {
		return err
	}
	if err := w.WriteFloat32(1, t.TestFloat); err != nil {
		return err
	}
	if t.TestMap != nil {
		if err := WriteMap(w, 2, t.TestMap,
			func(w *Writer, k int32) error { return w.WriteInt32(0, k) },
			func(w *Writer, v float64) error { return w.WriteFloat64(1, v) },
		); err != nil {
			return err
		}
	}
	if t.TestList != nil {
		if err := WriteList(w, 3, t.TestList,
			func(w *Writer, v float64) error { return w.WriteFloat64(0, v) },
		); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads t's fields from r, applying TestList's default when absent.
func (t *JceTest) Decode(r *Reader) error {
	var next JceTest

	v, present, err := r.ReadInt32(0)
	if err != nil {
		return err
	}
	if !present {
		return &MissingFieldError{Name: "test_int", Tag: 0}
	}
	next.TestInt = v

	f, present, err := r.ReadFloat32(1)
	if err != nil {
		return err
	}
	if !present {
		return &MissingFieldError{Name: "test_float", Tag: 1}
	}
	next.TestFloat = f

	m, _, err := ReadMap(r, 2,
		func(r *Reader) (int32, error) { v, _, err := r.ReadInt32(0); return v, err },
		func(r *Reader) (float64, error) { v, _, err := r.ReadFloat64(1); return v, err },
	)
	if err != nil {
		return err
	}
	next.TestMap = m

	list, present, err := ReadList(r, 3,
		func(r *Reader) (float64, error) { v, _, err := r.ReadFloat64(0); return v, err },
	)
	if err != nil {
		return err
	}
	if present {
		next.TestList = list
	} else {
		next.TestList = append([]float64(nil), defaultTestList...)
	}

	*t = next
	return nil
}
