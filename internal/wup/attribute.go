package wup

import (
	"fmt"

	"github.com/tencentrelay/qqlogin/internal/jce"
)

// attributeValue is one entry of an OldUniAttribute bag: the JCE-encoded
// bytes of a value, tagged with the type name it was stored under.
type attributeValue struct {
	TypeName string
	Data     []byte
}

// Attribute is the named attribute bag a UniPacket carries alongside its
// RequestPacket: a map from name to a (type name, JCE-encoded bytes) pair.
// Put serialises a value through the JCE writer and records the bytes
// under its type name; Get requires the caller to name the same type it
// was put under.
type Attribute struct {
	values map[string]attributeValue
}

// NewAttribute returns an empty attribute bag.
func NewAttribute() *Attribute {
	return &Attribute{values: make(map[string]attributeValue)}
}

// Names returns the attribute names currently present, for iteration.
func (a *Attribute) Names() []string {
	names := make([]string, 0, len(a.values))
	for n := range a.values {
		names = append(names, n)
	}
	return names
}

// Has reports whether name is present under any type.
func (a *Attribute) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

func putValue(a *Attribute, name, typeName string, encode func(*jce.Writer) error) error {
	w := jce.NewWriter(0)
	if err := encode(w); err != nil {
		return err
	}
	data := append([]byte(nil), w.Bytes()...)
	a.values[name] = attributeValue{TypeName: typeName, Data: data}
	return nil
}

func getValue(a *Attribute, name, wantType string, decode func(*jce.Reader) error) error {
	v, ok := a.values[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrAttributeMissing, name)
	}
	if v.TypeName != wantType {
		return fmt.Errorf("%w: %q declared %s, requested %s", ErrAttributeTypeMismatch, name, v.TypeName, wantType)
	}
	return decode(jce.NewReader(v.Data))
}

// PutInt32 stores v under name with type name "int32".
func PutInt32(a *Attribute, name string, v int32) error {
	return putValue(a, name, "int32", func(w *jce.Writer) error { return w.WriteInt32(0, v) })
}

// GetInt32 retrieves an attribute stored by PutInt32.
func GetInt32(a *Attribute, name string) (int32, error) {
	var out int32
	err := getValue(a, name, "int32", func(r *jce.Reader) error {
		v, present, err := r.ReadInt32(0)
		if err != nil {
			return err
		}
		if !present {
			return &jce.MissingFieldError{Name: name, Tag: 0}
		}
		out = v
		return nil
	})
	return out, err
}

// PutString stores v under name with type name "string".
func PutString(a *Attribute, name, v string) error {
	return putValue(a, name, "string", func(w *jce.Writer) error { return w.WriteString(0, v) })
}

// GetString retrieves an attribute stored by PutString.
func GetString(a *Attribute, name string) (string, error) {
	var out string
	err := getValue(a, name, "string", func(r *jce.Reader) error {
		v, present, err := r.ReadString(0)
		if err != nil {
			return err
		}
		if !present {
			return &jce.MissingFieldError{Name: name, Tag: 0}
		}
		out = v
		return nil
	})
	return out, err
}

// PutBytes stores v under name with type name "bytes".
func PutBytes(a *Attribute, name string, v []byte) error {
	return putValue(a, name, "bytes", func(w *jce.Writer) error { return w.WriteBytes(0, v) })
}

// GetBytes retrieves an attribute stored by PutBytes.
func GetBytes(a *Attribute, name string) ([]byte, error) {
	var out []byte
	err := getValue(a, name, "bytes", func(r *jce.Reader) error {
		v, present, err := r.ReadBytes(0)
		if err != nil {
			return err
		}
		if !present {
			return &jce.MissingFieldError{Name: name, Tag: 0}
		}
		out = v
		return nil
	})
	return out, err
}

// PutStruct stores v under name using typeAlias as the declared type name
// (the schema's registered alias, e.g. "JceTest"), encoding it via encode.
func PutStruct(a *Attribute, name, typeAlias string, encode func(*jce.Writer) error) error {
	return putValue(a, name, typeAlias, func(w *jce.Writer) error {
		return w.WriteStruct(0, encode)
	})
}

// GetStruct retrieves a struct attribute stored by PutStruct.
func GetStruct(a *Attribute, name, typeAlias string, decode func(*jce.Reader) error) error {
	return getValue(a, name, typeAlias, func(r *jce.Reader) error {
		_, err := r.ReadStruct(0, decode)
		return err
	})
}

// PutList stores list under name with type name "list<elemType>".
func PutList[T any](a *Attribute, name, elemType string, list []T, elem func(*jce.Writer, T) error) error {
	return putValue(a, name, "list<"+elemType+">", func(w *jce.Writer) error {
		return jce.WriteList(w, 0, list, elem)
	})
}

// GetList retrieves a list attribute stored by PutList.
func GetList[T any](a *Attribute, name, elemType string, elem func(*jce.Reader) (T, error)) ([]T, error) {
	var out []T
	err := getValue(a, name, "list<"+elemType+">", func(r *jce.Reader) error {
		list, _, err := jce.ReadList(r, 0, elem)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	return out, err
}

// PutMap stores m under name with type name "map<keyType,valType>".
func PutMap[K comparable, V any](a *Attribute, name, keyType, valType string, m map[K]V, key func(*jce.Writer, K) error, val func(*jce.Writer, V) error) error {
	typeName := fmt.Sprintf("map<%s,%s>", keyType, valType)
	return putValue(a, name, typeName, func(w *jce.Writer) error {
		return jce.WriteMap(w, 0, m, key, val)
	})
}

// GetMap retrieves a map attribute stored by PutMap.
func GetMap[K comparable, V any](a *Attribute, name, keyType, valType string, key func(*jce.Reader) (K, error), val func(*jce.Reader) (V, error)) (map[K]V, error) {
	typeName := fmt.Sprintf("map<%s,%s>", keyType, valType)
	var out map[K]V
	err := getValue(a, name, typeName, func(r *jce.Reader) error {
		m, _, err := jce.ReadMap(r, 0, key, val)
		if err != nil {
			return err
		}
		out = m
		return nil
	})
	return out, err
}

// encode writes the attribute bag as a JCE map<string, map<string, bytes>>
// field at tag, matching the wire's OldUniAttribute layout.
func (a *Attribute) encode(w *jce.Writer, tag byte) error {
	return jce.WriteMap(w, tag, a.values,
		func(w *jce.Writer, name string) error { return w.WriteString(0, name) },
		func(w *jce.Writer, v attributeValue) error {
			inner := map[string][]byte{v.TypeName: v.Data}
			return jce.WriteMap(w, 1, inner,
				func(w *jce.Writer, typeName string) error { return w.WriteString(0, typeName) },
				func(w *jce.Writer, data []byte) error { return w.WriteBytes(1, data) },
			)
		},
	)
}

// decodeAttribute reads a JCE map<string, map<string, bytes>> field at tag
// back into an Attribute bag.
func decodeAttribute(r *jce.Reader, tag byte) (*Attribute, error) {
	raw, _, err := jce.ReadMap(r, tag,
		func(r *jce.Reader) (string, error) { v, _, err := r.ReadString(0); return v, err },
		func(r *jce.Reader) (map[string][]byte, error) {
			m, _, err := jce.ReadMap(r, 1,
				func(r *jce.Reader) (string, error) { v, _, err := r.ReadString(0); return v, err },
				func(r *jce.Reader) ([]byte, error) { v, _, err := r.ReadBytes(1); return v, err },
			)
			return m, err
		},
	)
	if err != nil {
		return nil, err
	}
	attr := NewAttribute()
	for name, inner := range raw {
		for typeName, data := range inner {
			attr.values[name] = attributeValue{TypeName: typeName, Data: data}
		}
	}
	return attr, nil
}
