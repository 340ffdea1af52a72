package wup

import "github.com/tencentrelay/qqlogin/internal/jce"

// RequestPacket is the JCE struct every UniPacket wraps: RPC envelope
// metadata plus an opaque body that, for this client, always holds a
// JCE-encoded attribute map.
type RequestPacket struct {
	Version      int16
	PacketType   int8
	MessageType  int32
	RequestID    int32
	ServantName  string
	FunctionName string
	Body         []byte
	Status       map[string]string
	Context      map[string]string
}

// Encode writes the packet's fields at tags 0-8, ascending.
func (p *RequestPacket) Encode(w *jce.Writer) error {
	if err := w.WriteInt16(0, p.Version); err != nil {
		return err
	}
	if err := w.WriteInt8(1, p.PacketType); err != nil {
		return err
	}
	if err := w.WriteInt32(2, p.MessageType); err != nil {
		return err
	}
	if err := w.WriteInt32(3, p.RequestID); err != nil {
		return err
	}
	if err := w.WriteString(4, p.ServantName); err != nil {
		return err
	}
	if err := w.WriteString(5, p.FunctionName); err != nil {
		return err
	}
	if err := w.WriteBytes(6, p.Body); err != nil {
		return err
	}
	if err := jce.WriteMap(w, 7, p.Status,
		func(w *jce.Writer, k string) error { return w.WriteString(0, k) },
		func(w *jce.Writer, v string) error { return w.WriteString(1, v) },
	); err != nil {
		return err
	}
	return jce.WriteMap(w, 8, p.Context,
		func(w *jce.Writer, k string) error { return w.WriteString(0, k) },
		func(w *jce.Writer, v string) error { return w.WriteString(1, v) },
	)
}

// Decode reads the packet's fields from r, applying empty-map defaults
// for absent Status/Context.
func (p *RequestPacket) Decode(r *jce.Reader) error {
	var next RequestPacket

	v, present, err := r.ReadInt16(0)
	if err != nil {
		return err
	}
	if !present {
		return &jce.MissingFieldError{Name: "version", Tag: 0}
	}
	next.Version = v

	pt, present, err := r.ReadInt8(1)
	if err != nil {
		return err
	}
	if !present {
		return &jce.MissingFieldError{Name: "packet_type", Tag: 1}
	}
	next.PacketType = pt

	mt, present, err := r.ReadInt32(2)
	if err != nil {
		return err
	}
	if !present {
		return &jce.MissingFieldError{Name: "message_type", Tag: 2}
	}
	next.MessageType = mt

	rid, present, err := r.ReadInt32(3)
	if err != nil {
		return err
	}
	if !present {
		return &jce.MissingFieldError{Name: "request_id", Tag: 3}
	}
	next.RequestID = rid

	servant, present, err := r.ReadString(4)
	if err != nil {
		return err
	}
	if !present {
		return &jce.MissingFieldError{Name: "servant_name", Tag: 4}
	}
	next.ServantName = servant

	fn, present, err := r.ReadString(5)
	if err != nil {
		return err
	}
	if !present {
		return &jce.MissingFieldError{Name: "function_name", Tag: 5}
	}
	next.FunctionName = fn

	body, present, err := r.ReadBytes(6)
	if err != nil {
		return err
	}
	if present {
		next.Body = body
	}

	status, present, err := jce.ReadMap(r, 7,
		func(r *jce.Reader) (string, error) { v, _, err := r.ReadString(0); return v, err },
		func(r *jce.Reader) (string, error) { v, _, err := r.ReadString(1); return v, err },
	)
	if err != nil {
		return err
	}
	if present {
		next.Status = status
	} else {
		next.Status = map[string]string{}
	}

	ctx, present, err := jce.ReadMap(r, 8,
		func(r *jce.Reader) (string, error) { v, _, err := r.ReadString(0); return v, err },
		func(r *jce.Reader) (string, error) { v, _, err := r.ReadString(1); return v, err },
	)
	if err != nil {
		return err
	}
	if present {
		next.Context = ctx
	} else {
		next.Context = map[string]string{}
	}

	*p = next
	return nil
}
