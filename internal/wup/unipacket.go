package wup

import (
	"github.com/tencentrelay/qqlogin/internal/jce"
	"github.com/tencentrelay/qqlogin/internal/wire"
)

// UniPacket pairs a RequestPacket envelope with its attribute bag. The
// bag is carried inside the envelope's Body field as a nested JCE map.
type UniPacket struct {
	Packet RequestPacket
	Attr   *Attribute
}

// NewUniPacket returns a packet with default envelope fields and an empty
// attribute bag, ready for the caller to fill in.
func NewUniPacket(servant, function string) *UniPacket {
	return &UniPacket{
		Packet: RequestPacket{
			Version:      3,
			PacketType:   0,
			ServantName:  servant,
			FunctionName: function,
			Status:       map[string]string{},
			Context:      map[string]string{},
		},
		Attr: NewAttribute(),
	}
}

// Encode serialises the attribute bag into the envelope's body, then the
// envelope into a length-prefixed frame: a placeholder 4-byte big-endian
// length, the JCE-encoded RequestPacket at tag 0, then the backfilled
// length covering the whole frame including those 4 bytes.
func (p *UniPacket) Encode() ([]byte, error) {
	attrBuf := jce.NewWriter(0)
	if err := p.Attr.encode(attrBuf, 0); err != nil {
		return nil, err
	}
	p.Packet.Body = attrBuf.Bytes()

	body := jce.NewWriter(0)
	if err := body.WriteStruct(0, p.Packet.Encode); err != nil {
		return nil, err
	}

	out := wire.NewWriter(4 + body.Len())
	if err := out.WriteU32(0, wire.BigEndian); err != nil {
		return nil, err
	}
	if err := out.WriteBytes(body.Bytes()); err != nil {
		return nil, err
	}
	if err := out.PutU32At(0, uint32(out.Len()), wire.BigEndian); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Decode parses a length-prefixed frame produced by Encode. The length
// prefix itself is skipped rather than validated: it is redundant once the
// whole frame has already been delivered by the transport.
func Decode(buf []byte) (*UniPacket, error) {
	wr := wire.NewReader(buf)
	if err := wr.Skip(4); err != nil {
		return nil, err
	}
	rest, err := wr.ReadBytes(wr.Len())
	if err != nil {
		return nil, err
	}

	r := jce.NewReader(rest)
	p := &UniPacket{}
	if _, err := r.ReadStruct(0, p.Packet.Decode); err != nil {
		return nil, err
	}

	attr, err := decodeAttribute(jce.NewReader(p.Packet.Body), 0)
	if err != nil {
		return nil, err
	}
	p.Attr = attr
	return p, nil
}
