package sso

import (
	"github.com/tencentrelay/qqlogin/internal/crypto"
	"github.com/tencentrelay/qqlogin/internal/tlv"
	"github.com/tencentrelay/qqlogin/internal/wire"
)

// Request describes one outbound SSO exchange: which command, which TLV
// blocks to assemble into the inner body, and how that body is encrypted.
type Request struct {
	Cmd      uint16
	SubCmd   uint16
	Mode     Mode
	BlockIDs []uint16 // nil means every block in tlv.Catalog
	Params   *tlv.Params
}

// Response is a decoded inbound SSO frame.
type Response struct {
	Cmd    uint16
	Seq    uint32
	SubCmd uint16
	Blocks []tlv.Block
}

// BuildRequest assembles one SSO frame for req. seq is obtained by calling
// nextSeq exactly once, so the caller's counter advances only on a
// successful build attempt up to that point.
//
// The inner body is: sub_cmd (u16 BE), a tlv_count placeholder (u16 BE),
// then the requested TLV blocks written through a tlv.Builder which
// backfills tlv_count. That inner body is TEA-encrypted under the key
// Mode selects, then wrapped in mode-specific framing fields (a session
// public key and 16 bytes of random key material for Ecdh; a zero-length
// public key field for Kc) before being placed in the outer frame.
//
// The outer frame is: begin(0x02), a total_size placeholder (u16 BE),
// client_version (u16 BE), cmd (u16 BE), seq (u32 BE), uin (u32 BE),
// three fixed bytes (0x03, 0x07, retry=0x00), ext_type=2 (u32 BE),
// app_client_type=0 (u32 BE), ext_instance=0 (u32 BE), the body, and
// end(0x03). total_size is backfilled to headSize + 2 + len(body),
// mirroring the external interface's total_size contract exactly rather
// than the frame's own byte count, which the wire contract does not
// reconcile against headSize for every field combination.
func BuildRequest(req Request, mat Material, nextSeq func() uint32) (seq uint32, frame []byte, err error) {
	seq = nextSeq() % 200

	inner := wire.NewWriter(0)
	if err := inner.WriteU16(req.SubCmd, wire.BigEndian); err != nil {
		return 0, nil, err
	}
	countPos := inner.Len()
	if err := inner.WriteU16(0, wire.BigEndian); err != nil {
		return 0, nil, err
	}
	tb := tlv.NewBuilder(inner, 0)
	if req.BlockIDs == nil {
		err = tlv.WriteAll(tb, req.Params)
	} else {
		ids := make(map[uint16]bool, len(req.BlockIDs))
		for _, id := range req.BlockIDs {
			ids[id] = true
		}
		err = tlv.WriteSubset(tb, req.Params, ids)
	}
	if err != nil {
		return 0, nil, err
	}
	if err := inner.PutU16At(countPos, uint16(tb.Count()), wire.BigEndian); err != nil {
		return 0, nil, err
	}

	frame, err = assembleFrame(req.Cmd, seq, req.Mode, mat, inner.Bytes())
	if err != nil {
		return 0, nil, err
	}
	return seq, frame, nil
}

// BuildFrameFromBlocks assembles a frame from already-decided blocks
// rather than the request TLV catalog: the shape a gateway's own
// responses (or a test double standing in for one) use, since their
// status and token blocks are never part of the client-side catalog.
func BuildFrameFromBlocks(cmd uint16, seq uint32, subCmd uint16, mode Mode, mat Material, blocks []tlv.Block) ([]byte, error) {
	inner := wire.NewWriter(0)
	if err := inner.WriteU16(subCmd, wire.BigEndian); err != nil {
		return nil, err
	}
	if err := inner.WriteU16(uint16(len(blocks)), wire.BigEndian); err != nil {
		return nil, err
	}
	tb := tlv.NewBuilder(inner, 0)
	for _, blk := range blocks {
		if err := tb.WriteRaw(blk.ID, blk.Body); err != nil {
			return nil, err
		}
	}
	return assembleFrame(cmd, seq, mode, mat, inner.Bytes())
}

// assembleFrame TEA-encrypts innerPlain and wraps it in the mode-tagged
// key-material preamble and the fixed outer header/trailer fields.
func assembleFrame(cmd uint16, seq uint32, mode Mode, mat Material, innerPlain []byte) ([]byte, error) {
	cipher, err := crypto.TEAEncrypt(innerPlain, mat.KeyFor(mode))
	if err != nil {
		return nil, err
	}

	body := wire.NewWriter(0)
	switch mode {
	case Ecdh:
		if err := body.WriteU16(0x0101, wire.BigEndian); err != nil {
			return nil, err
		}
		if err := body.WriteBytes(mat.RandomKey[:]); err != nil {
			return nil, err
		}
		if err := body.WriteU16(0x0102, wire.BigEndian); err != nil {
			return nil, err
		}
		if err := body.WriteU16(uint16(len(mat.PubKey)), wire.BigEndian); err != nil {
			return nil, err
		}
		if err := body.WriteBytes(mat.PubKey[:]); err != nil {
			return nil, err
		}
	default: // Kc
		if err := body.WriteU16(0x0102, wire.BigEndian); err != nil {
			return nil, err
		}
		if err := body.WriteBytes(mat.RandomKey[:]); err != nil {
			return nil, err
		}
		if err := body.WriteU16(0x0102, wire.BigEndian); err != nil {
			return nil, err
		}
		if err := body.WriteU16(0, wire.BigEndian); err != nil {
			return nil, err
		}
	}
	if err := body.WriteBytes(cipher); err != nil {
		return nil, err
	}

	out := wire.NewWriter(0)
	if err := out.WriteU8(beginMarker); err != nil {
		return nil, err
	}
	totalSizePos := out.Len()
	if err := out.WriteU16(0, wire.BigEndian); err != nil {
		return nil, err
	}
	if err := out.WriteU16(mat.ClientVersion, wire.BigEndian); err != nil {
		return nil, err
	}
	if err := out.WriteU16(cmd, wire.BigEndian); err != nil {
		return nil, err
	}
	if err := out.WriteU32(seq, wire.BigEndian); err != nil {
		return nil, err
	}
	if err := out.WriteU32(mat.Uin, wire.BigEndian); err != nil {
		return nil, err
	}
	if err := out.WriteU8(0x03); err != nil {
		return nil, err
	}
	if err := out.WriteU8(0x07); err != nil {
		return nil, err
	}
	if err := out.WriteU8(0x00); err != nil { // retry
		return nil, err
	}
	if err := out.WriteU32(2, wire.BigEndian); err != nil { // ext_type
		return nil, err
	}
	if err := out.WriteU32(0, wire.BigEndian); err != nil { // app_client_type
		return nil, err
	}
	if err := out.WriteU32(0, wire.BigEndian); err != nil { // ext_instance
		return nil, err
	}
	if err := out.WriteBytes(body.Bytes()); err != nil {
		return nil, err
	}
	if err := out.WriteU8(endMarker); err != nil {
		return nil, err
	}
	if err := out.PutU16At(totalSizePos, uint16(headSize+2+body.Len()), wire.BigEndian); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// PeekSeq reads just far enough into a frame to learn its request_seq,
// without touching the encrypted body. Callers demultiplexing inbound
// frames across a pending-request table use this to pick the right
// decryption key before calling ParseResponse.
func PeekSeq(frame []byte) (uint32, error) {
	if len(frame) < headSize+2 {
		return 0, ErrShortFrame
	}
	r := wire.NewReader(frame)
	if err := r.Skip(1 + 2 + 2 + 2); err != nil { // begin, total_size, client_version, cmd
		return 0, err
	}
	return r.ReadU32(wire.BigEndian)
}

// ParseResponse decodes one inbound SSO frame built the same way
// BuildRequest produces one. key is the TEA key matching whichever mode
// the corresponding request used; the caller looks this up by request_seq.
func ParseResponse(frame []byte, key crypto.TEAKey) (*Response, error) {
	if len(frame) < headSize+2 {
		return nil, ErrShortFrame
	}
	r := wire.NewReader(frame)

	begin, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	if begin != beginMarker {
		return nil, &ErrProtocolViolation{What: "missing begin marker"}
	}
	totalSize, err := r.ReadU16(wire.BigEndian)
	if err != nil {
		return nil, err
	}
	clientVersion, err := r.ReadU16(wire.BigEndian)
	_ = clientVersion
	if err != nil {
		return nil, err
	}
	cmd, err := r.ReadU16(wire.BigEndian)
	if err != nil {
		return nil, err
	}
	seq, err := r.ReadU32(wire.BigEndian)
	if err != nil {
		return nil, err
	}
	uin, err := r.ReadU32(wire.BigEndian)
	_ = uin
	if err != nil {
		return nil, err
	}
	if err := r.Skip(3); err != nil { // 0x03, 0x07, retry
		return nil, err
	}
	if err := r.Skip(12); err != nil { // ext_type, app_client_type, ext_instance
		return nil, err
	}

	bodyLen := r.Len() - 1
	if bodyLen < 0 {
		return nil, ErrShortFrame
	}
	body, err := r.ReadBytes(bodyLen)
	if err != nil {
		return nil, err
	}
	end, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	if end != endMarker {
		return nil, &ErrProtocolViolation{What: "missing end marker"}
	}
	if int(totalSize) != headSize+2+len(body) {
		return nil, &ErrProtocolViolation{What: "total_size does not match frame length"}
	}

	bodyReader := wire.NewReader(body)
	tag1, err := bodyReader.ReadU16(wire.BigEndian)
	if err != nil {
		return nil, err
	}
	switch tag1 {
	case 0x0101:
		if err := bodyReader.Skip(16); err != nil {
			return nil, err
		}
		if _, err := bodyReader.ReadU16(wire.BigEndian); err != nil { // 0x0102
			return nil, err
		}
		pubLen, err := bodyReader.ReadU16(wire.BigEndian)
		if err != nil {
			return nil, err
		}
		if err := bodyReader.Skip(int(pubLen)); err != nil {
			return nil, err
		}
	case 0x0102:
		if err := bodyReader.Skip(16); err != nil {
			return nil, err
		}
		if _, err := bodyReader.ReadU16(wire.BigEndian); err != nil { // 0x0102
			return nil, err
		}
		zeroLen, err := bodyReader.ReadU16(wire.BigEndian)
		if err != nil {
			return nil, err
		}
		if err := bodyReader.Skip(int(zeroLen)); err != nil {
			return nil, err
		}
	default:
		return nil, &ErrProtocolViolation{What: "unrecognized body key-material tag"}
	}

	cipher, err := bodyReader.ReadBytes(bodyReader.Len())
	if err != nil {
		return nil, err
	}
	plain, err := crypto.TEADecrypt(cipher, key)
	if err != nil {
		return nil, err
	}

	inner := wire.NewReader(plain)
	subCmd, err := inner.ReadU16(wire.BigEndian)
	if err != nil {
		return nil, err
	}
	count, err := inner.ReadU16(wire.BigEndian)
	if err != nil {
		return nil, err
	}
	blocks, err := tlv.ReadBlocks(inner, int(count))
	if err != nil {
		return nil, err
	}

	return &Response{Cmd: cmd, Seq: seq, SubCmd: subCmd, Blocks: blocks}, nil
}
