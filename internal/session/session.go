// Package session drives the per-connection login state machine: it owns
// a Context, a transport.Socket, and the pending-request table matching
// inbound frames back to the request that is waiting on them.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tencentrelay/qqlogin/internal/logging"
	"github.com/tencentrelay/qqlogin/internal/recovery"
	"github.com/tencentrelay/qqlogin/internal/sso"
	"github.com/tencentrelay/qqlogin/internal/tlv"
	"github.com/tencentrelay/qqlogin/internal/transport"
	"github.com/tencentrelay/qqlogin/internal/wire"
)

// State is one step of the login state machine.
type State int32

const (
	Idle State = iota
	Connecting
	Handshaking
	AwaitingTgtgt
	AwaitingCaptcha
	LoggedIn
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Connecting:
		return "CONNECTING"
	case Handshaking:
		return "HANDSHAKING"
	case AwaitingTgtgt:
		return "AWAITING_TGTGT"
	case AwaitingCaptcha:
		return "AWAITING_CAPTCHA"
	case LoggedIn:
		return "LOGGED_IN"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Block ids this orchestrator treats specially when reading a login
// response. The wire format's login-status signalling is not pinned down
// by the external interface contract beyond "a status indicating success"
// or "verification needed"; these ids are this implementation's working
// assumption, recorded in the grounding ledger as an open question.
const (
	blockLoginToken   uint16 = 0x119
	blockCaptchaImage uint16 = 0x165
)

// loginCmd, loginSubCmd identify the RequestTGTGT exchange.
const (
	loginCmd    uint16 = 2064
	loginSubCmd uint16 = 9
)

type pendingCall struct {
	mode   sso.Mode
	result chan *sso.Response
}

// Session owns one login round trip's context, socket, and in-flight
// request table. One session owns its socket and all its in-flight
// state; no two operations on the same session run concurrently.
type Session struct {
	ctx  *Context
	sock transport.Socket
	log  *slog.Logger

	state atomic.Int32

	mu      sync.Mutex
	pending map[uint32]*pendingCall
	extra   tlv.Params

	readOnce sync.Once
	readErr  atomic.Pointer[error]
}

// New creates a Session bound to ctx and sock. sock must be unconnected;
// Login drives the Connect call.
func New(ctx *Context, sock transport.Socket, log *slog.Logger) *Session {
	if log == nil {
		log = logging.NopLogger()
	}
	s := &Session{
		ctx:     ctx,
		sock:    sock,
		log:     log,
		pending: make(map[uint32]*pendingCall),
	}
	s.state.Store(int32(Idle))
	return s
}

// State returns the session's current state.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) {
	s.log.Debug("session state transition", logging.KeyState, st.String())
	s.state.Store(int32(st))
}

func (s *Session) material() sso.Material {
	return sso.Material{
		Uin:           s.ctx.Uin,
		ClientVersion: s.ctx.ClientVersion,
		ShareKey:      s.ctx.ShareKey,
		RandomKey:     s.ctx.RandomKey,
		PubKey:        s.ctx.PubKey,
	}
}

// Login drives Idle through Connecting, Handshaking and AwaitingTgtgt. It
// returns (prompt, nil) when the gateway demands interactive
// verification, (nil, nil) on success, and (nil, err) otherwise. ctx's
// deadline governs the whole call; on expiry the session transitions to
// Failed and every pending waiter resolves with a timeout.
func (s *Session) Login(ctx context.Context, host string, port int) (*CaptchaPrompt, error) {
	if s.State() != Idle {
		return nil, fmt.Errorf("session: Login called in state %s, want IDLE", s.State())
	}
	s.setState(Connecting)
	if err := s.sock.Connect(ctx, host, port); err != nil {
		s.setState(Failed)
		return nil, &TransportError{Err: err}
	}
	s.setState(Handshaking)
	s.readOnce.Do(func() { go s.readLoop() })

	req := sso.Request{
		Cmd:      loginCmd,
		SubCmd:   loginSubCmd,
		Mode:     sso.Ecdh,
		BlockIDs: nil,
		Params:   s.currentParams(),
	}
	return s.exchange(ctx, req)
}

// SubmitCaptcha resumes a session parked in AwaitingCaptcha, attaching the
// caller-supplied captcha sign and ticket to a fresh RequestTGTGT.
func (s *Session) SubmitCaptcha(ctx context.Context, sign []byte, ticket string) (*CaptchaPrompt, error) {
	if s.State() != AwaitingCaptcha {
		return nil, fmt.Errorf("session: SubmitCaptcha called in state %s, want AWAITING_CAPTCHA", s.State())
	}
	s.mu.Lock()
	s.extra.CaptchaSign = sign
	s.extra.CaptchaType = ticket
	s.mu.Unlock()

	s.setState(Handshaking)
	req := sso.Request{
		Cmd:      loginCmd,
		SubCmd:   loginSubCmd,
		Mode:     sso.Ecdh,
		BlockIDs: nil,
		Params:   s.currentParams(),
	}
	return s.exchange(ctx, req)
}

func (s *Session) currentParams() *tlv.Params {
	s.mu.Lock()
	extra := s.extra
	s.mu.Unlock()
	return s.ctx.Params(extra)
}

// exchange sends req, waits for its matching response or ctx's deadline,
// and advances the state machine from the response's content.
func (s *Session) exchange(ctx context.Context, req sso.Request) (*CaptchaPrompt, error) {
	seq, frame, err := sso.BuildRequest(req, s.material(), s.ctx.RequestSeq.Next)
	if err != nil {
		s.setState(Failed)
		return nil, err
	}

	call := &pendingCall{mode: req.Mode, result: make(chan *sso.Response, 1)}
	s.mu.Lock()
	s.pending[seq] = call
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, seq)
		s.mu.Unlock()
	}()

	s.setState(AwaitingTgtgt)
	if err := s.sock.Push(ctx, frameWithLengthPrefix(frame)); err != nil {
		s.setState(Failed)
		return nil, &TransportError{Err: err}
	}

	select {
	case <-ctx.Done():
		s.setState(Failed)
		return nil, &TimeoutError{}
	case resp := <-call.result:
		return s.handleResponse(resp)
	}
}

func (s *Session) handleResponse(resp *sso.Response) (*CaptchaPrompt, error) {
	byID := tlv.ByID(resp.Blocks)

	if blk, ok := byID[blockCaptchaImage]; ok {
		prompt, err := decodeCaptchaPrompt(blk.Body)
		if err != nil {
			s.setState(Failed)
			return nil, err
		}
		s.setState(AwaitingCaptcha)
		return prompt, nil
	}

	if blk, ok := byID[blockLoginToken]; ok {
		s.mu.Lock()
		s.extra.EncryptedA1 = append([]byte(nil), blk.Body...)
		s.mu.Unlock()
		s.setState(LoggedIn)
		return nil, nil
	}

	s.setState(Failed)
	return nil, &LoginRejectedError{Reason: "response carried neither a login token nor a captcha prompt"}
}

func decodeCaptchaPrompt(body []byte) (*CaptchaPrompt, error) {
	r := wire.NewReader(body)
	width, err := r.ReadU16(wire.BigEndian)
	if err != nil {
		return nil, err
	}
	height, err := r.ReadU16(wire.BigEndian)
	if err != nil {
		return nil, err
	}
	image, err := r.ReadBytes(r.Len())
	if err != nil {
		return nil, err
	}
	return &CaptchaPrompt{Image: image, Width: int(width), Height: int(height)}, nil
}

// frameWithLengthPrefix prepends the 4-byte big-endian total frame length
// (including the prefix itself), matching the wup.UniPacket framing
// convention this wire format uses at every socket boundary.
func frameWithLengthPrefix(frame []byte) []byte {
	w := wire.NewWriter(4 + len(frame))
	_ = w.WriteU32(uint32(4+len(frame)), wire.BigEndian)
	_ = w.WriteBytes(frame)
	return w.Bytes()
}

// readLoop pulls length-prefixed frames off the socket and dispatches
// each to its matching pending call by request_seq. It exits once the
// socket reports a fatal error; callers already waiting are never
// notified directly by readLoop, since Login/SubmitCaptcha's ctx.Done
// case is what bounds their wait — but a stuck readLoop after the socket
// dies would leave them waiting out the full deadline rather than
// failing fast, which is an accepted limitation absent a broadcast
// shutdown signal here.
func (s *Session) readLoop() {
	defer recovery.RecoverWithLog(s.log, "session.readLoop")
	bg := context.Background()
	for {
		lenBuf := make([]byte, 4)
		if err := s.pullFull(bg, lenBuf); err != nil {
			s.recordReadErr(err)
			return
		}
		total := wire.NewReader(lenBuf)
		n, err := total.ReadU32(wire.BigEndian)
		if err != nil || n < 4 {
			s.recordReadErr(fmt.Errorf("session: invalid frame length"))
			return
		}
		payload := make([]byte, n-4)
		if err := s.pullFull(bg, payload); err != nil {
			s.recordReadErr(err)
			return
		}

		seq, err := sso.PeekSeq(payload)
		if err != nil {
			s.log.Warn("session: dropping frame with unreadable seq", logging.KeyError, err)
			continue
		}
		s.mu.Lock()
		call, ok := s.pending[seq]
		s.mu.Unlock()
		if !ok {
			s.log.Warn("session: dropping frame with no matching pending request", logging.KeySeq, seq)
			continue
		}

		resp, err := sso.ParseResponse(payload, s.material().KeyFor(call.mode))
		if err != nil {
			s.log.Warn("session: dropping unparseable frame", logging.KeySeq, seq, logging.KeyError, err)
			continue
		}
		call.result <- resp
	}
}

func (s *Session) pullFull(ctx context.Context, buf []byte) error {
	for off := 0; off < len(buf); {
		n, err := s.sock.Pull(ctx, buf[off:])
		if err != nil {
			return &TransportError{Err: err}
		}
		off += n
	}
	return nil
}

func (s *Session) recordReadErr(err error) {
	s.readErr.Store(&err)
}
