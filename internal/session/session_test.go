package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tencentrelay/qqlogin/internal/sso"
	"github.com/tencentrelay/qqlogin/internal/tlv"
)

// fakeSocket answers every pushed request frame with a synthesized
// response built from respond, standing in for the login gateway.
type fakeSocket struct {
	respond func(reqFrame []byte, seq uint32) []byte // returns a full (unwrapped) sso frame, or nil to drop

	mu       sync.Mutex
	leftover []byte
	pullCh   chan []byte
}

func newFakeSocket(respond func([]byte, uint32) []byte) *fakeSocket {
	return &fakeSocket{respond: respond, pullCh: make(chan []byte, 8)}
}

func (f *fakeSocket) Connect(ctx context.Context, host string, port int) error { return nil }

func (f *fakeSocket) Push(ctx context.Context, data []byte) error {
	if len(data) < 4 {
		return nil
	}
	reqFrame := data[4:]
	seq, err := sso.PeekSeq(reqFrame)
	if err != nil {
		return err
	}
	respFrame := f.respond(reqFrame, seq)
	if respFrame == nil {
		return nil
	}
	f.pullCh <- frameWithLengthPrefix(respFrame)
	return nil
}

func (f *fakeSocket) Pull(ctx context.Context, buf []byte) (int, error) {
	f.mu.Lock()
	if len(f.leftover) == 0 {
		f.mu.Unlock()
		select {
		case chunk := <-f.pullCh:
			f.mu.Lock()
			f.leftover = chunk
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	n := copy(buf, f.leftover)
	f.leftover = f.leftover[n:]
	f.mu.Unlock()
	return n, nil
}

func (f *fakeSocket) Close() error { return nil }

func testDevice() DeviceInfo {
	return DeviceInfo{
		IMEI:        "000000000000000",
		AndroidID:   "android-id",
		WifiMAC:     "00:11:22:33:44:55",
		SimOperator: "CMCC",
		APN:         "cmnet",
		DisplayName: "tester",
		DeviceName:  "Nexus 5",
		OSVersion:   "4.4.4",
	}
}

// sharedTestMaterial lets the fake server decode/re-encode using the same
// key material the client used, since both sides of this in-memory test
// share one Context's key material.
var sharedTestMaterial sso.Material

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := NewContext(10001, [16]byte{1, 2, 3}, testDevice())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	ctx.ClientVersion = 8001
	sharedTestMaterial = sso.Material{
		Uin:           ctx.Uin,
		ClientVersion: ctx.ClientVersion,
		ShareKey:      ctx.ShareKey,
		RandomKey:     ctx.RandomKey,
		PubKey:        ctx.PubKey,
	}
	return ctx
}

func TestLoginSucceedsOnTokenResponse(t *testing.T) {
	c := newTestContext(t)
	sock := newFakeSocket(func(reqFrame []byte, seq uint32) []byte {
		resp, err := sso.ParseResponse(reqFrame, sharedTestMaterial.KeyFor(sso.Ecdh))
		if err != nil {
			t.Fatalf("server: ParseResponse: %v", err)
		}
		blocks := []tlv.Block{{ID: blockLoginToken, Body: []byte("a1-session-token")}}
		frame, err := sso.BuildFrameFromBlocks(loginCmd, seq, resp.SubCmd, sso.Ecdh, sharedTestMaterial, blocks)
		if err != nil {
			t.Fatalf("server: BuildFrameFromBlocks: %v", err)
		}
		return frame
	})

	s := New(c, sock, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	prompt, err := s.Login(ctx, "127.0.0.1", 8080)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if prompt != nil {
		t.Fatalf("expected no captcha prompt, got %+v", prompt)
	}
	if s.State() != LoggedIn {
		t.Fatalf("state = %s, want LOGGED_IN", s.State())
	}
}

func TestLoginReturnsCaptchaPrompt(t *testing.T) {
	c := newTestContext(t)
	sock := newFakeSocket(func(reqFrame []byte, seq uint32) []byte {
		resp, err := sso.ParseResponse(reqFrame, sharedTestMaterial.KeyFor(sso.Ecdh))
		if err != nil {
			t.Fatalf("server: ParseResponse: %v", err)
		}
		body := []byte{0x00, 0x64, 0x00, 0x32} // width=100, height=50
		body = append(body, []byte("fake-png-bytes")...)
		blocks := []tlv.Block{{ID: blockCaptchaImage, Body: body}}
		frame, err := sso.BuildFrameFromBlocks(loginCmd, seq, resp.SubCmd, sso.Ecdh, sharedTestMaterial, blocks)
		if err != nil {
			t.Fatalf("server: BuildFrameFromBlocks: %v", err)
		}
		return frame
	})

	s := New(c, sock, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	prompt, err := s.Login(ctx, "127.0.0.1", 8080)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if prompt == nil {
		t.Fatal("expected a captcha prompt")
	}
	if prompt.Width != 100 || prompt.Height != 50 {
		t.Fatalf("prompt dims = %dx%d, want 100x50", prompt.Width, prompt.Height)
	}
	if s.State() != AwaitingCaptcha {
		t.Fatalf("state = %s, want AWAITING_CAPTCHA", s.State())
	}
}

func TestLoginFailsOnDeadlineExceeded(t *testing.T) {
	c := newTestContext(t)
	sock := newFakeSocket(func(reqFrame []byte, seq uint32) []byte { return nil }) // never responds

	s := New(c, sock, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := s.Login(ctx, "127.0.0.1", 8080)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if _, ok := err.(*TimeoutError); !ok {
		t.Fatalf("err = %T, want *TimeoutError", err)
	}
	if s.State() != Failed {
		t.Fatalf("state = %s, want FAILED", s.State())
	}
}

func TestCounterWrapsModulo200(t *testing.T) {
	var c Counter
	for i := 0; i < 199; i++ {
		c.Next()
	}
	v := c.Next()
	if v != 199 {
		t.Fatalf("200th Next() = %d, want 199", v)
	}
	v = c.Next()
	if v != 0 {
		t.Fatalf("201st Next() = %d, want 0 after wraparound", v)
	}
}

func TestContextGUIDCachedAfterFirstCall(t *testing.T) {
	c := newTestContext(t)
	g1 := c.GUID()
	c.Device.IMEI = "changed"
	g2 := c.GUID()
	if g1 != g2 {
		t.Fatal("GUID changed after first computation, want cached value")
	}
}
