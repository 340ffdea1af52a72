package session

import (
	"crypto/rand"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tencentrelay/qqlogin/internal/crypto"
	"github.com/tencentrelay/qqlogin/internal/deviceid"
	"github.com/tencentrelay/qqlogin/internal/tlv"
)

// seqModulus is the wraparound bound for request_seq and client_seq.
const seqModulus = 200

// Counter is a monotonic counter wrapping modulo seqModulus.
type Counter struct {
	v atomic.Uint32
}

// Next returns the counter's current value and advances it.
func (c *Counter) Next() uint32 {
	for {
		cur := c.v.Load()
		next := (cur + 1) % seqModulus
		if c.v.CompareAndSwap(cur, next) {
			return cur
		}
	}
}

// DeviceInfo is the device and network identity fields a login request's
// TLV body draws from.
type DeviceInfo struct {
	IMEI        string
	AndroidID   string
	WifiMAC     string
	SimOperator string
	APN         string
	NetworkType byte

	DisplayName string
	DeviceName  string
	OSVersion   string
}

// Context is the mutable per-connection record a Session owns: identity,
// device fields, key material, and the two sequence counters. It is not
// safe for concurrent mutation from more than one goroutine; the owning
// Session serialises access to it through its own single-writer loop.
type Context struct {
	Uin         uint32
	PasswordMD5 [16]byte
	ServerEpoch int64
	LocaleID    uint32
	Device      DeviceInfo

	AppClientVersion uint32
	SubAppID         uint32
	ClientVersion    uint16
	SaveLoginState   bool

	PubKey    [crypto.ECDHPubKeyLen]byte
	ShareKey  [16]byte
	RandomKey [16]byte

	RequestSeq Counter
	ClientSeq  Counter

	guidOnce sync.Once
	guid     deviceid.GUID
}

// NewContext builds a Context for uin, generating a fresh ECDH keypair
// against the fixed server public key and filling random_key with 16
// cryptographically random octets. It is invoked at most once per session,
// at construction, per the external-interface concurrency contract.
func NewContext(uin uint32, passwordMD5 [16]byte, device DeviceInfo) (*Context, error) {
	kp, err := crypto.GenerateECDHKeypair()
	if err != nil {
		return nil, fmt.Errorf("session: build context: %w", err)
	}
	c := &Context{
		Uin:         uin,
		PasswordMD5: passwordMD5,
		Device:      device,
		PubKey:      kp.PubKey,
		ShareKey:    kp.ShareKey,
	}
	if _, err := rand.Read(c.RandomKey[:]); err != nil {
		return nil, fmt.Errorf("session: fill random_key: %w", err)
	}
	return c, nil
}

// GUID returns deviceid.Compute(imei, mac), computed at most once and
// cached thereafter.
func (c *Context) GUID() deviceid.GUID {
	c.guidOnce.Do(func() {
		c.guid = deviceid.Compute(c.Device.IMEI, c.Device.WifiMAC)
	})
	return c.guid
}

// Params snapshots the context into a tlv.Params for block assembly. extra
// carries response-derived fields (ksid, tgt, captcha material, ...) that
// accumulate across round trips and are not part of the context proper.
func (c *Context) Params(extra tlv.Params) *tlv.Params {
	p := tlv.DefaultParams()
	p.Uin = c.Uin
	p.PasswordMD5 = c.PasswordMD5
	p.Guid = [16]byte(c.GUID())
	p.IMEI = c.Device.IMEI
	p.AndroidID = c.Device.AndroidID
	p.WifiMAC = c.Device.WifiMAC
	p.SimOperator = c.Device.SimOperator
	p.APN = c.Device.APN
	p.NetworkType = c.Device.NetworkType
	p.DisplayName = c.Device.DisplayName
	p.DeviceName = c.Device.DeviceName
	p.OSVersion = c.Device.OSVersion
	p.AppClientVersion = c.AppClientVersion
	p.SubAppID = c.SubAppID
	if c.ClientVersion != 0 {
		p.ClientVersion = c.ClientVersion
	}
	p.LocaleID = c.LocaleID
	p.SaveLoginState = c.SaveLoginState
	p.RandomKey = c.RandomKey
	p.ShareKey = c.ShareKey
	p.PubKey = c.PubKey

	p.CaptchaSign = extra.CaptchaSign
	p.CaptchaType = extra.CaptchaType
	p.Ksid = extra.Ksid
	p.Tgt = extra.Tgt
	p.LoginState = extra.LoginState
	p.ExtraToken = extra.ExtraToken
	p.RollbackSig = extra.RollbackSig
	p.EncryptedA1 = extra.EncryptedA1
	return &p
}
