package tlv

// Params collects the session and device fields the block catalogue reads
// from; it is a plain snapshot, not a live session reference, so building
// a block never mutates session state.
type Params struct {
	Uin         uint32
	PasswordMD5 [16]byte
	Guid        [16]byte

	IMEI        string
	AndroidID   string
	WifiMAC     string
	SimOperator string
	APN         string
	NetworkType byte // 1 = mobile data, 2 = wifi

	DisplayName string
	DeviceName  string
	OSType      string
	OSVersion   string

	ApkVersion    string
	SDKVersion    string
	ClientVersion uint16

	AppID            uint32
	SubAppID         uint32
	AppClientVersion uint32
	Bitmap           uint32
	SigMask          uint32
	Sig1Mask         uint32
	BuildTime        uint32
	Domain           string
	LocaleID         uint32

	SaveLoginState bool
	LoginType      byte

	RandomKey [16]byte
	ShareKey  [16]byte
	PubKey    [25]byte

	CaptchaSign []byte
	CaptchaType string
	Ksid        []byte
	Tgt         []byte
	LoginState  []byte
	ApkID       string
	ExtraToken  []byte
	RollbackSig []byte
	EncryptedA1 []byte
}

// DefaultParams returns a Params populated with the wire constants fixed
// by the external interface contract, leaving per-session fields zeroed
// for the caller to fill in.
func DefaultParams() Params {
	return Params{
		OSType:        "android",
		ApkVersion:    "5.0.0",
		SDKVersion:    "5.2.2.98",
		ClientVersion: 8001,
		AppID:         537039093,
		Bitmap:        0x7F7C,
		SigMask:       0x10400,
		Sig1Mask:      0x1E1060,
		BuildTime:     1405930122,
		Domain:        "game.qq.com",
		ApkID:         "com.tencent.minihd.qq",
	}
}

// AppSignatureMD5 is the fixed application signature digest embedded in
// TLV 0x147, per the wire constants.
var AppSignatureMD5 = [16]byte{
	0xA6, 0xB7, 0x45, 0xBF, 0x24, 0xA2, 0xC2, 0x77,
	0x52, 0x77, 0x16, 0xF6, 0xF3, 0x6E, 0xB6, 0x8D,
}
