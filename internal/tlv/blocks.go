package tlv

import (
	"encoding/binary"

	"github.com/tencentrelay/qqlogin/internal/crypto"
	"github.com/tencentrelay/qqlogin/internal/wire"
)

// deriveTgtgtKey derives the symmetric key TLV 0x106's embedded body is
// encrypted under: MD5 of the session's password digest and uin, matching
// the "key derived from session material" rule for embedded sub-bodies.
func deriveTgtgtKey(p *Params) crypto.TEAKey {
	var uinBytes [4]byte
	binary.BigEndian.PutUint32(uinBytes[:], p.Uin)
	buf := make([]byte, 0, 20)
	buf = append(buf, p.PasswordMD5[:]...)
	buf = append(buf, uinBytes[:]...)
	sum := crypto.MD5(buf)
	return crypto.NewTEAKey(sum[:])
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// WriteBlock0x1 carries the client's notion of its own IP, which this
// client never learns independently, so it is always reported as zero.
func WriteBlock0x1(b *Builder, p *Params) error {
	return b.Write(0x1, func(w *wire.Writer) error {
		if err := w.WriteU16(1, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU32(p.Uin, wire.BigEndian); err != nil {
			return err
		}
		return w.WriteBytes([]byte{0, 0, 0, 0})
	})
}

// WriteBlock0x2 carries a captcha signature from a prior verification
// round, empty on a fresh login attempt.
func WriteBlock0x2(b *Builder, p *Params) error {
	return b.Write(0x2, func(w *wire.Writer) error { return putBytes2(w, p.CaptchaSign) })
}

// WriteBlock0x8 carries the client's locale id.
func WriteBlock0x8(b *Builder, p *Params) error {
	return b.Write(0x8, func(w *wire.Writer) error {
		if err := w.WriteU16(0, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU32(p.LocaleID, wire.BigEndian); err != nil {
			return err
		}
		return w.WriteU16(0, wire.BigEndian)
	})
}

// WriteBlock0x18 carries the ping-version/app-id header every login
// request repeats.
func WriteBlock0x18(b *Builder, p *Params) error {
	return b.Write(0x18, func(w *wire.Writer) error {
		if err := w.WriteU16(1, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU32(5, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU32(p.AppID, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU32(0, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU32(p.Uin, wire.BigEndian); err != nil {
			return err
		}
		return w.WriteU16(0, wire.BigEndian)
	})
}

// WriteBlock0x100 restates the db-buf/app version header used to version
// the handshake.
func WriteBlock0x100(b *Builder, p *Params) error {
	return b.Write(0x100, func(w *wire.Writer) error {
		if err := w.WriteU16(1, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU32(5, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU32(p.AppID, wire.BigEndian); err != nil {
			return err
		}
		return w.WriteU32(p.AppClientVersion, wire.BigEndian)
	})
}

// WriteBlock0x104 echoes back an opaque login-state token the gateway
// issued on a previous round (e.g. a captcha retry), empty on first
// contact.
func WriteBlock0x104(b *Builder, p *Params) error {
	return b.Write(0x104, func(w *wire.Writer) error { return w.WriteBytes(p.LoginState) })
}

// WriteBlock0x106 is the password-login body: a fixed 98-byte plaintext
// record TEA-encrypted under a key derived from session material. The
// block's body is whatever aligned ciphertext length TEAEncrypt produces
// for a 98-byte input.
func WriteBlock0x106(b *Builder, p *Params) error {
	plain := wire.NewFixedWriter(98)
	if err := plain.WriteU16(1, wire.BigEndian); err != nil { // tgtgt version
		return err
	}
	if err := plain.WriteU32(0, wire.BigEndian); err != nil { // random seed
		return err
	}
	if err := plain.WriteU32(p.AppID, wire.BigEndian); err != nil {
		return err
	}
	if err := plain.WriteU32(p.AppClientVersion, wire.BigEndian); err != nil {
		return err
	}
	if err := plain.WriteU32(p.Uin, wire.BigEndian); err != nil {
		return err
	}
	if err := plain.WriteU32(0, wire.BigEndian); err != nil { // server time, unknown at build time
		return err
	}
	if err := plain.WriteBytes([]byte{0, 0, 0, 0}); err != nil { // client ip
		return err
	}
	if err := plain.WriteU8(boolByte(p.SaveLoginState)); err != nil {
		return err
	}
	if err := plain.WriteBytes(p.PasswordMD5[:]); err != nil {
		return err
	}
	if err := plain.WriteBytes(p.Guid[:]); err != nil {
		return err
	}
	if err := plain.WriteU32(0, wire.BigEndian); err != nil { // login type
		return err
	}
	if err := plain.WriteU32(p.SigMask, wire.BigEndian); err != nil {
		return err
	}
	remaining := 98 - plain.Len()
	if remaining > 0 {
		if err := plain.WriteBytes(make([]byte, remaining)); err != nil {
			return err
		}
	}

	key := deriveTgtgtKey(p)
	cipher, err := crypto.TEAEncrypt(plain.Bytes(), key)
	if err != nil {
		return err
	}
	return b.Write(0x106, func(w *wire.Writer) error { return w.WriteBytes(cipher) })
}

// WriteBlock0x107 carries picture-verification capability flags and the
// session key id if one was issued.
func WriteBlock0x107(b *Builder, p *Params) error {
	return b.Write(0x107, func(w *wire.Writer) error {
		if err := w.WriteU16(1, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU8(0); err != nil {
			return err
		}
		return putBytes2(w, p.Ksid)
	})
}

// WriteBlock0x108 carries the session key id (ksid) issued by the gateway.
func WriteBlock0x108(b *Builder, p *Params) error {
	return b.Write(0x108, func(w *wire.Writer) error { return w.WriteBytes(p.Ksid) })
}

// WriteBlock0x109 carries the device IMEI.
func WriteBlock0x109(b *Builder, p *Params) error {
	return b.Write(0x109, func(w *wire.Writer) error { return putString2(w, p.IMEI) })
}

// WriteBlock0x10A carries a previously issued ticket-granting ticket.
func WriteBlock0x10A(b *Builder, p *Params) error {
	return b.Write(0x10A, func(w *wire.Writer) error { return putBytes2(w, p.Tgt) })
}

// WriteBlock0x112 is reserved; the client always sends it empty.
func WriteBlock0x112(b *Builder, p *Params) error {
	return b.Write(0x112, func(w *wire.Writer) error { return nil })
}

// WriteBlock0x116 carries the ticket bitmap and app identity fields that
// select which credentials the gateway should return.
func WriteBlock0x116(b *Builder, p *Params) error {
	return b.Write(0x116, func(w *wire.Writer) error {
		if err := w.WriteU8(0); err != nil {
			return err
		}
		if err := w.WriteU32(p.Bitmap, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU32(p.SubAppID, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU32(p.AppID, wire.BigEndian); err != nil {
			return err
		}
		return w.WriteU32(p.AppClientVersion, wire.BigEndian)
	})
}

// WriteBlock0x124 carries device and network descriptors, each truncated
// to the per-field limit the wire format enforces.
func WriteBlock0x124(b *Builder, p *Params) error {
	return b.Write(0x124, func(w *wire.Writer) error {
		if err := putString1(w, p.OSType, 16); err != nil {
			return err
		}
		if err := putString1(w, p.OSVersion, 16); err != nil {
			return err
		}
		if err := w.WriteU16(uint16(p.NetworkType), wire.BigEndian); err != nil {
			return err
		}
		if err := putString1(w, p.SimOperator, 16); err != nil {
			return err
		}
		if err := w.WriteU16(0, wire.BigEndian); err != nil {
			return err
		}
		return putString1(w, p.APN, 32)
	})
}

// WriteBlock0x127 carries a reserved capability byte.
func WriteBlock0x127(b *Builder, p *Params) error {
	return b.Write(0x127, func(w *wire.Writer) error { return w.WriteU8(1) })
}

// WriteBlock0x128 carries device-guid provenance: whether the guid was
// freshly generated, the device model, and the guid bytes themselves.
func WriteBlock0x128(b *Builder, p *Params) error {
	return b.Write(0x128, func(w *wire.Writer) error {
		if err := w.WriteU16(0, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU8(1); err != nil { // guid_new
			return err
		}
		if err := w.WriteU8(1); err != nil { // guid_gen_success
			return err
		}
		if err := w.WriteU8(0); err != nil { // guid_changed
			return err
		}
		if err := w.WriteU32(0, wire.BigEndian); err != nil { // guid_flag
			return err
		}
		if err := putString2(w, p.DeviceName); err != nil {
			return err
		}
		if err := putBytes2(w, p.Guid[:]); err != nil {
			return err
		}
		return putString2(w, "")
	})
}

// WriteBlock0x141 carries SIM carrier and APN identity.
func WriteBlock0x141(b *Builder, p *Params) error {
	return b.Write(0x141, func(w *wire.Writer) error {
		if err := w.WriteU16(1, wire.BigEndian); err != nil {
			return err
		}
		if err := putString2(w, p.SimOperator); err != nil {
			return err
		}
		if err := w.WriteU16(0, wire.BigEndian); err != nil {
			return err
		}
		return putString2(w, p.APN)
	})
}

// WriteBlock0x142 carries the client apk's package identifier.
func WriteBlock0x142(b *Builder, p *Params) error {
	return b.Write(0x142, func(w *wire.Writer) error {
		if err := w.WriteU8(0); err != nil {
			return err
		}
		return putString2(w, p.ApkID)
	})
}

// WriteBlock0x143 carries a server-issued extra-credential token, opaque
// to the client.
func WriteBlock0x143(b *Builder, p *Params) error {
	return b.Write(0x143, func(w *wire.Writer) error { return putBytes2(w, p.ExtraToken) })
}

// WriteBlock0x144 is a device-info bundle: a nested block sequence
// TEA-encrypted as a whole under the session's share key before being
// embedded, the same embedding pattern TLV 0x106 uses for its own body.
func WriteBlock0x144(b *Builder, p *Params) error {
	inner := wire.NewWriter(0)
	innerBuilder := NewBuilder(inner, 0)
	if err := WriteBlock0x109(innerBuilder, p); err != nil {
		return err
	}
	if err := WriteBlock0x124(innerBuilder, p); err != nil {
		return err
	}
	if err := WriteBlock0x128(innerBuilder, p); err != nil {
		return err
	}
	if err := WriteBlock0x16E(innerBuilder, p); err != nil {
		return err
	}

	framed := wire.NewWriter(2 + inner.Len())
	if err := framed.WriteU16(uint16(innerBuilder.Count()), wire.BigEndian); err != nil {
		return err
	}
	if err := framed.WriteBytes(inner.Bytes()); err != nil {
		return err
	}

	cipher, err := crypto.TEAEncrypt(framed.Bytes(), crypto.NewTEAKey(p.ShareKey[:]))
	if err != nil {
		return err
	}
	return b.Write(0x144, func(w *wire.Writer) error { return w.WriteBytes(cipher) })
}

// WriteBlock0x145 carries the device guid on its own, for responses that
// request it outside the 0x144 bundle.
func WriteBlock0x145(b *Builder, p *Params) error {
	return b.Write(0x145, func(w *wire.Writer) error { return putBytes2(w, p.Guid[:]) })
}

// WriteBlock0x146 carries the app identity pair and apk version string.
func WriteBlock0x146(b *Builder, p *Params) error {
	return b.Write(0x146, func(w *wire.Writer) error {
		if err := w.WriteU32(p.AppID, wire.BigEndian); err != nil {
			return err
		}
		if err := w.WriteU32(p.AppID, wire.BigEndian); err != nil {
			return err
		}
		return putString2(w, p.ApkVersion)
	})
}

// WriteBlock0x147 carries the apk version and its fixed signature digest.
func WriteBlock0x147(b *Builder, p *Params) error {
	return b.Write(0x147, func(w *wire.Writer) error {
		if err := w.WriteU32(p.AppID, wire.BigEndian); err != nil {
			return err
		}
		if err := putString1(w, p.ApkVersion, 16); err != nil {
			return err
		}
		return putBytes2(w, AppSignatureMD5[:])
	})
}

// WriteBlock0x148 carries three reserved capability flags.
func WriteBlock0x148(b *Builder, p *Params) error {
	return b.Write(0x148, func(w *wire.Writer) error {
		if err := w.WriteU8(0); err != nil {
			return err
		}
		if err := w.WriteU8(1); err != nil {
			return err
		}
		return w.WriteU8(0)
	})
}

// WriteBlock0x153 carries the secondary signature mask.
func WriteBlock0x153(b *Builder, p *Params) error {
	return b.Write(0x153, func(w *wire.Writer) error { return w.WriteU32(p.Sig1Mask, wire.BigEndian) })
}

// WriteBlock0x154 is reserved for a sequence echo the gateway ignores on
// the first request of a session.
func WriteBlock0x154(b *Builder, p *Params) error {
	return b.Write(0x154, func(w *wire.Writer) error { return w.WriteU32(0, wire.BigEndian) })
}

// WriteBlock0x166 carries the account's display name.
func WriteBlock0x166(b *Builder, p *Params) error {
	return b.Write(0x166, func(w *wire.Writer) error { return putString2(w, p.DisplayName) })
}

// WriteBlock0x16A carries a previously issued ticket-granting ticket for
// reuse in a fast-path login.
func WriteBlock0x16A(b *Builder, p *Params) error {
	return b.Write(0x16A, func(w *wire.Writer) error { return putBytes2(w, p.Tgt) })
}

// WriteBlock0x16B is a reserved single-flag extension block.
func WriteBlock0x16B(b *Builder, p *Params) error {
	return b.Write(0x16B, func(w *wire.Writer) error { return w.WriteU8(0) })
}

// WriteBlock0x16E carries the human-readable device name.
func WriteBlock0x16E(b *Builder, p *Params) error {
	return b.Write(0x16E, func(w *wire.Writer) error { return putString2(w, p.DeviceName) })
}

// WriteBlock0x172 carries a rollback signature from a downgraded login
// attempt, empty when none applies.
func WriteBlock0x172(b *Builder, p *Params) error {
	return b.Write(0x172, func(w *wire.Writer) error { return putBytes2(w, p.RollbackSig) })
}

// WriteBlock0x174 carries a previously issued encrypted A1 credential.
func WriteBlock0x174(b *Builder, p *Params) error {
	return b.Write(0x174, func(w *wire.Writer) error { return putBytes2(w, p.EncryptedA1) })
}

// WriteBlock0x177 carries the client build timestamp and SDK version
// string the gateway uses to gate protocol-version-dependent behavior.
func WriteBlock0x177(b *Builder, p *Params) error {
	return b.Write(0x177, func(w *wire.Writer) error {
		if err := w.WriteU8(1); err != nil {
			return err
		}
		if err := w.WriteU32(p.BuildTime, wire.BigEndian); err != nil {
			return err
		}
		return putString2(w, p.SDKVersion)
	})
}

// WriteBlock0x17A carries a reserved login-extension flag.
func WriteBlock0x17A(b *Builder, p *Params) error {
	return b.Write(0x17A, func(w *wire.Writer) error { return w.WriteU32(0, wire.BigEndian) })
}

// WriteBlock0x17C carries the captcha type the client is prepared to
// handle, when a captcha challenge is anticipated.
func WriteBlock0x17C(b *Builder, p *Params) error {
	return b.Write(0x17C, func(w *wire.Writer) error { return putString1(w, p.CaptchaType, 0) })
}

// WriteBlock0x183 is reserved for a per-day login sequence counter this
// client does not yet track.
func WriteBlock0x183(b *Builder, p *Params) error {
	return b.Write(0x183, func(w *wire.Writer) error { return w.WriteU32(0, wire.BigEndian) })
}

// WriteBlock0x184 carries the login type and a digest derived from the
// account password, used by the gateway's risk checks.
func WriteBlock0x184(b *Builder, p *Params) error {
	return b.Write(0x184, func(w *wire.Writer) error {
		if err := w.WriteU8(p.LoginType); err != nil {
			return err
		}
		if err := putBytes2(w, p.PasswordMD5[:]); err != nil {
			return err
		}
		return w.WriteU8(1)
	})
}

// WriteBlock0x185 carries the save-login-state preference.
func WriteBlock0x185(b *Builder, p *Params) error {
	return b.Write(0x185, func(w *wire.Writer) error {
		if err := w.WriteU8(boolByte(p.SaveLoginState)); err != nil {
			return err
		}
		return w.WriteU8(1)
	})
}

// WriteBlock0x187 carries the MD5 of the device's WiFi MAC address.
func WriteBlock0x187(b *Builder, p *Params) error {
	return b.Write(0x187, func(w *wire.Writer) error {
		sum := crypto.MD5([]byte(p.WifiMAC))
		return putBytes2(w, sum[:])
	})
}

// WriteBlock0x188 carries the MD5 of the device's Android id.
func WriteBlock0x188(b *Builder, p *Params) error {
	return b.Write(0x188, func(w *wire.Writer) error {
		sum := crypto.MD5([]byte(p.AndroidID))
		return putBytes2(w, sum[:])
	})
}
