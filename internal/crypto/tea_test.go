package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestTEARoundTrip(t *testing.T) {
	key := NewTEAKey([]byte("0123456789abcdef"))
	plaintexts := [][]byte{
		{},
		[]byte("a"),
		[]byte("hello, world"),
		bytes.Repeat([]byte{0x42}, 37),
	}

	for _, pt := range plaintexts {
		ct, err := TEAEncrypt(pt, key)
		if err != nil {
			t.Fatalf("TEAEncrypt(%d bytes): %v", len(pt), err)
		}
		if len(ct)%8 != 0 {
			t.Fatalf("ciphertext length %d not block aligned", len(ct))
		}
		if got, want := len(ct), TEAOutputLen(len(pt)); got != want {
			t.Fatalf("ciphertext length = %d, want %d", got, want)
		}

		got, err := TEADecrypt(ct, key)
		if err != nil {
			t.Fatalf("TEADecrypt: %v", err)
		}
		if !bytes.Equal(got, pt) {
			t.Fatalf("round trip = %x, want %x", got, pt)
		}
	}
}

func TestTEAZeroKeyFixedSizePlaintext(t *testing.T) {
	key := NewTEAKey([]byte(strings.Repeat("0", 32)[:16])) // 16 zero-padded-ASCII bytes key form used on the wire
	plaintext := bytes.Repeat([]byte{0x01}, 18)

	ct, err := TEAEncrypt(plaintext, key)
	if err != nil {
		t.Fatalf("TEAEncrypt: %v", err)
	}
	if len(ct) != 32 {
		t.Fatalf("ciphertext length = %d, want 32", len(ct))
	}

	got, err := TEADecrypt(ct, key)
	if err != nil {
		t.Fatalf("TEADecrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip = %x, want %x", got, plaintext)
	}
}

func TestTEADecryptRejectsShortInput(t *testing.T) {
	key := NewTEAKey([]byte("key"))
	if _, err := TEADecrypt([]byte{1, 2, 3, 4, 5, 6, 7, 8}, key); err == nil {
		t.Fatal("expected error for input shorter than minimum padded frame")
	}
	if _, err := TEADecrypt([]byte{1, 2, 3}, key); err == nil {
		t.Fatal("expected error for non-block-aligned input")
	}
}

func TestTEAKeyPaddingAndTruncation(t *testing.T) {
	short := NewTEAKey([]byte("abc"))
	long := NewTEAKey([]byte("0123456789abcdefEXTRA"))

	plaintext := []byte("payload")
	ct, err := TEAEncrypt(plaintext, short)
	if err != nil {
		t.Fatal(err)
	}
	got, err := TEADecrypt(ct, short)
	if err != nil || !bytes.Equal(got, plaintext) {
		t.Fatalf("short key round trip failed: %v, %x", err, got)
	}

	ct2, err := TEAEncrypt(plaintext, long)
	if err != nil {
		t.Fatal(err)
	}
	got2, err := TEADecrypt(ct2, long)
	if err != nil || !bytes.Equal(got2, plaintext) {
		t.Fatalf("long key round trip failed: %v, %x", err, got2)
	}
}
