package identity

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
)

func TestRawCodecNormalizes(t *testing.T) {
	codec := RawCodec{}

	a, err := codec.Canonicalize("  Owner0000 ")
	if err != nil {
		t.Fatalf("Canonicalize() err = %v", err)
	}
	b, err := codec.Canonicalize("owner0000")
	if err != nil {
		t.Fatalf("Canonicalize() err = %v", err)
	}
	if a != b {
		t.Fatalf("canonical forms differ: %q vs %q", a, b)
	}

	human, err := codec.Humanize(a)
	if err != nil {
		t.Fatalf("Humanize() err = %v", err)
	}
	if human != "owner0000" {
		t.Fatalf("Humanize() = %q", human)
	}
}

func TestRawCodecRejectsEmpty(t *testing.T) {
	codec := RawCodec{}
	if _, err := codec.Canonicalize("   "); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("err = %v, want ErrInvalidAddress", err)
	}
}

func TestBase58CodecRoundTrip(t *testing.T) {
	codec := Base58Codec{}

	payload := bytes.Repeat([]byte{0xab}, PayloadLen)
	human := base58.Encode(payload)

	addr, err := codec.Canonicalize(human)
	if err != nil {
		t.Fatalf("Canonicalize() err = %v", err)
	}
	back, err := codec.Humanize(addr)
	if err != nil {
		t.Fatalf("Humanize() err = %v", err)
	}
	if back != human {
		t.Fatalf("round trip: got %q, want %q", back, human)
	}
}

func TestBase58CodecRejectsBadInput(t *testing.T) {
	codec := Base58Codec{}

	// '0' is not in the base58 alphabet.
	if _, err := codec.Canonicalize("owner0000"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("alphabet err = %v, want ErrInvalidAddress", err)
	}

	// Valid alphabet but wrong payload length.
	short := base58.Encode([]byte{1, 2, 3})
	if _, err := codec.Canonicalize(short); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("length err = %v, want ErrInvalidAddress", err)
	}
}
