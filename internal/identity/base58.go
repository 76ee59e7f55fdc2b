package identity

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// PayloadLen is the decoded length every base58 address must have.
const PayloadLen = 20

// Base58Codec resolves base58-encoded addresses. The canonical form is the
// lowercase hex of the decoded payload, so equality checks are byte-exact
// regardless of how the caller spelled the external address.
type Base58Codec struct{}

// Canonicalize decodes and validates the external address.
func (Base58Codec) Canonicalize(human string) (Address, error) {
	payload, err := base58.Decode(human)
	if err != nil {
		return "", fmt.Errorf("decode %q: %w", human, ErrInvalidAddress)
	}
	if len(payload) != PayloadLen {
		return "", fmt.Errorf("address payload is %d bytes, want %d: %w", len(payload), PayloadLen, ErrInvalidAddress)
	}
	return Address(hex.EncodeToString(payload)), nil
}

// Humanize re-encodes the canonical payload as base58.
func (Base58Codec) Humanize(addr Address) (string, error) {
	payload, err := hex.DecodeString(string(addr))
	if err != nil || len(payload) != PayloadLen {
		return "", fmt.Errorf("canonical address %q: %w", addr, ErrInvalidAddress)
	}
	return base58.Encode(payload), nil
}
