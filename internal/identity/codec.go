// Package identity resolves external address strings to canonical identities.
// The oracle core never compares raw addresses, only canonical forms produced
// by a Codec.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Address is the canonical internal form of a participant identity.
// Two identities are the same participant iff their Addresses are equal.
type Address string

// ErrInvalidAddress reports an external address the codec cannot resolve.
var ErrInvalidAddress = errors.New("invalid address")

// Codec maps a caller-supplied external address to its canonical form and
// renders canonical addresses back to external form for query responses.
type Codec interface {
	Canonicalize(human string) (Address, error)
	Humanize(addr Address) (string, error)
}

// RawCodec treats the trimmed, lowercased external string as canonical.
// Suitable for memory deployments and tests; carries no checksum.
type RawCodec struct{}

// Canonicalize normalizes the external address.
func (RawCodec) Canonicalize(human string) (Address, error) {
	normalized := strings.ToLower(strings.TrimSpace(human))
	if normalized == "" {
		return "", fmt.Errorf("empty address: %w", ErrInvalidAddress)
	}
	return Address(normalized), nil
}

// Humanize renders the canonical address back as-is.
func (RawCodec) Humanize(addr Address) (string, error) {
	if addr == "" {
		return "", fmt.Errorf("empty canonical address: %w", ErrInvalidAddress)
	}
	return string(addr), nil
}
