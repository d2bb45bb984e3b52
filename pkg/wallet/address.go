// Package wallet derives and validates chain addresses.
package wallet

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// DefaultName is used for wallets created without a name.
	DefaultName = "wallet"
	// DerivedName names wallets derived from a login subject.
	DerivedName = "siwe"
)

var (
	ErrNotWalletSubject = errors.New("subject carries no wallet marker")
	ErrInvalidAddress   = errors.New("invalid wallet address")
)

var walletMarkers = map[string]struct{}{
	"siwe":   {},
	"wallet": {},
}

// FromSubject extracts the chain address from a subject shaped like
// "<provider>|<marker>|<...>0x<hex>" where marker is siwe or wallet. The
// address is returned as written, without checksum normalization.
func FromSubject(sub string) (string, error) {
	segments := strings.Split(sub, "|")
	if len(segments) < 3 {
		return "", ErrNotWalletSubject
	}
	if _, ok := walletMarkers[strings.ToLower(strings.TrimSpace(segments[1]))]; !ok {
		return "", ErrNotWalletSubject
	}
	idx := strings.Index(segments[2], "0x")
	if idx < 0 {
		return "", ErrInvalidAddress
	}
	hexPart := segments[2][idx+2:]
	if hexPart == "" {
		return "", ErrInvalidAddress
	}
	return "0x" + hexPart, nil
}

// IsSubject reports whether sub carries a wallet marker segment.
func IsSubject(sub string) bool {
	_, err := FromSubject(sub)
	return err == nil
}

// Validate checks that addr is a 20-byte hex address. Mixed-case input must
// carry a valid EIP-55 checksum.
func Validate(addr string) error {
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return ErrInvalidAddress
	}
	body := addr[2:]
	if len(body) != 40 {
		return ErrInvalidAddress
	}
	if _, err := hex.DecodeString(body); err != nil {
		return ErrInvalidAddress
	}
	lower, upper := strings.ToLower(body), strings.ToUpper(body)
	if body == lower || body == upper {
		return nil
	}
	if Checksum(addr) != "0x"+body {
		return ErrInvalidAddress
	}
	return nil
}

// Checksum returns the EIP-55 mixed-case form of addr. addr must be a 0x
// prefixed 40-character hex string.
func Checksum(addr string) string {
	body := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X"))

	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(body))
	digest := hex.EncodeToString(hash.Sum(nil))

	out := []byte(body)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			out[i] = c - 32
		}
	}
	return "0x" + string(out)
}
