package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainValue is the hash domain for resolved values.
// Version suffix enables future algorithm migration.
const DomainValue = "confql/value/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns a content hash of v computed over its canonical JSON.
// Structurally equal values hash identically regardless of mapping order.
func Hash(v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("Hash: failed to marshal: %w", err)
	}
	return "sha256:" + hashWithDomain(DomainValue, canonical), nil
}
