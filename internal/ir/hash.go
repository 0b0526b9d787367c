package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix leaves
// room for changing the hashed fields later.
const (
	DomainEvent  = "trigharness/event/v1"
	DomainReport = "trigharness/report/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps domain and data from running into each other.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes the ID of a synthetic event. The ID depends only on where
// the event came from, so re-running a fixture set reproduces every ID.
func EventID(fixture string, markerIndex int, kind string, start, end int) (string, error) {
	obj := Object{
		"fixture":      String(fixture),
		"marker_index": Int(markerIndex),
		"kind":         String(kind),
		"start":        Int(start),
		"end":          Int(end),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// Digest hashes the canonical form of v under domain.
func Digest(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}
