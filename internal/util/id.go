package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a 24-character random hex string, used for request ids and
// opaque session tokens.
func NewID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("util: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
