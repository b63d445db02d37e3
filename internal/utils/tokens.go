package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// MinTokenBytes is the entropy floor for magic-link secrets.
const MinTokenBytes = 36

// NewRandomToken returns nBytes of crypto/rand entropy as hex.
// Anything below MinTokenBytes is raised to it.
func NewRandomToken(nBytes int) (string, error) {
	if nBytes < MinTokenBytes {
		nBytes = MinTokenBytes
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
