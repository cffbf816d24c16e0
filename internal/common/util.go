package common

import "github.com/google/uuid"

// WipeByteArray overwrites the contents of b with zeros. Used to drop
// passwords from memory once they have been sent.
//
// A nil slice is a no-op.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// NewRequestID returns a random correlation ID for an outbound API request.
func NewRequestID() string {
	return uuid.NewString()
}
