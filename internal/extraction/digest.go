package extraction

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

const digestChunkSize = 4096

// Digest computes the lowercase hex SHA-256 digest of the reader's content,
// streaming in fixed-size chunks so large documents never need to be held
// in memory twice.
func Digest(r io.Reader) (string, error) {
	h := sha256.New()

	buf := make([]byte, digestChunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestBytes computes the digest of an in-memory document.
func DigestBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
