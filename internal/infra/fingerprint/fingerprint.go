// Package fingerprint computes BLAKE3 content digests for change detection.
package fingerprint

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// ShortLen is the number of hex characters shown in listings.
const ShortLen = 12

// Hasher implements domain.Hasher with unkeyed BLAKE3-256.
type Hasher struct{}

// Ensure Hasher implements domain.Hasher.
var _ domain.Hasher = Hasher{}

// New returns a Hasher.
func New() Hasher {
	return Hasher{}
}

// Digest returns the hex BLAKE3-256 digest of data.
func (Hasher) Digest(data []byte) string {
	return Digest(data)
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Short truncates a digest for display.
func Short(digest string) string {
	if len(digest) <= ShortLen {
		return digest
	}
	return digest[:ShortLen]
}
