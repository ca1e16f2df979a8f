// Package fingerprint computes content digests of files, strings and streams.
// Every digest is returned as lowercase hex, the canonical form used in
// configuration, logs and checksum comparison.
package fingerprint

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
)

// Algorithm names a digest function
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
	BLAKE3 Algorithm = "blake3"
)

// DefaultAlgorithm is used by the package-level helpers
const DefaultAlgorithm = MD5

// bufferSize is the read size used when streaming files
const bufferSize = 64 * 1024

// ParseAlgorithm converts a case-insensitive name into an Algorithm.
// The empty string selects DefaultAlgorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultAlgorithm, nil
	case MD5:
		return MD5, nil
	case SHA256, "sha-256":
		return SHA256, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", fmt.Errorf("fingerprint: unknown algorithm %q", s)
	}
}

// Size returns the digest length in bytes, or 0 for an unknown algorithm
func (a Algorithm) Size() int {
	switch a {
	case MD5:
		return md5.Size
	case SHA256:
		return sha256.Size
	case BLAKE3:
		return 32
	}
	return 0
}

// Hasher computes digests with one algorithm
type Hasher struct {
	alg Algorithm
}

// New returns a Hasher for alg
func New(alg Algorithm) (*Hasher, error) {
	if alg.Size() == 0 {
		return nil, fmt.Errorf("fingerprint: unknown algorithm %q", string(alg))
	}
	return &Hasher{alg: alg}, nil
}

// Algorithm returns the digest function in use
func (h *Hasher) Algorithm() Algorithm {
	return h.alg
}

func (h *Hasher) newHash() hash.Hash {
	switch h.alg {
	case SHA256:
		return sha256.New()
	case BLAKE3:
		return blake3.New()
	default:
		return md5.New()
	}
}

// HashFile streams the file at path through the digest in 64 KiB reads
func (h *Hasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint: opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	digest, err := h.HashReader(file)
	if err != nil {
		return "", fmt.Errorf("fingerprint: hashing %s: %w", path, err)
	}
	return digest, nil
}

// HashReader consumes r and returns its digest
func (h *Hasher) HashReader(r io.Reader) (string, error) {
	hasher := h.newHash()
	buf := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(hasher, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashString returns the digest of the UTF-8 bytes of s
func (h *Hasher) HashString(s string) string {
	hasher := h.newHash()
	_, _ = io.WriteString(hasher, s)
	return hex.EncodeToString(hasher.Sum(nil))
}

var defaultHasher = &Hasher{alg: DefaultAlgorithm}

// HashFile returns the MD5 digest of the file at path
func HashFile(path string) (string, error) {
	return defaultHasher.HashFile(path)
}

// HashReader returns the MD5 digest of everything read from r
func HashReader(r io.Reader) (string, error) {
	return defaultHasher.HashReader(r)
}

// HashString returns the MD5 digest of s
func HashString(s string) string {
	return defaultHasher.HashString(s)
}

// ParseDigest decodes a hex digest of alg, accepting either case
func ParseDigest(alg Algorithm, hexString string) ([]byte, error) {
	decoded, err := hex.DecodeString(strings.TrimSpace(hexString))
	if err != nil {
		return nil, fmt.Errorf("fingerprint: parsing digest: %w", err)
	}
	if want := alg.Size(); len(decoded) != want {
		return nil, fmt.Errorf("fingerprint: %s digest is %d bytes, want %d", alg, len(decoded), want)
	}
	return decoded, nil
}

// Equal reports whether two hex digests name the same value, ignoring case
// and surrounding whitespace
func Equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
