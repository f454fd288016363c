// Package crypto provides the hashing used to bind a signature to file contents.
//
// The token signs a SHA3-512 digest of the target file, never the file itself.
// This package computes that digest over byte slices, readers and files:
//
//	digest, err := crypto.DigestFile("hello.txt")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Compare digests with Equal, which runs in constant time.
package crypto

import (
	"crypto/subtle"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/sha3"
)

// DigestSize is the length in bytes of a SHA3-512 digest
const DigestSize = 64

// Digest returns the SHA3-512 digest of data
func Digest(data []byte) []byte {
	sum := sha3.Sum512(data)
	return sum[:]
}

// DigestReader returns the SHA3-512 digest of everything read from r
func DigestReader(r io.Reader) ([]byte, error) {
	hasher := sha3.New512()
	if _, err := io.Copy(hasher, r); err != nil {
		return nil, fmt.Errorf("failed to hash data: %w", err)
	}
	return hasher.Sum(nil), nil
}

// DigestFile returns the SHA3-512 digest of the full contents of the file at path
func DigestFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return DigestReader(f)
}

// Equal reports whether two digests are identical
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
