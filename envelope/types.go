// Package envelope defines the signature envelope produced by the NTRU token and
// the sign-request payload the host sends to obtain one.
//
// Both records are fixed-layout binary structures carried as lowercase hex text.
// Multi-byte integers are little-endian, which is exactly Borsh's encoding of
// u64 and fixed-size byte arrays, so the layouts are declared as Borsh structs.
//
// # Envelope Layout
//
// A sidecar (.sig) file holds the envelope hex text followed by a line terminator:
//
//	offset (hex chars)  length  field
//	0                   84      nonce (42 opaque device bytes)
//	84                  16      timestamp (u64 LE, Unix seconds)
//	100                 2       separator ('|')
//	102                 128     SHA3-512 digest of the signed file
//
// Anything after the digest is ignored.
//
// # Sign Request Layout
//
// The payload of AT+S is the hex text of timestamp (u64 LE) | '|' | digest.
//
//	payload, err := envelope.BuildSignRequest(digest, time.Now())
//
// # Parsing
//
//	env, err := envelope.Parse(sidecarBytes)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(env.CreatedAt())
package envelope

import (
	"time"

	"github.com/abw/ntru-token-client/crypto"
)

// Field sizes in raw bytes
const (
	NonceSize     = 42
	TimestampSize = 8
	SeparatorSize = 1
	DigestSize    = crypto.DigestSize
)

// Field sizes in hex characters
const (
	NonceHexLen     = NonceSize * 2
	TimestampHexLen = TimestampSize * 2
	SeparatorHexLen = SeparatorSize * 2
	DigestHexLen    = DigestSize * 2

	// MinHexLen is the shortest hex text that still reaches the end of the digest field
	MinHexLen = NonceHexLen + TimestampHexLen + SeparatorHexLen + DigestHexLen
)

// Separator is the literal byte between timestamp and digest
const Separator byte = '|'

// Size is the raw byte length of an envelope
const Size = NonceSize + TimestampSize + SeparatorSize + DigestSize

// SignRequestSize is the raw byte length of a sign request
const SignRequestSize = TimestampSize + SeparatorSize + DigestSize

// maxTimestamp is 9999-12-31T23:59:59Z, the last second with a four-digit year
const maxTimestamp = 253402300799

type Nonce [NonceSize]byte

type Digest [DigestSize]byte

// SignRequest is the payload of an AT+S command
type SignRequest struct {
	Timestamp uint64 `borsh:"timestamp"`
	Separator uint8  `borsh:"separator"`
	Digest    Digest `borsh:"digest"`
}

// Envelope is the signature record generated by the token
type Envelope struct {
	Nonce     Nonce  `borsh:"nonce"`     // fixed 42 bytes, opaque
	Timestamp uint64 `borsh:"timestamp"` // Unix seconds
	Separator uint8  `borsh:"separator"`
	Digest    Digest `borsh:"digest"` // fixed 64 bytes
}

// CreatedAt returns the envelope timestamp as a UTC time
func (e *Envelope) CreatedAt() time.Time {
	return time.Unix(int64(e.Timestamp), 0).UTC()
}
