// Package signer signs files with an NTRU token and verifies the resulting
// sidecar signatures.
//
// # Signing
//
// Sign hashes the file with SHA3-512, asks the token to sign timestamp|digest
// and stores the token's reply, the signature envelope, in <path>.sig:
//
//	service := signer.NewService(connector)
//	result, err := service.Sign(ctx, "firmware.bin")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.SidecarPath)
//
// # Verification
//
// Verify sends the stored envelope back to the token, then checks that the
// digest embedded in it still matches the file next to the sidecar:
//
//	result, err := service.Verify(ctx, "firmware.bin.sig")
//	if errors.Is(err, signer.ErrHashMismatch) {
//		log.Fatal("file was modified after signing")
//	}
//
// Both flows first ask the token for its maximum message length and refuse to
// send a payload it cannot hold.
package signer

import (
	"errors"
	"time"
)

var (
	// ErrProtocol reports an ERROR reply or an unintelligible reply from the token
	ErrProtocol = errors.New("token reported an error")
	// ErrCapacity reports a token whose maximum message length is too small
	ErrCapacity = errors.New("device message capacity insufficient")
	// ErrFileIO reports a failure reading or writing the target or sidecar file
	ErrFileIO = errors.New("file access failed")
	// ErrHashMismatch reports a file whose digest differs from the signed one
	ErrHashMismatch = errors.New("signature does not match base file")
)

// SidecarSuffix is appended to a file path to name its signature
const SidecarSuffix = ".sig"

// DeviceInfo is the parsed reply to AT+I
type DeviceInfo struct {
	Lines         []string `json:"lines"`
	MaxMessageLen uint64   `json:"maxMessageLength"`
}

// SignResult represents the result of signing a file
type SignResult struct {
	Path        string      `json:"path"`
	SidecarPath string      `json:"signature"`
	DigestHex   string      `json:"digest"`
	SignedAt    time.Time   `json:"signedAt"`
	Envelope    string      `json:"-"`
	Device      *DeviceInfo `json:"-"`
}

// VerifyResult represents the result of verifying a sidecar
type VerifyResult struct {
	Valid       bool        `json:"valid"`
	Path        string      `json:"path"`
	SidecarPath string      `json:"signature"`
	DigestHex   string      `json:"digest"`
	CreatedAt   time.Time   `json:"createdAt"`
	Device      *DeviceInfo `json:"-"`
}
