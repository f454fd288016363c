// Package testdata provides embedded test fixtures for use across all test packages.
package testdata

import _ "embed"

// HelloTxt is a two byte file ("hi") signed by HelloSig
//
//go:embed hello.txt
var HelloTxt []byte

// HelloSig is a sidecar for HelloTxt as written by a token at Unix time 1700000000
//
//go:embed hello.txt.sig
var HelloSig []byte

// HelloSignedAt is the timestamp embedded in HelloSig
const HelloSignedAt = 1700000000

// HelloDigestHex is SHA3-512("hi")
const HelloDigestHex = "154013cb8140c753f0ac358da6110fe237481b26c75c3ddc1b59eaf9dd7b46a0a3aeb2cef164b3c82d65b38a4e26ea9930b7b2cb3c01da4ba331c95e62ccb9c3"
