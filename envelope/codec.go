package envelope

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/near/borsh-go"
)

var (
	// ErrMalformed reports a length, hex or layout failure in an envelope
	ErrMalformed = errors.New("malformed signature envelope")
	// ErrTimestampInvalid reports a zero or out-of-range envelope timestamp
	ErrTimestampInvalid = errors.New("invalid signature timestamp")
)

// EncodeHex maps each byte to two lowercase hex characters
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex is the inverse of EncodeHex. Odd length or non-hex input fails with ErrMalformed.
func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return b, nil
}

// BuildSignRequest returns the hex-encoded AT+S payload for a file digest taken at now
func BuildSignRequest(digest []byte, now time.Time) (string, error) {
	if len(digest) != DigestSize {
		return "", fmt.Errorf("invalid digest length: expected %d bytes, got %d", DigestSize, len(digest))
	}
	secs := now.Unix()
	if secs <= 0 {
		return "", fmt.Errorf("clock is not after the Unix epoch: %s", now)
	}

	req := SignRequest{
		Timestamp: uint64(secs),
		Separator: Separator,
	}
	copy(req.Digest[:], digest)

	raw, err := borsh.Serialize(req)
	if err != nil {
		return "", fmt.Errorf("failed to serialize sign request: %w", err)
	}
	return EncodeHex(raw), nil
}

// TrimLineEnd strips every trailing CR and LF byte
func TrimLineEnd(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

// Validate checks a sidecar after trailing line terminators are removed: it must
// be hex text of even length, at least MinHexLen long. Anything that passes can be
// sent to the token as a single command line.
func Validate(sig []byte) error {
	sig = TrimLineEnd(sig)
	if len(sig)%2 != 0 {
		return fmt.Errorf("%w: odd length %d", ErrMalformed, len(sig))
	}
	if len(sig) < MinHexLen {
		return fmt.Errorf("%w: length %d is shorter than %d", ErrMalformed, len(sig), MinHexLen)
	}
	for i, c := range sig {
		if !isHexDigit(c) {
			return fmt.Errorf("%w: byte %q at offset %d is not hex", ErrMalformed, c, i)
		}
	}
	return nil
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// Parse decodes the envelope carried in sidecar hex text
func Parse(sig []byte) (*Envelope, error) {
	if err := Validate(sig); err != nil {
		return nil, err
	}
	sig = TrimLineEnd(sig)

	raw, err := DecodeHex(string(sig[:MinHexLen]))
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := borsh.Deserialize(&env, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if env.Timestamp == 0 {
		return nil, fmt.Errorf("%w: %w: zero", ErrMalformed, ErrTimestampInvalid)
	}
	if env.Timestamp > maxTimestamp {
		return nil, fmt.Errorf("%w: %w: %d is out of range", ErrMalformed, ErrTimestampInvalid, env.Timestamp)
	}

	return &env, nil
}

// Encode returns the hex text of an envelope, without a line terminator
func Encode(env *Envelope) (string, error) {
	raw, err := borsh.Serialize(*env)
	if err != nil {
		return "", fmt.Errorf("failed to serialize envelope: %w", err)
	}
	return EncodeHex(raw), nil
}
