package signer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abw/ntru-token-client/crypto"
	"github.com/abw/ntru-token-client/envelope"
	log "github.com/sirupsen/logrus"
)

// Token commands and their reply line counts
const (
	cmdInfo   = "AT+I"
	cmdSign   = "AT+S "
	cmdVerify = "AT+V "

	infoLines   = 4
	replyLines  = 1
	errorMarker = "ERROR"
)

// MinCapacity is the smallest maximum message length a token may report: the
// digest plus the timestamp/separator and line terminator overhead.
const MinCapacity = crypto.DigestSize + envelope.TimestampSize + 2

// Token is an initialized session with a token
type Token interface {
	Exchange(ctx context.Context, command []byte, lines int) ([]byte, error)
	Close() error
}

// Connector opens a token session on demand
type Connector interface {
	Connect(ctx context.Context) (Token, error)
}

// ConnectorFunc adapts a function to Connector
type ConnectorFunc func(ctx context.Context) (Token, error)

// Connect implements Connector
func (f ConnectorFunc) Connect(ctx context.Context) (Token, error) {
	return f(ctx)
}

// Service implements the sign and verify workflows
type Service struct {
	connector Connector
	now       func() time.Time
}

// NewService creates a new signing service. The token is connected lazily, after
// local files have been read and validated.
func NewService(connector Connector) *Service {
	return &Service{
		connector: connector,
		now:       time.Now,
	}
}

// IsSidecar reports whether path names a signature file
func IsSidecar(path string) bool {
	return strings.HasSuffix(path, SidecarSuffix)
}

// SidecarPath returns the signature path for a file
func SidecarPath(path string) string {
	return path + SidecarSuffix
}

// BasePath returns the signed file's path for a signature path
func BasePath(sidecarPath string) string {
	return strings.TrimSuffix(sidecarPath, SidecarSuffix)
}

// Info queries the token's identification lines and capacity
func (s *Service) Info(ctx context.Context) (*DeviceInfo, error) {
	tok, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer tok.Close()

	return s.queryInfo(ctx, tok)
}

// Sign signs the file at path and writes its envelope to the sidecar
func (s *Service) Sign(ctx context.Context, path string) (*SignResult, error) {
	digest, err := crypto.DigestFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileIO, err)
	}
	now := s.now()
	payload, err := envelope.BuildSignRequest(digest, now)
	if err != nil {
		return nil, err
	}
	log.Debugf("SHA3-512(%s) = %x", path, digest)

	tok, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer tok.Close()

	info, err := s.checkCapacity(ctx, tok)
	if err != nil {
		return nil, err
	}

	reply, err := tok.Exchange(ctx, command(cmdSign, []byte(payload)), replyLines)
	if err != nil {
		return nil, fmt.Errorf("error while signing: %w", err)
	}
	if bytes.Contains(reply, []byte(errorMarker)) {
		return nil, fmt.Errorf("%w: signature creation failed", ErrProtocol)
	}

	sidecar := SidecarPath(path)
	if err := writeSidecar(sidecar, append(reply, '\r', '\n')); err != nil {
		return nil, err
	}
	log.Infof("signature for %s written to %s", path, sidecar)

	return &SignResult{
		Path:        path,
		SidecarPath: sidecar,
		DigestHex:   envelope.EncodeHex(digest),
		SignedAt:    time.Unix(now.Unix(), 0).UTC(),
		Envelope:    string(reply),
		Device:      info,
	}, nil
}

// Verify checks the signature stored at sidecarPath against the token and the
// file it was made for
func (s *Service) Verify(ctx context.Context, sidecarPath string) (*VerifyResult, error) {
	if !IsSidecar(sidecarPath) {
		return nil, fmt.Errorf("%w: %s does not end in %s", envelope.ErrMalformed, sidecarPath, SidecarSuffix)
	}

	raw, err := os.ReadFile(sidecarPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileIO, err)
	}
	sig := envelope.TrimLineEnd(raw)
	if err := envelope.Validate(sig); err != nil {
		return nil, fmt.Errorf("invalid signature file %s: %w", sidecarPath, err)
	}

	tok, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer tok.Close()

	info, err := s.checkCapacity(ctx, tok)
	if err != nil {
		return nil, err
	}

	reply, err := tok.Exchange(ctx, command(cmdVerify, sig), replyLines)
	if err != nil {
		return nil, fmt.Errorf("error while verifying: %w", err)
	}
	if bytes.Contains(reply, []byte(errorMarker)) {
		return nil, fmt.Errorf("%w: signature is invalid", ErrProtocol)
	}

	env, err := envelope.Parse(sig)
	if err != nil {
		return nil, err
	}

	basePath := BasePath(sidecarPath)
	digest, err := crypto.DigestFile(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read base file: %w", ErrFileIO, err)
	}
	if !crypto.Equal(digest, env.Digest[:]) {
		log.Debugf("embedded digest %x, file digest %x", env.Digest, digest)
		return nil, fmt.Errorf("%w: %s", ErrHashMismatch, basePath)
	}

	return &VerifyResult{
		Valid:       true,
		Path:        basePath,
		SidecarPath: sidecarPath,
		DigestHex:   envelope.EncodeHex(env.Digest[:]),
		CreatedAt:   env.CreatedAt(),
		Device:      info,
	}, nil
}

// checkCapacity refuses tokens that cannot hold a sign or verify payload
func (s *Service) checkCapacity(ctx context.Context, tok Token) (*DeviceInfo, error) {
	info, err := s.queryInfo(ctx, tok)
	if err != nil {
		return nil, err
	}
	log.Debugf("token capacity %d, need %d", info.MaxMessageLen, MinCapacity)
	if info.MaxMessageLen < MinCapacity {
		return nil, fmt.Errorf("%w: token accepts %d bytes, need at least %d",
			ErrCapacity, info.MaxMessageLen, MinCapacity)
	}
	return info, nil
}

func (s *Service) queryInfo(ctx context.Context, tok Token) (*DeviceInfo, error) {
	reply, err := tok.Exchange(ctx, command(cmdInfo, nil), infoLines)
	if err != nil {
		return nil, fmt.Errorf("error getting device info: %w", err)
	}
	return parseInfo(reply)
}

// parseInfo reads the maximum message length from the last token of the last line
func parseInfo(reply []byte) (*DeviceInfo, error) {
	lines := strings.Split(string(reply), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}

	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: device info has no capacity field", ErrProtocol)
	}
	maxLen, err := strconv.ParseUint(fields[len(fields)-1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed device capacity %q", ErrProtocol, fields[len(fields)-1])
	}

	return &DeviceInfo{
		Lines:         lines,
		MaxMessageLen: maxLen,
	}, nil
}

func command(prefix string, payload []byte) []byte {
	cmd := make([]byte, 0, len(prefix)+len(payload)+2)
	cmd = append(cmd, prefix...)
	cmd = append(cmd, payload...)
	return append(cmd, '\r', '\n')
}

// writeSidecar replaces path with data so that no partial signature is ever visible
func writeSidecar(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: error writing signature to file: %w", ErrFileIO, err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0644)
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: error writing signature to file: %w", ErrFileIO, err)
	}
	return nil
}
