package token

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
)

const readChunkSize = 64

// LineEnd terminates every command sent to the token
var LineEnd = []byte("\r\n")

// Session owns the serial port of one token. Exchanges are strictly sequential:
// a Session must not be used from more than one goroutine.
type Session struct {
	port     Port
	timeouts Timeouts
}

// NewSession wraps an open port
func NewSession(port Port, timeouts Timeouts) *Session {
	return &Session{
		port:     port,
		timeouts: timeouts,
	}
}

// Init performs the handshake: a bare line terminator must be answered with at
// least one newline before the handshake deadline.
func (s *Session) Init(ctx context.Context) error {
	if err := s.port.SetReadTimeout(s.timeouts.Read); err != nil {
		return fmt.Errorf("failed to set read timeout: %w", err)
	}
	if err := s.write(LineEnd); err != nil {
		return err
	}

	reply, _, err := s.await(ctx, 1, s.timeouts.Handshake)
	if err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}
	log.Debugf("token handshake reply: %q", reply)
	return nil
}

// Exchange writes command and waits until lines newline bytes have arrived. The
// reply is returned with the terminator of its last line removed; line breaks
// inside the reply are preserved and anything after the expected lines is dropped.
func (s *Session) Exchange(ctx context.Context, command []byte, lines int) ([]byte, error) {
	if lines < 1 {
		return nil, fmt.Errorf("invalid expected line count: %d", lines)
	}

	log.Debugf("-> %q", command)
	if err := s.write(command); err != nil {
		return nil, err
	}

	reply, remaining, err := s.await(ctx, lines, s.timeouts.Command)
	if err != nil {
		return nil, err
	}

	reply = trimLines(reply, remaining)
	log.Debugf("<- %q", reply)
	return reply, nil
}

// Close releases the port
func (s *Session) Close() error {
	return s.port.Close()
}

func (s *Session) write(b []byte) error {
	for len(b) > 0 {
		n, err := s.port.Write(b)
		if err != nil {
			return fmt.Errorf("failed to write to token: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("failed to write to token: %w", io.ErrShortWrite)
		}
		b = b[n:]
	}
	return nil
}

// await accumulates reads until lines newline bytes have been seen or timeout
// elapses. It returns the accumulated bytes and the remaining line count, which
// is zero or negative when the device sent more lines than expected.
func (s *Session) await(ctx context.Context, lines int, timeout time.Duration) ([]byte, int, error) {
	var (
		res       = make([]byte, 0, 1024)
		chunk     = make([]byte, readChunkSize)
		remaining = lines
		deadline  = time.Now().Add(timeout)
	)

	for {
		n, err := s.port.Read(chunk)
		if err != nil {
			return nil, remaining, fmt.Errorf("failed to read from token: %w", err)
		}
		if n > 0 {
			res = append(res, chunk[:n]...)
			remaining -= bytes.Count(chunk[:n], []byte{'\n'})
		}
		if remaining <= 0 {
			return res, remaining, nil
		}
		if time.Now().After(deadline) {
			log.Debugf("timed out with %d of %d lines outstanding: %q", remaining, lines, res)
			return nil, remaining, fmt.Errorf("%w within %s", ErrTimeout, timeout)
		}
		if n > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, remaining, ctx.Err()
		case <-time.After(s.timeouts.Poll):
		}
	}
}

// trimLines drops trailing terminator runs until remaining reaches one, each run
// counting as one line. Bytes of surplus lines are dropped along the way.
func trimLines(res []byte, remaining int) []byte {
	for remaining <= 0 && len(res) > 0 {
		if !isLineEnd(res[len(res)-1]) {
			res = res[:len(res)-1]
			continue
		}
		for len(res) > 0 && isLineEnd(res[len(res)-1]) {
			res = res[:len(res)-1]
		}
		remaining++
	}
	return res
}

func isLineEnd(c byte) bool {
	return c == '\n' || c == '\r'
}
