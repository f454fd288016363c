package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTimeouts = Timeouts{
	Read:      10 * time.Millisecond,
	Poll:      time.Millisecond,
	Handshake: 50 * time.Millisecond,
	Command:   80 * time.Millisecond,
}

// scriptedPort answers each write with the next scripted reply, delivered in
// chunks of at most chunk bytes per read.
type scriptedPort struct {
	replies     [][]byte
	chunk       int
	pending     []byte
	written     [][]byte
	readTimeout time.Duration
	writeErr    error
	readErr     error
	closed      bool
}

func (p *scriptedPort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written = append(p.written, append([]byte(nil), b...))
	if len(p.replies) > 0 {
		p.pending = append(p.pending, p.replies[0]...)
		p.replies = p.replies[1:]
	}
	return len(b), nil
}

func (p *scriptedPort) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	n := len(p.pending)
	if p.chunk > 0 && n > p.chunk {
		n = p.chunk
	}
	n = copy(b, p.pending[:n])
	p.pending = p.pending[n:]
	return n, nil
}

func (p *scriptedPort) SetReadTimeout(t time.Duration) error {
	p.readTimeout = t
	return nil
}

func (p *scriptedPort) Close() error {
	p.closed = true
	return nil
}

func TestSessionInit(t *testing.T) {
	t.Run("newline answers handshake", func(t *testing.T) {
		port := &scriptedPort{replies: [][]byte{[]byte("\r\n")}}
		s := NewSession(port, testTimeouts)

		require.NoError(t, s.Init(context.Background()))
		assert.Equal(t, testTimeouts.Read, port.readTimeout)
		require.Len(t, port.written, 1)
		assert.Equal(t, "\r\n", string(port.written[0]))
	})

	t.Run("reply split across reads", func(t *testing.T) {
		port := &scriptedPort{replies: [][]byte{[]byte("hello token\r\n")}, chunk: 3}
		s := NewSession(port, testTimeouts)

		require.NoError(t, s.Init(context.Background()))
	})

	t.Run("silence times out", func(t *testing.T) {
		port := &scriptedPort{}
		s := NewSession(port, testTimeouts)

		start := time.Now()
		err := s.Init(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTimeout))
		assert.GreaterOrEqual(t, time.Since(start), testTimeouts.Handshake)
	})

	t.Run("text without newline times out", func(t *testing.T) {
		port := &scriptedPort{replies: [][]byte{[]byte("partial")}}
		s := NewSession(port, testTimeouts)

		err := s.Init(context.Background())
		assert.True(t, errors.Is(err, ErrTimeout))
	})

	t.Run("write failure", func(t *testing.T) {
		port := &scriptedPort{writeErr: errors.New("unplugged")}
		s := NewSession(port, testTimeouts)

		err := s.Init(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unplugged")
	})
}

func TestSessionExchange(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		lines int
		chunk int
		want  string
	}{
		{
			name:  "single line",
			reply: "0123abcd\r\n",
			lines: 1,
			want:  "0123abcd",
		},
		{
			name:  "single line LF only",
			reply: "0123abcd\n",
			lines: 1,
			want:  "0123abcd",
		},
		{
			name:  "four line info keeps inner breaks",
			reply: "ABW\r\nSTM32 NTRU Token\r\nfw 1.2\r\nmax 256\r\n",
			lines: 4,
			want:  "ABW\r\nSTM32 NTRU Token\r\nfw 1.2\r\nmax 256",
		},
		{
			name:  "chunked delivery",
			reply: "ABW\r\nSTM32 NTRU Token\r\nfw 1.2\r\nmax 256\r\n",
			lines: 4,
			chunk: 5,
			want:  "ABW\r\nSTM32 NTRU Token\r\nfw 1.2\r\nmax 256",
		},
		{
			name:  "surplus line dropped",
			reply: "first\r\nsecond\r\n",
			lines: 1,
			want:  "first",
		},
		{
			name:  "blank line consumes count",
			reply: "\r\nvalue\r\n",
			lines: 2,
			want:  "\r\nvalue",
		},
		{
			name:  "surplus collapses to empty",
			reply: "x\r\n\r\n",
			lines: 1,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &scriptedPort{replies: [][]byte{[]byte(tt.reply)}, chunk: tt.chunk}
			s := NewSession(port, testTimeouts)

			got, err := s.Exchange(context.Background(), []byte("AT+X\r\n"), tt.lines)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, "AT+X\r\n", string(port.written[0]))
		})
	}
}

func TestSessionExchangeTimeout(t *testing.T) {
	t.Run("fewer lines than expected", func(t *testing.T) {
		port := &scriptedPort{replies: [][]byte{[]byte("a\r\nb\r\n")}}
		s := NewSession(port, testTimeouts)

		start := time.Now()
		got, err := s.Exchange(context.Background(), []byte("AT+I\r\n"), 4)
		require.Error(t, err)
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, ErrTimeout))
		assert.GreaterOrEqual(t, time.Since(start), testTimeouts.Command)
	})

	t.Run("no reply", func(t *testing.T) {
		s := NewSession(&scriptedPort{}, testTimeouts)

		_, err := s.Exchange(context.Background(), []byte("AT+S 00\r\n"), 1)
		assert.True(t, errors.Is(err, ErrTimeout))
	})
}

func TestSessionExchangeErrors(t *testing.T) {
	t.Run("invalid line count", func(t *testing.T) {
		s := NewSession(&scriptedPort{}, testTimeouts)
		_, err := s.Exchange(context.Background(), []byte("AT\r\n"), 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid expected line count")
	})

	t.Run("read failure", func(t *testing.T) {
		s := NewSession(&scriptedPort{readErr: errors.New("io failure")}, testTimeouts)
		_, err := s.Exchange(context.Background(), []byte("AT\r\n"), 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read from token")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := NewSession(&scriptedPort{}, testTimeouts)
		_, err := s.Exchange(ctx, []byte("AT\r\n"), 1)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestSessionSequentialExchanges(t *testing.T) {
	port := &scriptedPort{replies: [][]byte{
		[]byte("ready\r\n"),
		[]byte("l1\r\nl2\r\nl3\r\nmax 300\r\n"),
		[]byte("OK\r\n"),
	}}
	s := NewSession(port, testTimeouts)
	ctx := context.Background()

	require.NoError(t, s.Init(ctx))

	info, err := s.Exchange(ctx, []byte("AT+I\r\n"), 4)
	require.NoError(t, err)
	assert.Equal(t, "l1\r\nl2\r\nl3\r\nmax 300", string(info))

	ok, err := s.Exchange(ctx, []byte("AT+V 00\r\n"), 1)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(ok))

	require.NoError(t, s.Close())
	assert.True(t, port.closed)
}

func TestTrimLines(t *testing.T) {
	tests := []struct {
		in        string
		remaining int
		want      string
	}{
		{"abc\r\n", 0, "abc"},
		{"abc\r\n\r\n", 0, "abc"},
		{"abc\r\ndef\r\n", -1, "abc"},
		{"abc\r\ndef", 0, "abc"},
		{"", 0, ""},
		{"\n\n\n", -2, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, string(trimLines([]byte(tt.in), tt.remaining)), "input %q", tt.in)
	}
}
