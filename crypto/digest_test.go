package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Known SHA3-512 vectors
const (
	emptyDigestHex = "a69f73cca23a9ac5c8b567dc185a756e97c982164fe25859e0d1dcc1475c80a615b2123af1f5f94c11e3e9402c3ac558f500199d95b6d3e301758586281dcd26"
	hiDigestHex    = "154013cb8140c753f0ac358da6110fe237481b26c75c3ddc1b59eaf9dd7b46a0a3aeb2cef164b3c82d65b38a4e26ea9930b7b2cb3c01da4ba331c95e62ccb9c3"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty input", []byte{}, emptyDigestHex},
		{"short input", []byte("hi"), hiDigestHex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Digest(tt.data)
			require.Len(t, got, DigestSize)
			assert.Equal(t, tt.want, hex.EncodeToString(got))
		})
	}
}

func TestDigestReader(t *testing.T) {
	t.Run("matches Digest", func(t *testing.T) {
		data := bytes.Repeat([]byte("0123456789"), 10000)
		got, err := DigestReader(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, Digest(data), got)
	})

	t.Run("read error", func(t *testing.T) {
		_, err := DigestReader(failingReader{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to hash data")
	})
}

func TestDigestFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(dir, "hello.txt")
		require.NoError(t, os.WriteFile(path, []byte("hi"), 0644))

		got, err := DigestFile(path)
		require.NoError(t, err)
		assert.Equal(t, hiDigestHex, hex.EncodeToString(got))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := DigestFile(filepath.Join(dir, "missing.txt"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestEqual(t *testing.T) {
	a := Digest([]byte("a"))
	b := Digest([]byte("b"))

	assert.True(t, Equal(a, Digest([]byte("a"))))
	assert.False(t, Equal(a, b))
	assert.False(t, Equal(a, a[:32]))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}
