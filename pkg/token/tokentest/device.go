// Package tokentest provides an in-memory NTRU token for tests.
//
// Device implements token.Port and answers the handshake, AT+I, AT+S and AT+V
// the way the firmware does: AT+S replies with a fresh envelope built from the
// request, AT+V accepts only envelopes the device issued itself.
package tokentest

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/abw/ntru-token-client/envelope"
)

// Device is a simulated token. The zero value is not usable; call NewDevice.
type Device struct {
	// MaxMessageLen is reported as the last token of the AT+I reply
	MaxMessageLen int
	// Silent devices never answer
	Silent bool
	// FailSign answers every AT+S with ERROR
	FailSign bool
	// RejectAll answers every AT+V with ERROR
	RejectAll bool
	// Chunk limits the bytes returned per read; zero means unlimited
	Chunk int

	Commands    []string
	ReadTimeout time.Duration
	Closed      bool

	input   []byte
	output  []byte
	issued  map[string]bool
	counter byte
}

// NewDevice returns a device with a 256 byte message capacity
func NewDevice() *Device {
	return &Device{
		MaxMessageLen: 256,
		issued:        make(map[string]bool),
	}
}

// InfoLines is the AT+I reply without the capacity line
var InfoLines = []string{
	"ABW STM32 NTRU Token",
	"Firmware: 1.0.3",
	"Scheme: NTRU-HPS-2048-677",
}

// Write implements token.Port
func (d *Device) Write(b []byte) (int, error) {
	if d.Closed {
		return 0, fmt.Errorf("port closed")
	}
	d.input = append(d.input, b...)
	for {
		i := bytes.IndexByte(d.input, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(d.input[:i]), "\r")
		d.input = d.input[i+1:]
		d.handle(line)
	}
	return len(b), nil
}

// Read implements token.Port
func (d *Device) Read(b []byte) (int, error) {
	n := len(d.output)
	if d.Chunk > 0 && n > d.Chunk {
		n = d.Chunk
	}
	n = copy(b, d.output[:n])
	d.output = d.output[n:]
	return n, nil
}

// SetReadTimeout implements token.Port
func (d *Device) SetReadTimeout(t time.Duration) error {
	d.ReadTimeout = t
	return nil
}

// Close implements token.Port
func (d *Device) Close() error {
	d.Closed = true
	return nil
}

// Issue builds an envelope for a sign-request payload and remembers it as valid
func (d *Device) Issue(payloadHex string) (string, error) {
	raw, err := envelope.DecodeHex(payloadHex)
	if err != nil {
		return "", err
	}
	if len(raw) != envelope.SignRequestSize || raw[envelope.TimestampSize] != envelope.Separator {
		return "", fmt.Errorf("bad sign request")
	}

	d.counter++
	env := &envelope.Envelope{Separator: envelope.Separator}
	for i := range env.Nonce {
		env.Nonce[i] = d.counter ^ byte(i*7)
	}
	for i := 0; i < envelope.TimestampSize; i++ {
		env.Timestamp |= uint64(raw[i]) << (8 * i)
	}
	copy(env.Digest[:], raw[envelope.TimestampSize+envelope.SeparatorSize:])

	text, err := envelope.Encode(env)
	if err != nil {
		return "", err
	}
	d.issued[text] = true
	return text, nil
}

// Trust makes the device accept an envelope it did not issue
func (d *Device) Trust(envelopeHex string) {
	d.issued[envelopeHex] = true
}

func (d *Device) handle(line string) {
	d.Commands = append(d.Commands, line)
	if d.Silent {
		return
	}

	switch {
	case line == "":
		d.reply("OK")
	case line == "AT+I":
		for _, l := range InfoLines {
			d.reply(l)
		}
		d.reply(fmt.Sprintf("Max message length: %d", d.MaxMessageLen))
	case strings.HasPrefix(line, "AT+S "):
		payload := strings.TrimPrefix(line, "AT+S ")
		if d.FailSign {
			d.reply("ERROR")
			return
		}
		text, err := d.Issue(payload)
		if err != nil {
			d.reply("ERROR")
			return
		}
		d.reply(text)
	case strings.HasPrefix(line, "AT+V "):
		if d.RejectAll || !d.issued[strings.TrimPrefix(line, "AT+V ")] {
			d.reply("ERROR")
			return
		}
		d.reply("OK")
	default:
		d.reply("ERROR")
	}
}

func (d *Device) reply(line string) {
	d.output = append(d.output, line...)
	d.output = append(d.output, '\r', '\n')
}
