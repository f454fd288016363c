// Package config holds the static settings of the token client.
//
// Defaults are filled from struct tags and may be overridden by a YAML file:
//
//	serial:
//	  baud_rate: 115200
//	  read_timeout: 400ms
//	  poll_interval: 25ms
//	  handshake_timeout: 1.5s
//	  command_timeout: 3s
//	token:
//	  vendor_id: 0x0420
//	  product_id: 0x2137
//	  manufacturer: ABW
//	  product: STM32 NTRU Token
//	log_level: warn
//
// The file is read once at startup. A Config is passed by value afterwards and
// never changed.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/abw/ntru-token-client/pkg/token"
	log "github.com/sirupsen/logrus"
)

// ErrInvalid reports a configuration value outside its allowed range
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete client configuration
type Config struct {
	Serial   SerialConfig `yaml:"serial"`
	Token    TokenConfig  `yaml:"token"`
	LogLevel string       `yaml:"log_level" default:"warn"`
}

// SerialConfig controls the port and the exchange timing
type SerialConfig struct {
	BaudRate         int           `yaml:"baud_rate" default:"115200"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"400ms"`
	PollInterval     time.Duration `yaml:"poll_interval" default:"25ms"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" default:"1500ms"`
	CommandTimeout   time.Duration `yaml:"command_timeout" default:"3s"`
}

// TokenConfig identifies the token among the USB serial ports.
// The ID defaults are 0x0420 and 0x2137.
type TokenConfig struct {
	VendorID     uint16 `yaml:"vendor_id" default:"1056"`
	ProductID    uint16 `yaml:"product_id" default:"8503"`
	Manufacturer string `yaml:"manufacturer" default:"ABW"`
	Product      string `yaml:"product" default:"STM32 NTRU Token"`
}

// Validate checks that every timing and port setting is usable
func (c Config) Validate() error {
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("%w: serial.baud_rate must be positive, got %d", ErrInvalid, c.Serial.BaudRate)
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"serial.read_timeout", c.Serial.ReadTimeout},
		{"serial.poll_interval", c.Serial.PollInterval},
		{"serial.handshake_timeout", c.Serial.HandshakeTimeout},
		{"serial.command_timeout", c.Serial.CommandTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, d.name, d.value)
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	if c.Token.Manufacturer == "" {
		return fmt.Errorf("%w: token.manufacturer must not be empty", ErrInvalid)
	}
	if c.Token.Product == "" {
		return fmt.Errorf("%w: token.product must not be empty", ErrInvalid)
	}
	return nil
}

// Identity returns the USB identity the locator matches against
func (c Config) Identity() token.Identity {
	return token.Identity{
		VendorID:     c.Token.VendorID,
		ProductID:    c.Token.ProductID,
		Manufacturer: c.Token.Manufacturer,
		Product:      c.Token.Product,
	}
}

// Timeouts returns the session timing
func (c Config) Timeouts() token.Timeouts {
	return token.Timeouts{
		Read:      c.Serial.ReadTimeout,
		Poll:      c.Serial.PollInterval,
		Handshake: c.Serial.HandshakeTimeout,
		Command:   c.Serial.CommandTimeout,
	}
}
