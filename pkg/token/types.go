// Package token talks to the ABW STM32 NTRU Token over its USB-serial port.
//
// The token speaks a half-duplex, line-oriented AT command protocol at 115200 8N1.
// This package finds the token among the attached serial devices, performs the
// session handshake and exchanges commands whose replies are framed by counting
// newline bytes, with fixed deadlines instead of a transport-level delimiter.
//
// # Locating the Token
//
//	devices, err := token.USBEnumerator{}.Devices()
//	if err != nil {
//		log.Fatal(err)
//	}
//	portName, err := token.Locate(devices, token.DefaultIdentity)
//
// # Exchanging Commands
//
//	port, err := token.Open(portName, 115200)
//	if err != nil {
//		log.Fatal(err)
//	}
//	session := token.NewSession(port, token.DefaultTimeouts)
//	defer session.Close()
//
//	if err := session.Init(ctx); err != nil {
//		log.Fatal(err)
//	}
//	reply, err := session.Exchange(ctx, []byte("AT+I\r\n"), 4)
package token

import (
	"errors"
	"io"
	"time"
)

var (
	ErrDeviceNotFound = errors.New("token not found")
	ErrPortOpen       = errors.New("failed to open serial port")
	// ErrTimeout reports that the token did not answer before the deadline
	ErrTimeout = errors.New("no response from token")
)

// Port is the byte stream a Session owns. Read returns zero or more bytes without
// blocking past the configured read timeout; Write blocks until done or failed.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// DeviceDescriptor describes one serial device as enumerated by the platform
type DeviceDescriptor struct {
	Port         string // OS port name, e.g. /dev/ttyACM0 or COM3
	IsUSB        bool
	VendorID     uint16
	ProductID    uint16
	Manufacturer string // empty when unavailable
	Product      string // empty when unavailable
}

// Identity is the USB identity a token must present
type Identity struct {
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
}

// DefaultIdentity is the identity burned into the token firmware
var DefaultIdentity = Identity{
	VendorID:     0x0420,
	ProductID:    0x2137,
	Manufacturer: "ABW",
	Product:      "STM32 NTRU Token",
}

// Timeouts bounds the polling done by a Session
type Timeouts struct {
	Read      time.Duration // per read on the port
	Poll      time.Duration // idle between reads that returned nothing
	Handshake time.Duration // whole handshake
	Command   time.Duration // whole command exchange
}

var DefaultTimeouts = Timeouts{
	Read:      400 * time.Millisecond,
	Poll:      25 * time.Millisecond,
	Handshake: 1500 * time.Millisecond,
	Command:   3000 * time.Millisecond,
}
