package token

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Open opens a serial port in the token's 8N1 mode at baud
func Open(name string, baud int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrPortOpen, name, err)
	}
	return port, nil
}

// USBEnumerator lists serial ports through the platform's USB device tree
type USBEnumerator struct{}

// Devices implements Enumerator
func (USBEnumerator) Devices() ([]DeviceDescriptor, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	devices := make([]DeviceDescriptor, 0, len(ports))
	for _, p := range ports {
		d := DeviceDescriptor{
			Port:    p.Name,
			IsUSB:   p.IsUSB,
			Product: p.Product,
		}
		if p.IsUSB {
			d.VendorID = parseUSBID(p.VID)
			d.ProductID = parseUSBID(p.PID)
			manufacturer, product := usbStrings(p.Name)
			d.Manufacturer = manufacturer
			if d.Product == "" {
				d.Product = product
			}
		}
		log.Debugf("serial port %s: usb=%t vid=%04x pid=%04x manufacturer=%q product=%q",
			d.Port, d.IsUSB, d.VendorID, d.ProductID, d.Manufacturer, d.Product)
		devices = append(devices, d)
	}
	return devices, nil
}

func parseUSBID(s string) uint16 {
	id, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0
	}
	return uint16(id)
}
