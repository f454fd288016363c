package token

import (
	"fmt"
)

// Enumerator lists the serial devices currently attached
type Enumerator interface {
	Devices() ([]DeviceDescriptor, error)
}

// Matches reports whether a device presents this identity. Missing strings are
// compared as empty.
func (id Identity) Matches(d DeviceDescriptor) bool {
	return d.IsUSB &&
		d.VendorID == id.VendorID &&
		d.ProductID == id.ProductID &&
		d.Manufacturer == id.Manufacturer &&
		d.Product == id.Product
}

// Locate returns the port name of the first device matching id
func Locate(devices []DeviceDescriptor, id Identity) (string, error) {
	for _, d := range devices {
		if id.Matches(d) {
			return d.Port, nil
		}
	}
	return "", fmt.Errorf("%w: no device with VID=%04x PID=%04x %q %q among %d serial ports",
		ErrDeviceNotFound, id.VendorID, id.ProductID, id.Manufacturer, id.Product, len(devices))
}

// Find enumerates the attached devices and locates the token among them
func Find(e Enumerator, id Identity) (string, error) {
	devices, err := e.Devices()
	if err != nil {
		return "", fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return Locate(devices, id)
}
