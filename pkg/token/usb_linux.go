//go:build linux

package token

import (
	"os"
	"path/filepath"
	"strings"
)

var sysClassTTY = "/sys/class/tty"

// usbStrings reads the manufacturer and product strings of the USB device behind
// a tty. CDC-ACM ports sit one level below the USB device, usb-serial ports two.
func usbStrings(portName string) (manufacturer, product string) {
	dev, err := filepath.EvalSymlinks(filepath.Join(sysClassTTY, filepath.Base(portName), "device"))
	if err != nil {
		return "", ""
	}

	for _, dir := range []string{filepath.Dir(dev), filepath.Dir(filepath.Dir(dev))} {
		m, mErr := os.ReadFile(filepath.Join(dir, "manufacturer"))
		p, pErr := os.ReadFile(filepath.Join(dir, "product"))
		if mErr == nil || pErr == nil {
			return strings.TrimSpace(string(m)), strings.TrimSpace(string(p))
		}
	}
	return "", ""
}
