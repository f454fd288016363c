//go:build !linux && !darwin && !windows

package token

// usbStrings has no source on the BSDs; tokens there are selected with --port.
func usbStrings(string) (string, string) {
	return "", ""
}
