package signer

import (
	"fmt"
	"strings"
	"time"
)

// TimeFormat renders envelope timestamps the way RFC 2822 mail dates look
const TimeFormat = time.RFC1123Z

// Formatter formats token and signature data for display
type Formatter struct{}

// NewFormatter creates a new formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatDeviceInfo formats the AT+I reply
func (f *Formatter) FormatDeviceInfo(info *DeviceInfo) string {
	var sb strings.Builder
	sb.WriteString("Found a token! Device info:\n")
	for _, line := range info.Lines {
		sb.WriteString(fmt.Sprintf("  %s\n", line))
	}
	return sb.String()
}

// FormatSignResult formats a completed signature
func (f *Formatter) FormatSignResult(result *SignResult) string {
	return fmt.Sprintf("Signature written to file: %s\n", result.SidecarPath)
}

// FormatVerifyResult formats a successful verification
func (f *Formatter) FormatVerifyResult(result *VerifyResult) string {
	var sb strings.Builder
	sb.WriteString("Signature verified successfully.\n")
	sb.WriteString(fmt.Sprintf("Creation time: %s\n", result.CreatedAt.Format(TimeFormat)))
	sb.WriteString(fmt.Sprintf("Matches file: %s\n", result.Path))
	return sb.String()
}

// FormatSignResultJSON formats a signature result for JSON output
func (f *Formatter) FormatSignResultJSON(result *SignResult) map[string]interface{} {
	output := map[string]interface{}{
		"path":      result.Path,
		"signature": result.SidecarPath,
		"digest":    result.DigestHex,
		"signedAt":  result.SignedAt.Format(time.RFC3339),
	}
	if result.Device != nil {
		output["device"] = f.FormatDeviceInfoJSON(result.Device)
	}
	return output
}

// FormatVerifyResultJSON formats a verification result for JSON output
func (f *Formatter) FormatVerifyResultJSON(result *VerifyResult) map[string]interface{} {
	output := map[string]interface{}{
		"valid":     result.Valid,
		"path":      result.Path,
		"signature": result.SidecarPath,
		"digest":    result.DigestHex,
		"createdAt": result.CreatedAt.Format(time.RFC3339),
	}
	if result.Device != nil {
		output["device"] = f.FormatDeviceInfoJSON(result.Device)
	}
	return output
}

// FormatDeviceInfoJSON formats device info for JSON output
func (f *Formatter) FormatDeviceInfoJSON(info *DeviceInfo) map[string]interface{} {
	return map[string]interface{}{
		"lines":            info.Lines,
		"maxMessageLength": info.MaxMessageLen,
	}
}
