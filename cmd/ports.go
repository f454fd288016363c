package cmd

import (
	"context"
	"fmt"

	"github.com/abw/ntru-token-client/pkg/token"
	"github.com/urfave/cli/v3"
)

// PortsCommand creates the ports command
func PortsCommand() *cli.Command {
	return &cli.Command{
		Name:   "ports",
		Usage:  "List serial ports and mark the one holding the token",
		Action: runPortsCommand,
	}
}

func runPortsCommand(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	devices, err := enumerator.Devices()
	if err != nil {
		return fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	chosen, _ := token.Locate(devices, cfg.Identity())

	w := stdout(cmd)
	if cmd.Bool("json") {
		output := make([]map[string]interface{}, 0, len(devices))
		for _, d := range devices {
			output = append(output, map[string]interface{}{
				"port":         d.Port,
				"usb":          d.IsUSB,
				"vendorId":     fmt.Sprintf("%04x", d.VendorID),
				"productId":    fmt.Sprintf("%04x", d.ProductID),
				"manufacturer": d.Manufacturer,
				"product":      d.Product,
				"token":        d.Port == chosen,
			})
		}
		return printJSON(w, output)
	}

	if len(devices) == 0 {
		fmt.Fprintln(w, "No serial ports found")
		return nil
	}
	for _, d := range devices {
		fmt.Fprintln(w, formatPort(d, d.Port == chosen))
	}
	return nil
}

func formatPort(d token.DeviceDescriptor, chosen bool) string {
	mark := " "
	if chosen {
		mark = "*"
	}
	if !d.IsUSB {
		return fmt.Sprintf("%s %s", mark, d.Port)
	}
	return fmt.Sprintf("%s %s  %04x:%04x  %q  %q", mark, d.Port, d.VendorID, d.ProductID, d.Manufacturer, d.Product)
}
