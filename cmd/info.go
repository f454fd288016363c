package cmd

import (
	"context"
	"fmt"

	"github.com/abw/ntru-token-client/signer"
	"github.com/urfave/cli/v3"
)

// InfoCommand creates the info command
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:   "info",
		Usage:  "Show the token's identification and message capacity",
		Action: runInfoCommand,
	}
}

func runInfoCommand(ctx context.Context, cmd *cli.Command) error {
	service, err := newService(cmd)
	if err != nil {
		return err
	}

	info, err := service.Info(ctx)
	if err != nil {
		return err
	}

	formatter := signer.NewFormatter()
	w := stdout(cmd)
	if cmd.Bool("json") {
		return printJSON(w, formatter.FormatDeviceInfoJSON(info))
	}
	fmt.Fprint(w, formatter.FormatDeviceInfo(info))
	return nil
}
