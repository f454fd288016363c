package cmd

import (
	"context"
	"fmt"

	"github.com/abw/ntru-token-client/signer"
	"github.com/urfave/cli/v3"
)

// VerifyCommand creates the verify command
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Verify <file>.sig with the token and check it against <file>",
		ArgsUsage: "<file>.sig",
		Action:    runVerifyCommand,
	}
}

func runVerifyCommand(ctx context.Context, cmd *cli.Command) error {
	path, err := fileArg(cmd)
	if err != nil {
		return err
	}
	return verify(ctx, cmd, path)
}

func verify(ctx context.Context, cmd *cli.Command, sidecarPath string) error {
	service, err := newService(cmd)
	if err != nil {
		return err
	}

	result, err := service.Verify(ctx, sidecarPath)
	if err != nil {
		return err
	}

	formatter := signer.NewFormatter()
	w := stdout(cmd)
	if cmd.Bool("json") {
		return printJSON(w, formatter.FormatVerifyResultJSON(result))
	}

	fmt.Fprint(w, formatter.FormatDeviceInfo(result.Device))
	fmt.Fprint(w, formatter.FormatVerifyResult(result))
	return nil
}

// DefaultAction signs its argument, or verifies it when it names a .sig file
func DefaultAction(ctx context.Context, cmd *cli.Command) error {
	path, err := fileArg(cmd)
	if err != nil {
		return err
	}
	if signer.IsSidecar(path) {
		return verify(ctx, cmd, path)
	}
	return sign(ctx, cmd, path)
}
