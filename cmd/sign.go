package cmd

import (
	"context"
	"fmt"

	"github.com/abw/ntru-token-client/signer"
	"github.com/urfave/cli/v3"
)

// SignCommand creates the sign command
func SignCommand() *cli.Command {
	return &cli.Command{
		Name:      "sign",
		Usage:     "Sign a file with the token and write <file>.sig",
		ArgsUsage: "<file>",
		Action:    runSignCommand,
	}
}

func runSignCommand(ctx context.Context, cmd *cli.Command) error {
	path, err := fileArg(cmd)
	if err != nil {
		return err
	}
	return sign(ctx, cmd, path)
}

func sign(ctx context.Context, cmd *cli.Command, path string) error {
	service, err := newService(cmd)
	if err != nil {
		return err
	}

	result, err := service.Sign(ctx, path)
	if err != nil {
		return err
	}

	formatter := signer.NewFormatter()
	w := stdout(cmd)
	if cmd.Bool("json") {
		return printJSON(w, formatter.FormatSignResultJSON(result))
	}

	fmt.Fprint(w, formatter.FormatDeviceInfo(result.Device))
	fmt.Fprint(w, formatter.FormatSignResult(result))
	return nil
}
