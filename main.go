package main

import (
	"context"
	"fmt"
	"os"

	"github.com/abw/ntru-token-client/cmd"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "ntru-token",
		Usage:     "Sign and verify files with the STM32 NTRU Token",
		ArgsUsage: "<file> | <file>.sig",
		Description: "Given a file, signs it and writes the signature to <file>.sig.\n" +
			"Given a .sig file, verifies it with the token and checks it against the file it names.\n" +
			"A file named like a subcommand must go through it, e.g. ntru-token sign info.",
		Flags:  cmd.GlobalFlags(),
		Action: cmd.DefaultAction,
		Commands: []*cli.Command{
			cmd.SignCommand(),
			cmd.VerifyCommand(),
			cmd.InfoCommand(),
			cmd.PortsCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
