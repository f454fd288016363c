package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/abw/ntru-token-client/config"
	"github.com/abw/ntru-token-client/pkg/token"
	"github.com/abw/ntru-token-client/signer"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// Hardware access, replaced in tests
var (
	openPort = func(name string, baud int) (token.Port, error) {
		return token.Open(name, baud)
	}
	enumerator token.Enumerator = token.USBEnumerator{}
)

// GlobalFlags returns the flags shared by the root command and every subcommand
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Serial port of the token (skips USB enumeration)",
			Sources: cli.EnvVars("NTRU_TOKEN_PORT"),
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file (default ~/.config/ntru-token/config.yaml)",
			Sources: cli.EnvVars("NTRU_TOKEN_CONFIG"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log serial traffic (same as --log-level debug)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: panic, fatal, error, warn, info, debug or trace",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the result as JSON",
		},
	}
}

// setup loads the configuration and applies the logging flags
func setup(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	levelName := cfg.LogLevel
	if cmd.IsSet("log-level") {
		levelName = cmd.String("log-level")
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid log level: %w", err)
	}
	if cmd.Bool("verbose") && level < log.DebugLevel {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	return cfg, nil
}

// newConnector opens and initializes a session on the configured or located port
func newConnector(cfg config.Config, portName string) signer.Connector {
	return signer.ConnectorFunc(func(ctx context.Context) (signer.Token, error) {
		name := portName
		if name == "" {
			var err error
			name, err = token.Find(enumerator, cfg.Identity())
			if err != nil {
				return nil, fmt.Errorf("%w (name the token's serial port with --port)", err)
			}
		}
		log.Infof("using token on %s", name)

		port, err := openPort(name, cfg.Serial.BaudRate)
		if err != nil {
			return nil, err
		}

		session := token.NewSession(port, cfg.Timeouts())
		if err := session.Init(ctx); err != nil {
			session.Close()
			return nil, err
		}
		return session, nil
	})
}

// newService builds a signing service from the command's flags
func newService(cmd *cli.Command) (*signer.Service, error) {
	cfg, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	return signer.NewService(newConnector(cfg, cmd.String("port"))), nil
}

// fileArg returns the single positional argument of cmd
func fileArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly one file argument, got %d", cmd.Args().Len())
	}
	return cmd.Args().First(), nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func printJSON(w io.Writer, v interface{}) error {
	jsonOutput, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(w, string(jsonOutput))
	return nil
}
