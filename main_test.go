package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMainApp(t *testing.T) {
	t.Run("app structure", func(t *testing.T) {
		app := newApp()

		require.Equal(t, "ntru-token", app.Name)
		require.Equal(t, 4, len(app.Commands))
		require.NotNil(t, app.Action)

		commandNames := make(map[string]bool)
		for _, cmd := range app.Commands {
			commandNames[cmd.Name] = true
		}

		require.True(t, commandNames["sign"])
		require.True(t, commandNames["verify"])
		require.True(t, commandNames["info"])
		require.True(t, commandNames["ports"])
		require.False(t, commandNames["invalid-command"])
	})

	t.Run("help command", func(t *testing.T) {
		var buf bytes.Buffer
		app := newApp()
		app.Writer = &buf

		err := app.Run(context.Background(), []string{"ntru-token", "--help"})
		require.NoError(t, err)

		output := buf.String()
		require.Contains(t, output, "ntru-token")
		require.Contains(t, output, "COMMANDS:")
		require.Contains(t, output, "--port")
		require.Contains(t, output, "ntru-token sign info")
	})

	t.Run("missing file argument", func(t *testing.T) {
		var buf bytes.Buffer
		app := newApp()
		app.Writer = &buf
		app.ErrWriter = &buf

		err := app.Run(context.Background(), []string{"ntru-token"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "expected exactly one file argument")
	})
}

// TestMainCommands verifies that all commands are properly registered
func TestMainCommands(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		contains string
	}{
		{"sign help", []string{"ntru-token", "sign", "--help"}, "sign"},
		{"verify help", []string{"ntru-token", "verify", "--help"}, "verify"},
		{"info help", []string{"ntru-token", "info", "--help"}, "info"},
		{"ports help", []string{"ntru-token", "ports", "--help"}, "ports"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			app := newApp()
			app.Writer = &buf
			app.ErrWriter = &buf

			err := app.Run(context.Background(), tc.args)
			require.NoError(t, err)
			require.Contains(t, buf.String(), tc.contains)
		})
	}
}
