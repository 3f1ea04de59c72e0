package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdancy/bramble"
	"github.com/verdancy/bramble/pkg/adapters/presetdir"
)

// registerSourceFlags adds the grammar source flags shared by commands
// that read rules inline, from a file or from stdin.
func registerSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("grammar", "g", "", "Grammar rules, one 'Symbol:replacement' per line")
	cmd.Flags().StringP("file", "f", "", "File containing grammar rules ('-' for stdin)")
}

// readRules resolves the grammar source from --grammar, --file or stdin.
func readRules(cmd *cobra.Command) (string, error) {
	grammar, _ := cmd.Flags().GetString("grammar")
	if grammar != "" {
		return grammar, nil
	}

	file, _ := cmd.Flags().GetString("file")
	switch file {
	case "":
		return "", errors.New("no grammar given: use --grammar, --file or --preset")
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// newEngine builds a library engine for one-shot commands. An empty
// presetDir leaves the engine without file-backed presets.
func newEngine(presetDir string) (*bramble.Engine, error) {
	opts := []bramble.Option{bramble.WithLogger(slog.Default())}
	if presetDir != "" {
		store, err := presetdir.New(presetDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, bramble.WithPresetStore(store))
	}
	return bramble.New(opts...)
}
