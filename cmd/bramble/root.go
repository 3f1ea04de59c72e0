package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdancy/bramble/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "bramble",
	Short: "Bramble is an L-system expansion and rendering engine",
	Long: `Bramble parses L-system grammars, expands them into command strings and
traces them into line segments for the terminal, SVG files or plotting.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		slog.SetDefault(logging.New(logging.ParseLevel(level)))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
}
