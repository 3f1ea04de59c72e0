package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verdancy/bramble"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bramble",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bramble version %s\n", strings.TrimSpace(bramble.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
