package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a grammar for parse errors",
	Long:  `Parses the grammar and reports the first malformed rule, without expanding anything.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Grammar is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	registerSourceFlags(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	rules, err := readRules(cmd)
	if err != nil {
		return err
	}

	eng, err := newEngine("")
	if err != nil {
		return err
	}
	defer eng.Close()

	return eng.Validate(cmd.Context(), rules)
}
