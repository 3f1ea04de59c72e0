package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdancy/bramble"
)

// expandCmd represents the expand command
var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Expand a grammar into its command string",
	Long: `Parses the grammar, expands it to the requested depth and prints the
resulting command string. Statistics go to stderr so the command string
stays pipeable.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExpand(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runExpand(cmd *cobra.Command) error {
	rules, err := readRules(cmd)
	if err != nil {
		return err
	}
	depth, _ := cmd.Flags().GetInt("depth")
	budget, _ := cmd.Flags().GetInt("budget")
	asJSON, _ := cmd.Flags().GetBool("json")

	eng, err := newEngine("")
	if err != nil {
		return err
	}
	defer eng.Close()

	exp, err := eng.Expand(cmd.Context(), bramble.ExpandRequest{
		Rules:  rules,
		Depth:  depth,
		Budget: budget,
	})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(exp)
	}

	fmt.Println(exp.Commands)
	fmt.Fprintf(os.Stderr, "draws: %d  dropped: %d  truncated: %v\n",
		exp.DrawCount, exp.Dropped, exp.Truncated)
	return nil
}

func init() {
	rootCmd.AddCommand(expandCmd)

	registerSourceFlags(expandCmd)
	expandCmd.Flags().IntP("depth", "d", 1, "Recursion depth")
	expandCmd.Flags().IntP("budget", "b", 10000, "Maximum number of draw commands")
	expandCmd.Flags().Bool("json", false, "Print the expansion as JSON")
}
