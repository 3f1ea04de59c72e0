package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verdancy/bramble/internal/presentation/tui"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Inspect the preset library",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available presets",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runPresetsList(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a preset definition",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runPresetsShow(cmd, args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runPresetsList(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("preset-dir")
	eng, err := newEngine(dir)
	if err != nil {
		return err
	}
	defer eng.Close()

	names, err := eng.Presets(cmd.Context())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No presets found.")
		return nil
	}

	for _, name := range names {
		p, err := eng.Preset(cmd.Context(), name)
		if err != nil {
			return err
		}
		if p.Title != "" {
			fmt.Printf("%-24s %s\n", name, p.Title)
		} else {
			fmt.Println(name)
		}
	}
	return nil
}

func runPresetsShow(cmd *cobra.Command, name string) error {
	dir, _ := cmd.Flags().GetString("preset-dir")
	eng, err := newEngine(dir)
	if err != nil {
		return err
	}
	defer eng.Close()

	p, err := eng.Preset(cmd.Context(), name)
	if err != nil {
		return err
	}

	// Notes are rendered separately below the definition.
	shown := p.Clone()
	shown.Notes = ""
	data, err := yaml.Marshal(shown)
	if err != nil {
		return err
	}
	fmt.Print(string(data))

	if p.Notes != "" {
		render := tui.NewMarkdownRenderer()
		out, err := render(p.Notes)
		if err != nil {
			return err
		}
		fmt.Println(out)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsShowCmd)

	presetsCmd.PersistentFlags().String("preset-dir", "presets", "Directory of preset YAML files")
}
