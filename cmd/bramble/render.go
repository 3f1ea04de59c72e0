package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verdancy/bramble"
	"github.com/verdancy/bramble/internal/presentation/svg"
	"github.com/verdancy/bramble/internal/presentation/tui"
	"github.com/verdancy/bramble/pkg/turtle"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Expand a grammar and trace it into segments",
	Long: `Runs the full pipeline: parse, expand, trace. The result is drawn on
the terminal by default and can be exported as JSON, CSV or SVG.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRender(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// renderOutput is the JSON export shape, aligned with the HTTP API.
type renderOutput struct {
	FromX     []float64 `json:"from_x"`
	FromY     []float64 `json:"from_y"`
	ToX       []float64 `json:"to_x"`
	ToY       []float64 `json:"to_y"`
	Count     int       `json:"count"`
	Steps     int       `json:"steps"`
	DrawCount int       `json:"draw_count"`
	Truncated bool      `json:"truncated"`
	Dropped   int       `json:"dropped"`
	Preset    string    `json:"preset,omitempty"`
}

func runRender(cmd *cobra.Command) error {
	ctx := cmd.Context()
	presetName, _ := cmd.Flags().GetString("preset")

	var res *bramble.Result
	if presetName != "" {
		presetDir, _ := cmd.Flags().GetString("preset-dir")
		eng, err := newEngine(presetDir)
		if err != nil {
			return err
		}
		defer eng.Close()

		res, err = eng.RenderPreset(ctx, presetName, overridesFromFlags(cmd))
		if err != nil {
			return err
		}
	} else {
		rules, err := readRules(cmd)
		if err != nil {
			return err
		}
		eng, err := newEngine("")
		if err != nil {
			return err
		}
		defer eng.Close()

		res, err = eng.Render(ctx, renderRequest(cmd, rules))
		if err != nil {
			return err
		}
	}

	return writeOutput(cmd, res)
}

// overridesFromFlags collects the turtle flags the user explicitly set,
// keyed by preset field name.
func overridesFromFlags(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)

	intFlags := map[string]string{
		"depth":        "depth",
		"budget":       "budget",
		"roughness":    "roughness",
		"max-segments": "max_segments",
	}
	for flag, key := range intFlags {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetInt(flag)
			overrides[key] = v
		}
	}

	floatFlags := map[string]string{
		"angle":       "angle",
		"step":        "step",
		"angle-delta": "angle_delta",
		"step-delta":  "step_delta",
	}
	for flag, key := range floatFlags {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetFloat64(flag)
			overrides[key] = v
		}
	}

	if len(overrides) == 0 {
		return nil
	}
	return overrides
}

func renderRequest(cmd *cobra.Command, rules string) bramble.RenderRequest {
	depth, _ := cmd.Flags().GetInt("depth")
	budget, _ := cmd.Flags().GetInt("budget")
	angle, _ := cmd.Flags().GetFloat64("angle")
	step, _ := cmd.Flags().GetFloat64("step")
	angleDelta, _ := cmd.Flags().GetFloat64("angle-delta")
	stepDelta, _ := cmd.Flags().GetFloat64("step-delta")
	roughness, _ := cmd.Flags().GetInt("roughness")
	maxSegments, _ := cmd.Flags().GetInt("max-segments")

	return bramble.RenderRequest{
		Rules:  rules,
		Depth:  depth,
		Budget: budget,
		Params: turtle.Params{
			Angle:       angle,
			Step:        step,
			AngleDelta:  angleDelta,
			StepDelta:   stepDelta,
			Roughness:   roughness,
			MaxSegments: maxSegments,
		},
	}
}

func writeOutput(cmd *cobra.Command, res *bramble.Result) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	switch format {
	case "canvas":
		return writeCanvas(res)
	case "json":
		data, err := renderJSON(res)
		if err != nil {
			return err
		}
		return writeFileOrStdout(out, data)
	case "csv":
		return writeFileOrStdout(out, renderCSV(res))
	case "svg":
		width, _ := cmd.Flags().GetInt("width")
		height, _ := cmd.Flags().GetInt("height")
		doc := svg.Generate(&res.Path, svg.Options{Width: width, Height: height})
		return writeFileOrStdout(out, []byte(doc))
	default:
		return fmt.Errorf("unknown format %q: supported formats are canvas, json, csv and svg", format)
	}
}

func writeCanvas(res *bramble.Result) error {
	tui.PrintBanner(strings.TrimSpace(bramble.Version))

	canvas := tui.NewCanvas(tui.CanvasSize())
	canvas.Plot(&res.Path)
	fmt.Println(canvas.String())
	fmt.Println(tui.Summary(res))
	return nil
}

func renderJSON(res *bramble.Result) ([]byte, error) {
	fromX, fromY, toX, toY := res.Path.Arrays()
	data, err := json.MarshalIndent(renderOutput{
		FromX:     fromX,
		FromY:     fromY,
		ToX:       toX,
		ToY:       toY,
		Count:     res.Path.Len(),
		Steps:     res.Path.Steps,
		DrawCount: res.Expansion.DrawCount,
		Truncated: res.Expansion.Truncated,
		Dropped:   res.Expansion.Dropped,
		Preset:    res.Preset,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func renderCSV(res *bramble.Result) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"from_x", "from_y", "to_x", "to_y"})
	for _, s := range res.Path.Segments {
		w.Write([]string{
			strconv.FormatFloat(s.FromX, 'g', -1, 64),
			strconv.FormatFloat(s.FromY, 'g', -1, 64),
			strconv.FormatFloat(s.ToX, 'g', -1, 64),
			strconv.FormatFloat(s.ToY, 'g', -1, 64),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func writeFileOrStdout(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func init() {
	rootCmd.AddCommand(renderCmd)

	registerSourceFlags(renderCmd)
	renderCmd.Flags().String("preset", "", "Render a named preset instead of inline rules")
	renderCmd.Flags().String("preset-dir", "presets", "Directory of preset YAML files")
	renderCmd.Flags().IntP("depth", "d", 1, "Recursion depth")
	renderCmd.Flags().IntP("budget", "b", 10000, "Maximum number of draw commands")
	renderCmd.Flags().Float64P("angle", "a", 25, "Turn increment in degrees")
	renderCmd.Flags().Float64P("step", "s", 10, "Distance covered by one forward step")
	renderCmd.Flags().Float64("angle-delta", 0, "Relative angle scale applied by ( and )")
	renderCmd.Flags().Float64("step-delta", 0, "Relative step scale applied by < and >")
	renderCmd.Flags().Int("roughness", 1, "Emission stride: only every Nth step emits a segment")
	renderCmd.Flags().Int("max-segments", 0, "Cap on emitted segments (0 = engine limit)")
	renderCmd.Flags().String("format", "canvas", "Output format: canvas, json, csv or svg")
	renderCmd.Flags().StringP("out", "o", "", "Output file ('-' or empty for stdout)")
	renderCmd.Flags().Int("width", 800, "SVG viewport width")
	renderCmd.Flags().Int("height", 800, "SVG viewport height")
}
