package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/pkg/frame"
	"github.com/matzehuels/storyline/pkg/sink"
	"github.com/matzehuels/storyline/pkg/story"
)

// Supported render output formats.
const (
	formatSVG  = "svg"
	formatJSON = "json"
)

// newRenderCmd creates the render command for composing frames to files.
func newRenderCmd(configPath *string) *cobra.Command {
	var (
		stepIndex int
		all       bool
		output    string
		format    string
		width     float64
		height    float64
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "render [story file]",
		Short: "Compose story frames and write them to SVG or JSON",
		Long: `Compose story frames and write them to SVG or JSON.

By default the last step of the story is rendered. Use --step to pick a
single step or --all to write one file per step. The JSON format emits
the composed frame (camera, node and edge views with screen positions)
for consumption by other renderers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatSVG && format != formatJSON {
				return fmt.Errorf("unknown format %q (want svg or json)", format)
			}
			return runRender(cmd, args[0], renderParams{
				configPath: *configPath,
				stepIndex:  stepIndex,
				all:        all,
				output:     output,
				format:     format,
				width:      width,
				height:     height,
				noCache:    noCache,
			})
		},
	}

	cmd.Flags().IntVarP(&stepIndex, "step", "s", -1, "step index to render (default: last step)")
	cmd.Flags().BoolVar(&all, "all", false, "render every step to its own file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single step) or base path (--all)")
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: svg, json")
	cmd.Flags().Float64Var(&width, "width", 0, "viewport width (overrides config)")
	cmd.Flags().Float64Var(&height, "height", 0, "viewport height (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable frame caching")

	return cmd
}

type renderParams struct {
	configPath string
	stepIndex  int
	all        bool
	output     string
	format     string
	width      float64
	height     float64
	noCache    bool
}

func runRender(cmd *cobra.Command, input string, p renderParams) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	st, err := story.ReadStoryFile(input)
	if err != nil {
		return fmt.Errorf("load story %s: %w", input, err)
	}
	if st.StepCount() == 0 {
		return fmt.Errorf("story %s has no steps", input)
	}

	cfg, err := loadConfig(p.configPath)
	if err != nil {
		return err
	}
	viewport := viewportFromConfig(cfg, p.width, p.height)

	composer, err := newComposer(ctx, cfg, logger, p.noCache)
	if err != nil {
		return err
	}

	indices := []int{p.stepIndex}
	if p.all {
		indices = indices[:0]
		for i := 0; i < st.StepCount(); i++ {
			indices = append(indices, i)
		}
	} else if p.stepIndex < 0 {
		indices[0] = st.StepCount() - 1
	}

	prog := newProgress(logger)
	for _, i := range indices {
		f := composer.Compose(ctx, st, i, viewport)
		path := outputPath(input, p.output, p.format, i, p.all)
		if err := writeFrame(f, p.format, path); err != nil {
			return fmt.Errorf("write step %d: %w", i, err)
		}
		printFile(path)
	}
	prog.done(fmt.Sprintf("Rendered %d frame(s)", len(indices)))

	printStats(len(st.Nodes), len(st.Edges), st.StepCount())
	return nil
}

// outputPath derives the output filename for a step. With --all the step
// index is always part of the name so files do not clobber each other.
func outputPath(input, output, format string, index int, all bool) string {
	if output != "" && !all {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if all {
		return fmt.Sprintf("%s_step%d.%s", base, index, format)
	}
	return fmt.Sprintf("%s.%s", base, format)
}

func writeFrame(f frame.Frame, format, path string) error {
	var data []byte
	switch format {
	case formatJSON:
		b, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return err
		}
		data = b
	default:
		data = sink.RenderSVG(f)
	}
	return os.WriteFile(path, data, 0644)
}
