package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/pkg/camera"
	"github.com/matzehuels/storyline/pkg/frame"
	"github.com/matzehuels/storyline/pkg/geo"
	"github.com/matzehuels/storyline/pkg/story"
)

// newPlayCmd creates the play command for stepping through a story
// interactively.
func newPlayCmd(configPath *string) *cobra.Command {
	var (
		width  float64
		height float64
	)

	cmd := &cobra.Command{
		Use:   "play [story file]",
		Short: "Step through a story interactively in the terminal",
		Long: `Step through a story interactively in the terminal.

Each step composes a fresh frame: the camera glides to its target with
the step's easing, overlaps are resolved, and node states update. Use
the arrow keys (or space) to move between steps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := story.ReadStoryFile(args[0])
			if err != nil {
				return fmt.Errorf("load story %s: %w", args[0], err)
			}
			if st.StepCount() == 0 {
				return fmt.Errorf("story %s has no steps", args[0])
			}

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			viewport := viewportFromConfig(cfg, width, height)

			composer := frame.NewComposer(composeOptions(cfg.Compose), loggerFromContext(cmd.Context()))
			model := newPlayerModel(cmd.Context(), st, composer, viewport)

			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("run player: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "viewport width (overrides config)")
	cmd.Flags().Float64Var(&height, "height", 0, "viewport height (overrides config)")

	return cmd
}

// =============================================================================
// PlayerModel - Interactive step player
// =============================================================================

// frameRate is the camera animation sampling interval.
const frameRate = time.Second / 30

// tickMsg drives camera animation sampling.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// playerModel is the bubbletea model for the interactive step player.
type playerModel struct {
	ctx      context.Context
	story    *story.Story
	composer *frame.Composer
	viewport geo.Size

	index int
	cam   camera.Camera
	frame frame.Frame

	// Camera animation state. While animating, each tick re-interpolates
	// the camera and recomposes the frame at the interpolated position.
	animating  bool
	animFrom   camera.Camera
	transition frame.Transition
	started    time.Time
}

// newPlayerModel creates a player positioned at the first step.
func newPlayerModel(ctx context.Context, st *story.Story, composer *frame.Composer, viewport geo.Size) playerModel {
	m := playerModel{
		ctx:      ctx,
		story:    st,
		composer: composer,
		viewport: viewport,
	}
	m.cam = composer.TargetCamera(st, 0, viewport)
	m.frame = composer.Compose(ctx, st, 0, viewport)
	return m
}

func (m playerModel) Init() tea.Cmd {
	return nil
}

func (m playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", " ", "enter", "n":
			if m.index < m.story.StepCount()-1 {
				return m.gotoStep(m.index + 1)
			}
		case "left", "h", "p":
			if m.index > 0 {
				return m.gotoStep(m.index - 1)
			}
		case "g":
			return m.gotoStep(0)
		case "G":
			return m.gotoStep(m.story.StepCount() - 1)
		}
	case tickMsg:
		if !m.animating {
			return m, nil
		}
		progress := float64(time.Since(m.started)) / float64(m.transition.Duration)
		m.cam = camera.Interpolate(m.animFrom, m.transition.To, progress, m.transition.Easing)
		m.frame = m.composer.ComposeWithCamera(m.ctx, m.story, m.index, m.viewport, m.cam)
		if progress >= 1 {
			m.animating = false
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

// gotoStep starts the camera transition into the given step.
func (m playerModel) gotoStep(index int) (tea.Model, tea.Cmd) {
	m.index = index
	m.animFrom = m.cam
	m.transition = m.composer.TransitionTo(m.story, index, m.viewport)
	m.started = time.Now()
	m.animating = true
	m.frame = m.composer.ComposeWithCamera(m.ctx, m.story, index, m.viewport, m.cam)
	return m, tick()
}

func (m playerModel) View() string {
	var b strings.Builder

	title := m.story.Title
	if title == "" {
		title = "Story"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ step  g/G first/last  q quit"))
	b.WriteString("\n\n")

	step := m.story.Steps[m.index]
	header := fmt.Sprintf("Step %d/%d", m.index+1, m.story.StepCount())
	if step.Title != "" {
		header += "  " + step.Title
	}
	b.WriteString(StyleHighlight.Render(header))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("camera (%.0f, %.0f) zoom %.2f",
		m.frame.Camera.Center.X, m.frame.Camera.Center.Y, m.frame.Camera.Zoom)))
	b.WriteString("\n\n")

	for _, nv := range m.frame.Nodes {
		b.WriteString(renderNodeLine(nv))
		b.WriteString("\n")
	}
	if len(m.frame.Edges) > 0 {
		b.WriteString("\n")
		for _, ev := range m.frame.Edges {
			b.WriteString(renderEdgeLine(ev))
			b.WriteString("\n")
		}
	}

	if len(m.frame.Unresolved) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(fmt.Sprintf("! %d unresolved overlap(s)", len(m.frame.Unresolved))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(stepGauge(m.index, m.story.StepCount())))
	return b.String()
}

// renderNodeLine formats one node with its visibility styling.
func renderNodeLine(nv frame.NodeView) string {
	label := nv.Label
	if nv.HasSubState {
		label += " " + listDimStyle.Render("["+nv.SubState+"]")
	}
	pos := listDimStyle.Render(fmt.Sprintf("(%.0f, %.0f)", nv.Screen.X, nv.Screen.Y))
	marker := "  "
	if nv.New {
		marker = StyleSuccess.Render("+ ")
	}

	var styled string
	switch nv.Visibility {
	case frame.VisibilityActive:
		styled = listSelectedStyle.Render(label)
	case frame.VisibilityFaded:
		styled = listDimStyle.Render(label)
	default:
		styled = listNormalStyle.Render(label)
	}
	return fmt.Sprintf("  %s%s  %s", marker, styled, pos)
}

// renderEdgeLine formats one edge with its endpoints and routed point count.
func renderEdgeLine(ev frame.EdgeView) string {
	line := fmt.Sprintf("%s %s %s", ev.From, iconArrow, ev.To)
	if n := len(ev.Path); n > 2 {
		line += fmt.Sprintf(" (%d pts)", n)
	}
	if ev.Visibility == frame.VisibilityActive {
		return "    " + StyleHighlight.Render(line)
	}
	return "    " + listDimStyle.Render(line)
}

// stepGauge renders a compact progress bar over the story's steps.
func stepGauge(index, total int) string {
	var b strings.Builder
	for i := 0; i < total; i++ {
		if i == index {
			b.WriteString("●")
		} else {
			b.WriteString("·")
		}
	}
	return b.String()
}

// List styles shared with other interactive views.
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)
