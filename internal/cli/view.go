package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridlay/pkg/document"
	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/pipeline"
	"github.com/matzehuels/gridlay/pkg/render/sink"
	"github.com/matzehuels/gridlay/pkg/scene"
)

// Text scale bounds for zooming in the viewer.
const (
	minViewScale = 0.25
	maxViewScale = 8
)

// Viewer styles
var (
	boxPalette = []lipgloss.Color{"36", "75", "141", "178", "167", "114", "209", "111"}

	viewSelectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	viewUnsetStyle    = lipgloss.NewStyle().Foreground(colorDim)
	viewHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// viewCommand creates the view command, an interactive layout browser.
func (c *CLI) viewCommand() *cobra.Command {
	var sizes []string
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "view [document]",
		Short: "Browse a document's layout in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseSizes(sizes)
			if err != nil {
				return err
			}
			opts.Sizes = parsed
			opts.Logger = c.Logger

			doc, err := document.Load(args[0])
			if err != nil {
				return fmt.Errorf("load document %s: %w", args[0], err)
			}
			runner, err := c.newRunner(true)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			sc, err := runner.Layout(cmd.Context(), doc, opts)
			if err != nil {
				return fmt.Errorf("compute layout: %w", err)
			}

			p := tea.NewProgram(newViewModel(args[0], sc), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", "", "view this node instead of the document root")
	cmd.Flags().StringSliceVar(&sizes, "size", nil, "override a leaf size as name=WxH (repeatable)")

	return cmd
}

// =============================================================================
// viewModel - Interactive layout viewer
// =============================================================================

// viewModel shows a scene as a character grid with one box selected.
type viewModel struct {
	title  string
	scene  scene.Scene
	scale  float64
	cursor int
	colors map[string]lipgloss.Color
}

func newViewModel(title string, sc scene.Scene) viewModel {
	colors := make(map[string]lipgloss.Color, len(sc.Boxes))
	for i, b := range sc.Boxes {
		colors[b.Name] = boxPalette[i%len(boxPalette)]
	}
	return viewModel{title: title, scene: sc, scale: 1, colors: colors}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := len(m.scene.Boxes)
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "down", "j", "tab":
		if n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case "up", "k", "shift+tab":
		if n > 0 {
			m.cursor = (m.cursor + n - 1) % n
		}
	case "+", "=":
		m.scale = min(m.scale*2, maxViewScale)
	case "-":
		m.scale = max(m.scale/2, minViewScale)
	}
	return m, nil
}

// selected returns the highlighted box, if any.
func (m viewModel) selected() (scene.Box, bool) {
	if m.cursor < 0 || m.cursor >= len(m.scene.Boxes) {
		return scene.Box{}, false
	}
	return m.scene.Boxes[m.cursor], true
}

func (m viewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s x %s  scale %s",
		formatNum(m.scene.Width), formatNum(m.scene.Height), formatNum(m.scale))))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ select  +/- zoom  q quit"))
	b.WriteString("\n\n")

	grid, err := m.renderGrid()
	switch {
	case err != nil:
		grid = StyleWarning.Render(errs.UserMessage(err))
	case grid == "":
		grid = StyleDim.Render("(empty layout)")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, "   ", m.renderTable()))
	b.WriteString("\n")
	return b.String()
}

// renderGrid colours the text rendering cell by cell. Box names never
// contain spaces, so each field of a line is one cell.
func (m viewModel) renderGrid() (string, error) {
	data, err := sink.RenderText(m.scene, sink.WithTextScale(m.scale))
	if err != nil || len(data) == 0 {
		return "", err
	}
	text := string(data)
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	pad := 0
	for _, line := range lines {
		for _, name := range strings.Fields(line) {
			pad = max(pad, runewidth.StringWidth(name))
		}
	}

	current, _ := m.selected()
	var out strings.Builder
	for i, line := range lines {
		if i > 0 {
			out.WriteByte('\n')
		}
		for j, name := range strings.Fields(line) {
			if j > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(m.cellStyle(name, current.Name).Render(runewidth.FillRight(name, pad)))
		}
	}
	return out.String(), nil
}

func (m viewModel) cellStyle(name, selected string) lipgloss.Style {
	if name == selected {
		return viewSelectedStyle.Foreground(m.colors[name])
	}
	if color, ok := m.colors[name]; ok {
		return lipgloss.NewStyle().Foreground(color)
	}
	return viewUnsetStyle
}

func (m viewModel) renderTable() string {
	rows := make([][]string, 0, len(m.scene.Boxes))
	for i, bx := range m.scene.Boxes {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, bx.Name,
			formatNum(bx.X), formatNum(bx.Y), formatNum(bx.Width), formatNum(bx.Height)})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Box", "X", "Y", "W", "H").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return viewHeaderStyle
			}
			if row == m.cursor {
				return StyleHighlight
			}
			return StyleValue
		}).
		String()
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
