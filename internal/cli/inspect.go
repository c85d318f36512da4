package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/graph"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/pipeline"
)

// inspectCommand creates the inspect command: an interactive browser over
// node and edge diagnostics.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect <patch-or-graph-file>",
		Short: "Browse node and edge diagnostics interactively",
		Long: `Inspect shows per-node port declarations and per-edge compatibility,
including whether incompatible edges are bridgeable through registered
adapters. Use --plain for non-interactive output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true, "")
			if err != nil {
				return err
			}

			g, err := runner.Load(ctx, pipeline.Options{Input: args[0]})
			if err != nil {
				return err
			}
			d := g.Inspect(c.Library, c.Registry)

			if plain {
				printDiagnostics(d)
				return nil
			}

			model := newInspectModel(args[0], d)
			_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print diagnostics without the interactive browser")
	return cmd
}

func printDiagnostics(d graph.Diagnostics) {
	printInfo("Nodes")
	for _, n := range d.Nodes {
		printKeyValue(n.ID, fmt.Sprintf("%s (%d in, %d out)", n.CardID, len(n.Incoming), len(n.Outgoing)))
	}
	printInfo("Edges")
	for _, e := range d.Edges {
		label := fmt.Sprintf("%s.%s %s %s.%s",
			e.Edge.Source, e.Edge.SourcePort, iconArrow, e.Edge.Target, e.Edge.TargetPort)
		if e.IsValid {
			printSuccess("%s", label)
		} else {
			printError("%s: %s", label, e.Reason)
		}
	}
}

// List styles.
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listBadStyle      = lipgloss.NewStyle().Foreground(colorRed)
	listGoodStyle     = lipgloss.NewStyle().Foreground(colorGreen)
)

// inspectRow is one selectable line in the browser: a node or an edge.
type inspectRow struct {
	label  string
	detail string
	valid  bool
}

// inspectModel is the bubbletea model for the diagnostics browser.
type inspectModel struct {
	title  string
	rows   []inspectRow
	cursor int
	height int
	offset int
}

func newInspectModel(title string, d graph.Diagnostics) inspectModel {
	var rows []inspectRow
	for _, n := range d.Nodes {
		var ports []string
		for _, p := range n.Inputs {
			ports = append(ports, "in "+p.ID+": "+p.Type)
		}
		for _, p := range n.Outputs {
			ports = append(ports, "out "+p.ID+": "+p.Type)
		}
		detail := strings.Join(ports, "  ")
		if detail == "" {
			detail = "card unresolved"
		}
		rows = append(rows, inspectRow{
			label:  "node " + n.ID,
			detail: detail,
			valid:  len(n.Inputs)+len(n.Outputs) > 0,
		})
	}
	for _, e := range d.Edges {
		detail := "ok"
		if !e.IsValid {
			detail = e.Reason
		}
		rows = append(rows, inspectRow{
			label: fmt.Sprintf("edge %s.%s %s %s.%s",
				e.Edge.Source, e.Edge.SourcePort, iconArrow, e.Edge.Target, e.Edge.TargetPort),
			detail: detail,
			valid:  e.IsValid,
		})
	}
	return inspectModel{title: title, rows: rows, height: 15}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Inspect " + m.title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		row := m.rows[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		status := listGoodStyle.Render(iconSuccess)
		if !row.valid {
			status = listBadStyle.Render(iconError)
		}

		b.WriteString(cursor + status + " " + style.Render(row.label) + "\n")
	}

	if len(m.rows) > 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(m.rows[m.cursor].detail))
		b.WriteString("\n")
	}
	return b.String()
}
