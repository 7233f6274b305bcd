package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// palette mirrors the colour theme of the original terminal UI.
var palette = struct {
	Primary, Secondary, Muted, Success, Warning, Error lipgloss.Color
}{
	Primary:   lipgloss.Color("#7C3AED"), // Purple
	Secondary: lipgloss.Color("#06B6D4"), // Cyan
	Muted:     lipgloss.Color("#6C7086"), // Medium gray
	Success:   lipgloss.Color("#A6E3A1"), // Green
	Warning:   lipgloss.Color("#F9E2AF"), // Yellow
	Error:     lipgloss.Color("#F38BA8"), // Red
}

// outputStyles holds the styles used for command output.
type outputStyles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Score   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

var styles = newStyles(term.IsTerminal(int(os.Stdout.Fd())))

// newStyles returns coloured styles for a terminal and plain ones otherwise,
// so piped output stays free of escape codes.
func newStyles(tty bool) outputStyles {
	if !tty {
		plain := lipgloss.NewStyle()
		return outputStyles{plain, plain, plain, plain, plain, plain, plain}
	}
	return outputStyles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(palette.Primary),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(palette.Secondary),
		Muted:   lipgloss.NewStyle().Foreground(palette.Muted),
		Score:   lipgloss.NewStyle().Foreground(palette.Success),
		Success: lipgloss.NewStyle().Foreground(palette.Success),
		Warning: lipgloss.NewStyle().Foreground(palette.Warning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(palette.Error),
	}
}

// table renders rows as left-aligned columns sized to their widest cell.
func table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	render := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style.Width(widths[i]).Render(cell)
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	lines := []string{render(header, styles.Header)}
	for _, row := range rows {
		lines = append(lines, render(row, lipgloss.NewStyle()))
	}
	return strings.Join(lines, "\n")
}

// snippet shortens s to one line of at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
