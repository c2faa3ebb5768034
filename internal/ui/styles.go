// Package ui renders the terminal views of the tracker.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"orbit-tracker/internal/domain"
)

// Theme is the set of styles a view renders with.
type Theme struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Done    lipgloss.Style
	Border  lipgloss.Style
	status  map[domain.Status]lipgloss.Style
}

func Colour() Theme {
	return Theme{
		Title:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Done:    lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
		status: map[domain.Status]lipgloss.Style{
			domain.StatusApplied:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			domain.StatusInterviewing: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			domain.StatusRejected:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
			domain.StatusOffer:        lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		},
	}
}

// Mono renders without colour, for pipes and dumb terminals.
func Mono() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Title:   plain,
		Muted:   plain,
		Accent:  plain,
		Success: plain,
		Error:   plain,
		Done:    plain,
		Border:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		status:  map[domain.Status]lipgloss.Style{},
	}
}

// ThemeByName maps the -theme flag; unknown names get the colour theme.
func ThemeByName(name string) Theme {
	if strings.EqualFold(strings.TrimSpace(name), "mono") {
		return Mono()
	}
	return Colour()
}

func (t Theme) Status(s domain.Status) lipgloss.Style {
	if st, ok := t.status[s]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

func (t Theme) Ok(w io.Writer, msg string) {
	fmt.Fprintln(w, t.Success.Render("✔ "+msg))
}

func (t Theme) Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, t.Error.Render("✖ "+msg))
}

// pad right-pads s to width display cells.
func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// truncate cuts s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
