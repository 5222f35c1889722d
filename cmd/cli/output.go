package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/yurifrl/agencyfin/pkg/advice"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(22)
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("(none)"))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

// printField prints one "label  value" line.
func printField(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label)+value)
}

func printAdvice(w io.Writer, items []advice.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No recommendations."))
		return
	}
	for _, item := range items {
		style := infoStyle
		switch item.Kind {
		case advice.Warning:
			style = warningStyle
			if item.Priority == advice.Critical {
				style = badStyle
			}
		case advice.Success:
			style = goodStyle
		}
		fmt.Fprintf(w, "%s %s\n", style.Render(fmt.Sprintf("[%s]", item.Priority)), titleStyle.Render(item.Title))
		fmt.Fprintf(w, "  %s\n  %s %s\n\n", item.Description, mutedStyle.Render("→"), item.Action)
	}
}
