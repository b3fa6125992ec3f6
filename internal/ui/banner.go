package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var dangerStyle = lipgloss.NewStyle().
	Border(lipgloss.ThickBorder()).
	BorderForeground(lipgloss.Color("196")).
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 2)

// dangerBanner renders the warning shown before tables are dropped.
func dangerBanner(target string) string {
	return dangerStyle.Render(fmt.Sprintf(
		"DANGER: all seven warehouse tables in '%s' will be dropped\nand recreated empty. Existing data is lost.", target))
}
