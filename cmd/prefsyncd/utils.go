package main

import "github.com/charmbracelet/lipgloss"

var (
	// https://github.com/muesli/termenv/blob/master/ansicolors.go
	red       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	green     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	yellow    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cyan      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	lightGray = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
)

// styledStatus colors an engine status for terminal output.
func styledStatus(status string) string {
	switch status {
	case "idle":
		return green.Render(status)
	case "syncing":
		return cyan.Render(status)
	case "has_conflicts":
		return red.Render(status)
	default:
		return gray.Render(status)
	}
}

func onOff(enabled bool) string {
	if enabled {
		return green.Render("on")
	}
	return gray.Render("off")
}
