package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskboard/internal/todo"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB")).Background(lipgloss.Color("#374151"))
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	dueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	priorityStyle = map[todo.Priority]lipgloss.Style{
		todo.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		todo.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		todo.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
	}
)
