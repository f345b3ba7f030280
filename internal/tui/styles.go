package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	capsuleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	amberStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	genesisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("220")).Bold(true).Padding(0, 1)
	starStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	ghostStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("245")).Padding(0, 1)
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("196")).Padding(1, 2)
	confirmStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("214")).Padding(1, 2)

	statusStyles = map[string]lipgloss.Style{
		"READY":   dimStyle,
		"EDITING": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"SAVING":  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		"SYNCED":  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		"ERROR":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}

	habitDone   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	habitFailed = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	habitUnset  = dimStyle
)
