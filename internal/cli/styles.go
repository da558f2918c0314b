// Package cli renders etfsave's terminal output with lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	AccentColor  = lipgloss.Color("#4C9AFF")
	GoodColor    = lipgloss.Color("#4ECDC4")
	CautionColor = lipgloss.Color("#FFE66D")
	BadColor     = lipgloss.Color("#FF6B6B")
	NoteColor    = lipgloss.Color("#95E1D3")
	MutedColor   = lipgloss.Color("#666666")
	BorderColor  = lipgloss.Color("#333")
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(AccentColor).MarginBottom(1)
	SuccessStyle = lipgloss.NewStyle().Foreground(GoodColor)
	WarningStyle = lipgloss.NewStyle().Foreground(CautionColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(BadColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(NoteColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(MutedColor)
	PromptStyle  = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)

	// HeaderCellStyle and BodyCellStyle pad table cells; see renderTable.
	HeaderCellStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	BodyCellStyle   = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(2)

	// PanelStyle frames the end-of-run summary.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)
)

// Glyphs prefixed to status lines. UpIcon and DownIcon mark fee moves.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ChartIcon   = "📊"
	UpIcon      = "▲"
	DownIcon    = "▼"
)

func withIcon(style lipgloss.Style, icon, msg string) string {
	return style.Render(icon + " " + msg)
}

// FormatSuccess renders msg as a success line.
func FormatSuccess(msg string) string { return withIcon(SuccessStyle, SuccessIcon, msg) }

// FormatError renders msg as an error line.
func FormatError(msg string) string { return withIcon(ErrorStyle, ErrorIcon, msg) }

// FormatWarning renders msg as a warning line.
func FormatWarning(msg string) string { return withIcon(WarningStyle, WarningIcon, msg) }

// FormatInfo renders msg as an informational line.
func FormatInfo(msg string) string { return withIcon(InfoStyle, InfoIcon, msg) }

// FormatTitle renders a section heading.
func FormatTitle(title string) string { return withIcon(TitleStyle, ChartIcon, title) }

// FormatPrompt renders a question awaiting input.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderPanel draws content under a heading inside a rounded border.
func RenderPanel(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
