package fancy

import (
	"github.com/charmbracelet/lipgloss"
)

// Common styles that can be used across the application
var (
	RootStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGray)

	ComponentStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	PlatformStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	EngineStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	BrandStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// PlatformText styles a platform name
func PlatformText(text string) string {
	return PlatformStyle.Render(text)
}

// EngineText styles an engine identifier
func EngineText(text string) string {
	return EngineStyle.Render(text)
}

// BrandText styles the product name in banners
func BrandText(text string) string {
	return BrandStyle.Render(text)
}

// ErrorText styles error messages
func ErrorText(text string) string {
	return ErrorStyle.Render(text)
}

// CountText styles count numbers (cyan)
func CountText(text string) string {
	return ComponentStyle.Render(text)
}
