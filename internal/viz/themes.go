package viz

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the HUD palette. Mesh colors come from their materials.
type Theme struct {
	Name   string
	Title  lipgloss.Color
	Accent lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Border lipgloss.Color
	Good   lipgloss.Color
	Warn   lipgloss.Color
	Bad    lipgloss.Color
}

var (
	ThemeStudio = Theme{
		Name:   "studio",
		Title:  lipgloss.Color("#00ffff"),
		Accent: lipgloss.Color("#ff00ff"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#666688"),
		Border: lipgloss.Color("#444466"),
		Good:   lipgloss.Color("#00ff88"),
		Warn:   lipgloss.Color("#ffaa00"),
		Bad:    lipgloss.Color("#ff4444"),
	}

	ThemeRetro = Theme{
		Name:   "retro",
		Title:  lipgloss.Color("#88ff88"),
		Accent: lipgloss.Color("#00cc00"),
		Text:   lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
		Border: lipgloss.Color("#007700"),
		Good:   lipgloss.Color("#88ff88"),
		Warn:   lipgloss.Color("#ffff00"),
		Bad:    lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Title:  lipgloss.Color("#ffffff"),
		Accent: lipgloss.Color("#0088ff"),
		Text:   lipgloss.Color("#cccccc"),
		Muted:  lipgloss.Color("#888888"),
		Border: lipgloss.Color("#555555"),
		Good:   lipgloss.Color("#00ff00"),
		Warn:   lipgloss.Color("#ffaa00"),
		Bad:    lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeStudio, ThemeRetro, ThemeMinimal}
)

// GetTheme returns the named theme, falling back to studio.
func GetTheme(name string) Theme {
	i := slices.IndexFunc(Themes, func(t Theme) bool { return t.Name == name })
	if i < 0 {
		return ThemeStudio
	}
	return Themes[i]
}

// NextTheme cycles through Themes.
func NextTheme(current Theme) Theme {
	i := slices.IndexFunc(Themes, func(t Theme) bool { return t.Name == current.Name })
	return Themes[(i+1)%len(Themes)]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
