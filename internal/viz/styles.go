package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Hint   lipgloss.Style
	Panel  lipgloss.Style
	Status map[string]lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Title),
		Label: lipgloss.NewStyle().Foreground(t.Muted),
		Value: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Hint:  lipgloss.NewStyle().Italic(true).Foreground(t.Muted),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		Status: map[string]lipgloss.Style{
			"running": lipgloss.NewStyle().Bold(true).Foreground(t.Good),
			"paused":  lipgloss.NewStyle().Bold(true).Foreground(t.Warn),
			"error":   lipgloss.NewStyle().Bold(true).Foreground(t.Bad),
		},
	}
}

// Field renders "label value" pairs on one line.
func (s Styles) Field(label string, value any) string {
	return s.Label.Render(label) + " " + s.Value.Render(fmt.Sprint(value))
}

// Keys renders key hints like "s sphere · b box".
func (s Styles) Keys(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, pairs[i]+" "+pairs[i+1])
	}
	return s.Hint.Render(strings.Join(parts, " · "))
}

// Spinner returns an animation frame for a running loop.
func Spinner(frame uint64) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return frames[frame%uint64(len(frames))]
}
