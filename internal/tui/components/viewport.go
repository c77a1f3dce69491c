package components

import (
	"mediabatch/internal/tui/theme"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// NewViewport constructs a themed borderless viewport. Dimensions derived
// from layout math can go non-positive on tiny terminals, so both are
// clamped to at least one cell.
func NewViewport(width, height int, th theme.Theme) *viewport.Model {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	vp := viewport.New(width, height)
	vp.Style = th.PanelStyle().
		BorderStyle(lipgloss.Border{}).
		BorderForeground(lipgloss.Color(""))
	return &vp
}
