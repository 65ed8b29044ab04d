// Package tui provides the Bubble Tea host for the memory game.
// It handles the terminal UI loop, input mapping, card animation and the
// SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultFPS is the redraw rate used when none is configured.
const DefaultFPS = 30

// TickMsg is sent to trigger a redraw of running animations.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(fps int) tea.Cmd {
	if fps <= 0 {
		fps = DefaultFPS
	}
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
