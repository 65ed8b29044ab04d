package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-memory/internal/faces"
	"github.com/vovakirdan/tui-memory/internal/games/memory"
)

const (
	cardBack     = "░░"
	cardEdge     = "▐▌"
	cardInner    = 4 // content width inside the border
	cardOuterW   = cardInner + 3
	cardOuterH   = 3
	cursorMarker = lipgloss.Color("229")
)

var (
	cardBase = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Width(cardInner).
			Align(lipgloss.Center).
			MarginRight(1)

	hiddenStyle   = cardBase.BorderForeground(lipgloss.Color("240")).Foreground(lipgloss.Color("61"))
	revealedStyle = cardBase.BorderForeground(lipgloss.Color("12"))
	matchedStyle  = cardBase.BorderForeground(lipgloss.Color("2")).Foreground(lipgloss.Color("2"))
	mismatchStyle = cardBase.BorderForeground(lipgloss.Color("9")).Foreground(lipgloss.Color("9"))
	emptySlot     = lipgloss.NewStyle().Width(cardOuterW).Height(cardOuterH)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	hudLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	hudValue  = lipgloss.NewStyle().Bold(true)
	hudWarn   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	wonStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	lostStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// frameSource samples card animations; *TerminalAnimator satisfies it.
type frameSource interface {
	Frame(cardID int) (Frame, bool)
}

// renderCard draws one card for its state and current animation frame.
func renderCard(c memory.Card, set faces.Set, frames frameSource, focused bool) string {
	f, animating := Frame{}, false
	if frames != nil {
		f, animating = frames.Frame(c.ID)
	}
	if animating && f.Effect == EffectSpawn && f.Pending {
		return emptySlot.Render("")
	}

	face := set.Symbol(c.Face)
	var style lipgloss.Style
	text := cardBack

	switch c.State {
	case memory.Hidden:
		style = hiddenStyle
	case memory.Revealing, memory.Revealed:
		style, text = revealedStyle, face
	case memory.Matched:
		style, text = matchedStyle, face
	case memory.Mismatched:
		style, text = mismatchStyle, face
	}

	if animating {
		switch f.Effect {
		case EffectFlip:
			switch {
			case f.Progress > 0.4 && f.Progress < 0.6:
				text = cardEdge
			case f.ShowsFront():
				text = face
			default:
				text = cardBack
			}
		case EffectMatch:
			if f.Progress < 1 {
				style = style.Border(lipgloss.ThickBorder()).Bold(true)
			}
		case EffectShake:
			if int(f.Progress*8)%2 == 1 {
				style = style.MarginLeft(1).MarginRight(0)
			}
		}
	}

	if focused {
		style = style.BorderForeground(cursorMarker)
		if style.GetBorderStyle() == lipgloss.RoundedBorder() {
			style = style.Border(lipgloss.DoubleBorder())
		}
	}
	return style.Render(text)
}

// renderBoard lays the cards out row by row. cursor is a card index.
func renderBoard(v memory.View, set faces.Set, frames frameSource, cursor int) string {
	if v.Rows == 0 || v.Columns == 0 || len(v.Cards) == 0 {
		return ""
	}

	rows := make([]string, 0, v.Rows)
	for r := range v.Rows {
		cells := make([]string, 0, v.Columns)
		for c := range v.Columns {
			card, ok := v.At(r, c)
			if !ok {
				break
			}
			cells = append(cells, renderCard(card, set, frames, r*v.Columns+c == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderHUD shows the counters above the board.
func renderHUD(st memory.Status, best int) string {
	pairs := len(st.Cards) / 2
	moves := hudValue.Render(fmt.Sprintf("%d/%d", st.MovesLeft, st.MovesTotal))
	if st.MovesTotal > 0 && st.MovesLeft*4 <= st.MovesTotal {
		moves = hudWarn.Render(fmt.Sprintf("%d/%d", st.MovesLeft, st.MovesTotal))
	}

	parts := []string{
		hudLabel.Render("Score ") + hudValue.Render(fmt.Sprintf("%d", st.Score.Score)),
		hudLabel.Render("Combo ") + hudValue.Render(fmt.Sprintf("x%d", st.Score.Combo)) +
			hudLabel.Render(fmt.Sprintf(" (best %d)", st.Score.MaxCombo)),
		hudLabel.Render("Moves ") + moves,
		hudLabel.Render("Pairs ") + hudValue.Render(fmt.Sprintf("%d/%d", countMatched(st.Cards)/2, pairs)),
	}
	if best > 0 {
		parts = append(parts, hudLabel.Render("Best ")+hudValue.Render(fmt.Sprintf("%d", best)))
	}
	return strings.Join(parts, "   ")
}

func countMatched(cards []memory.Card) int {
	n := 0
	for _, c := range cards {
		if c.State == memory.Matched {
			n++
		}
	}
	return n
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

// centerBlock centers a multi-line block within width.
func centerBlock(block string, width int) string {
	if width <= 0 {
		return block
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}
