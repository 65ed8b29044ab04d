package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-memory/internal/config"
	"github.com/vovakirdan/tui-memory/internal/faces"
	"github.com/vovakirdan/tui-memory/internal/games/memory"
)

func instantConfig(layout string) config.MemoryConfig {
	cfg := config.DefaultMemoryConfig()
	cfg.Board.Layouts = []string{layout}
	cfg.Board.Layout = layout
	cfg.Timing = config.TimingConfig{}
	return cfg
}

func newTestGame(t *testing.T, layout string) GameModel {
	t.Helper()
	set, err := faces.Get("letters")
	require.NoError(t, err)

	m, err := NewGameModel(context.Background(), GameSetup{
		Config: instantConfig(layout),
		Faces:  set,
		Seed:   1,
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	require.NoError(t, m.game.Start(context.Background()))
	next, _ := m.Update(startedMsg{src: m.sub})
	return next.(GameModel)
}

func press(t *testing.T, m GameModel, k tea.KeyMsg) (GameModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	return next.(GameModel), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGameModelCursorStaysOnGrid(t *testing.T) {
	m := newTestGame(t, "2x2")
	require.Len(t, m.status.Cards, 4)

	steps := []struct {
		key  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyRight}, 1},
		{tea.KeyMsg{Type: tea.KeyRight}, 1},
		{tea.KeyMsg{Type: tea.KeyDown}, 3},
		{tea.KeyMsg{Type: tea.KeyDown}, 3},
		{runes("h"), 2},
		{tea.KeyMsg{Type: tea.KeyLeft}, 2},
		{runes("k"), 0},
		{tea.KeyMsg{Type: tea.KeyUp}, 0},
	}
	for _, s := range steps {
		m, _ = press(t, m, s.key)
		assert.Equal(t, s.want, m.cursor, "after %s", s.key)
	}
}

func TestGameModelSelectFlipsCard(t *testing.T) {
	m := newTestGame(t, "2x2")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotEqual(t, memory.Hidden, m.status.Cards[0].State)

	require.Eventually(t, func() bool {
		return m.game.Status().Cards[0].State == memory.Revealed
	}, 2*time.Second, 5*time.Millisecond)
}

func TestGameModelSelectUsesCursorPosition(t *testing.T) {
	m := newTestGame(t, "2x3")

	for _, k := range []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyRight}, {Type: tea.KeyDown}} {
		m, _ = press(t, m, k)
	}
	require.Equal(t, 5, m.cursor)

	card, ok := m.cursorCard()
	require.True(t, ok)
	assert.Equal(t, m.status.Cards[5].ID, card.ID)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotEqual(t, memory.Hidden, m.status.Cards[5].State)
	assert.Equal(t, memory.Hidden, m.status.Cards[0].State)
}

func TestGameModelQuitAndBack(t *testing.T) {
	m := newTestGame(t, "2x2")

	quit, cmd := press(t, m, runes("q"))
	assert.True(t, quit.IsQuitting())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, quit.View())

	back, _ := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, back.BackToMenu())
	assert.False(t, back.IsQuitting())
}

func TestGameModelEvents(t *testing.T) {
	m := newTestGame(t, "2x2")

	next, cmd := m.Update(eventMsg{src: m.sub, evt: memory.GameWon{Score: memory.ScoreState{Score: 300, MaxCombo: 2}}})
	m = next.(GameModel)
	assert.NotNil(t, cmd, "keeps listening for events")
	assert.Contains(t, m.banner, "Board cleared")
	assert.Equal(t, 300, m.best)

	next, _ = m.Update(eventMsg{src: m.sub, evt: memory.BoardReady{Rows: 2, Columns: 2}})
	m = next.(GameModel)
	assert.Empty(t, m.banner)

	// events from a game that was already closed are ignored
	stale := memory.NewChannelSubscriber(1)
	next, cmd = m.Update(eventMsg{src: stale, evt: memory.GameLost{}})
	m = next.(GameModel)
	assert.Nil(t, cmd)
	assert.Empty(t, m.banner)
}

func TestGameModelView(t *testing.T) {
	m := newTestGame(t, "2x3")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(GameModel)

	view := m.View()
	assert.Contains(t, view, "2x3")
	assert.Contains(t, view, "Score")
	assert.Contains(t, view, "Moves")
	assert.Equal(t, 6, strings.Count(view, cardBack))
}

func TestGameModelViewShowsUnavailableBoard(t *testing.T) {
	set := faces.Set{ID: "tiny", Symbols: []string{"x"}}
	m, err := NewGameModel(context.Background(), GameSetup{Config: instantConfig("2x2"), Faces: set})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	next, _ := m.Update(startedMsg{src: m.sub, err: m.game.Start(context.Background())})
	m = next.(GameModel)
	assert.ErrorIs(t, m.err, memory.ErrNotEnoughFaces)
	assert.Contains(t, m.View(), "No board")
}

func TestNewGameModelRejectsBadSetup(t *testing.T) {
	_, err := NewGameModel(context.Background(), GameSetup{Config: instantConfig("2x2")})
	assert.Error(t, err, "empty face set")

	cfg := instantConfig("2x2")
	cfg.Board.Layout = "9x9"
	_, err = NewGameModel(context.Background(), GameSetup{Config: cfg, Faces: faces.Set{Symbols: []string{"a"}}})
	assert.Error(t, err)
}

type stubFrames map[int]Frame

func (s stubFrames) Frame(id int) (Frame, bool) {
	f, ok := s[id]
	return f, ok
}

func TestRenderCard(t *testing.T) {
	set := faces.Set{Symbols: []string{"A", "B"}}

	hidden := renderCard(memory.Card{ID: 0, Face: 1, State: memory.Hidden}, set, nil, false)
	assert.Contains(t, hidden, cardBack)
	assert.NotContains(t, hidden, "B")

	revealed := renderCard(memory.Card{ID: 0, Face: 1, State: memory.Revealed}, set, nil, false)
	assert.Contains(t, revealed, "B")

	// first half of a reveal still shows the back
	flipping := renderCard(memory.Card{ID: 0, Face: 1, State: memory.Revealing}, set,
		stubFrames{0: {Effect: EffectFlip, Front: true, Progress: 0.1}}, false)
	assert.Contains(t, flipping, cardBack)

	pending := renderCard(memory.Card{ID: 0, Face: 1, State: memory.Hidden}, set,
		stubFrames{0: {Effect: EffectSpawn, Pending: true}}, false)
	assert.Empty(t, strings.TrimSpace(pending))
	assert.Equal(t, lipgloss.Width(hidden), lipgloss.Width(pending))
	assert.Equal(t, lipgloss.Height(hidden), lipgloss.Height(pending))
}

func TestRenderBoardShape(t *testing.T) {
	v := memory.View{Rows: 2, Columns: 3, Cards: make([]memory.Card, 6)}
	for i := range v.Cards {
		v.Cards[i] = memory.Card{ID: i, Face: i / 2, State: memory.Hidden, Interactive: true}
	}

	out := renderBoard(v, faces.Set{Symbols: []string{"A", "B", "C"}}, nil, 0)
	assert.Equal(t, 2*cardOuterH, lipgloss.Height(out))
	assert.Equal(t, 3*cardOuterW, lipgloss.Width(out))

	assert.Empty(t, renderBoard(memory.View{}, faces.Set{}, nil, 0))
}

func TestRenderHUD(t *testing.T) {
	st := memory.Status{View: memory.View{
		Score:      memory.ScoreState{Score: 250, Combo: 2, MaxCombo: 3},
		MovesLeft:  5,
		MovesTotal: 8,
		Cards: []memory.Card{
			{State: memory.Matched}, {State: memory.Matched},
			{State: memory.Hidden}, {State: memory.Hidden},
		},
	}}

	hud := renderHUD(st, 900)
	for _, want := range []string{"250", "x2", "best 3", "5/8", "1/2", "900"} {
		assert.Contains(t, hud, want)
	}
	assert.NotContains(t, renderHUD(st, 0), "Best")
}
