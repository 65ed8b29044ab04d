package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"

	"github.com/vovakirdan/tui-memory/internal/config"
	"github.com/vovakirdan/tui-memory/internal/faces"
	"github.com/vovakirdan/tui-memory/internal/games/memory"
	"github.com/vovakirdan/tui-memory/internal/storage"
)

// GameSetup holds everything needed to put a board on screen.
type GameSetup struct {
	Config config.MemoryConfig
	Faces  faces.Set
	Scores *storage.Store // nil disables high scores
	Slot   memory.Store   // nil disables save/resume
	Player string
	Logger *log.Logger
	Seed   int64 // 0 = random based on time
	FPS    int
	Bell   io.Writer // nil = silent
}

// eventMsg carries a coordinator event into the update loop.
type eventMsg struct {
	src *memory.ChannelSubscriber
	evt memory.Event
}

// startedMsg reports that the first board has been installed.
type startedMsg struct {
	src *memory.ChannelSubscriber
	err error
}

// restartedMsg reports the end of a manual restart.
type restartedMsg struct {
	src *memory.ChannelSubscriber
	err error
}

// GameModel is the Bubble Tea model for one memory game.
type GameModel struct {
	ctx         context.Context
	game        *memory.Coordinator
	sub         *memory.ChannelSubscriber
	unsubscribe func()
	anim        *TerminalAnimator
	audio       *BellAudio
	scores      *storage.Store
	set         faces.Set
	logger      *log.Logger
	fps         int

	keys     GameKeyMap
	help     help.Model
	status   memory.Status
	cursor   int
	best     int
	banner   string
	err      error
	width    int
	height   int
	quitting bool
	back     bool
}

// NewGameModel builds a coordinator from setup. The game starts when the
// program calls Init; ctx bounds its lifetime.
func NewGameModel(ctx context.Context, setup GameSetup) (GameModel, error) {
	if err := setup.Config.Validate(); err != nil {
		return GameModel{}, fmt.Errorf("tui: %w", err)
	}
	layouts, random, err := setup.Config.Layouts()
	if err != nil {
		return GameModel{}, fmt.Errorf("tui: %w", err)
	}
	if setup.Faces.Len() == 0 {
		return GameModel{}, errors.New("tui: empty face set")
	}

	logger := setup.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	seed := setup.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rules := setup.Config.Rules()
	anim := NewTerminalAnimator(rules.Timing)
	audio := NewBellAudio(setup.Bell)

	opts := memory.Options{
		Rules:        rules,
		Layouts:      layouts,
		RandomLayout: random,
		FaceCount:    setup.Faces.Len(),
		Animator:     anim,
		Audio:        audio,
		Store:        setup.Slot,
		Logger:       logger,
		Rand:         rand.New(rand.NewSource(seed)),
	}
	if setup.Scores != nil {
		opts.Recorder = storage.Recorder{Store: setup.Scores, Player: setup.Player}
	}

	game := memory.NewCoordinator(opts)
	sub := memory.NewChannelSubscriber(256)
	h := help.New()
	h.ShowAll = false

	return GameModel{
		ctx:         ctx,
		game:        game,
		sub:         sub,
		unsubscribe: game.Subscribe(sub),
		anim:        anim,
		audio:       audio,
		scores:      setup.Scores,
		set:         setup.Faces,
		logger:      logger,
		fps:         setup.FPS,
		keys:        DefaultGameKeyMap(),
		help:        h,
	}, nil
}

// Init starts the game and the redraw loop.
func (m GameModel) Init() tea.Cmd {
	return tea.Batch(
		startCmd(m.ctx, m.game, m.sub),
		waitForEvent(m.sub),
		tickCmd(m.fps),
	)
}

func startCmd(ctx context.Context, game *memory.Coordinator, sub *memory.ChannelSubscriber) tea.Cmd {
	return func() tea.Msg {
		return startedMsg{src: sub, err: game.Start(ctx)}
	}
}

func restartCmd(ctx context.Context, game *memory.Coordinator, sub *memory.ChannelSubscriber) tea.Cmd {
	return func() tea.Msg {
		return restartedMsg{src: sub, err: game.Restart(ctx)}
	}
}

// waitForEvent blocks until the coordinator publishes something.
func waitForEvent(sub *memory.ChannelSubscriber) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-sub.Events():
			return eventMsg{src: sub, evt: evt}
		case <-sub.Done():
			return nil
		}
	}
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.quitting || m.back {
			return m, nil
		}
		m.status = m.game.Status()
		return m, tickCmd(m.fps)

	case eventMsg:
		if msg.src != m.sub {
			return m, nil
		}
		m.handleEvent(msg.evt)
		return m, waitForEvent(m.sub)

	case startedMsg:
		if msg.src == m.sub && msg.err != nil {
			m.err = msg.err
		}
		m.status = m.game.Status()
		return m, nil

	case restartedMsg:
		if msg.src == m.sub && msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err
		}
		return m, nil
	}

	return m, nil
}

func (m *GameModel) handleEvent(evt memory.Event) {
	switch e := evt.(type) {
	case memory.BoardReady:
		m.banner = ""
		m.err = nil
		m.cursor = min(m.cursor, max(len(e.Cards)-1, 0))
		m.best = m.highScore(memory.Layout{Rows: e.Rows, Columns: e.Columns})
	case memory.BoardUnavailable:
		m.err = e.Err
	case memory.GameWon:
		m.banner = wonStyle.Render(fmt.Sprintf("Board cleared! Score %d, best combo x%d", e.Score.Score, e.Score.MaxCombo))
		m.best = max(m.best, e.Score.Score)
	case memory.GameLost:
		m.banner = lostStyle.Render(fmt.Sprintf("Out of moves. Final score %d", e.Score.Score))
	}
	m.status = m.game.Status()
}

func (m GameModel) highScore(layout memory.Layout) int {
	if m.scores == nil {
		return 0
	}
	best, err := m.scores.HighScore(m.ctx, layout.String())
	if err != nil {
		m.logger.Warn("failed to read high score", "layout", layout, "error", err)
		return 0
	}
	return best
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.back = true
		return m, tea.Quit

	case msg.String() == "ctrl+s":
		m.saveScreenshot()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Mute):
		m.audio.SetMuted(!m.audio.Muted())
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		return m, restartCmd(m.ctx, m.game, m.sub)

	case key.Matches(msg, m.keys.Select):
		if card, ok := m.cursorCard(); ok {
			m.game.Select(card.ID)
			m.status = m.game.Status()
		}
		return m, nil
	}

	m.cursor = m.moveCursor(msg)
	return m, nil
}

// cursorCard returns the card under the cursor.
func (m GameModel) cursorCard() (memory.Card, bool) {
	cols := m.status.Columns
	if cols == 0 {
		return memory.Card{}, false
	}
	return m.status.At(m.cursor/cols, m.cursor%cols)
}

// moveCursor steps the cursor within the grid, clamping at the edges.
func (m GameModel) moveCursor(msg tea.KeyMsg) int {
	cols := m.status.Columns
	if cols == 0 || len(m.status.Cards) == 0 {
		return m.cursor
	}
	row, col := m.cursor/cols, m.cursor%cols

	switch {
	case key.Matches(msg, m.keys.Up):
		row--
	case key.Matches(msg, m.keys.Down):
		row++
	case key.Matches(msg, m.keys.Left):
		col--
	case key.Matches(msg, m.keys.Right):
		col++
	default:
		return m.cursor
	}

	if _, ok := m.status.At(row, col); !ok {
		return m.cursor
	}
	return row*cols + col
}

// saveScreenshot saves the current board as plain text.
func (m *GameModel) saveScreenshot() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".memory", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("memory_%s.txt", timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(ansi.Strip(m.View())), 0o600)
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting || m.back {
		return ""
	}

	var b strings.Builder

	title := "M E M O R Y"
	if m.status.Rows > 0 {
		title = fmt.Sprintf("M E M O R Y  %dx%d", m.status.Rows, m.status.Columns)
	}
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(centerText(lostStyle.Render("No board: "+m.err.Error()), m.width))
		b.WriteString("\n")
	case len(m.status.Cards) == 0:
		b.WriteString(centerText(hudLabel.Render("Dealing..."), m.width))
		b.WriteString("\n")
	default:
		b.WriteString(centerText(renderHUD(m.status, m.best), m.width))
		b.WriteString("\n\n")
		b.WriteString(centerBlock(renderBoard(m.status.View, m.set, m.anim, m.cursor), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.banner != "" {
		b.WriteString(centerText(m.banner, m.width))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// Close stops the game and flushes its save. Safe to call more than once.
func (m GameModel) Close() {
	m.game.Stop()
	m.unsubscribe()
	m.sub.Close()
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.back
}

// RunGame starts the Bubble Tea program for one game.
// Returns true if user wants to go back to menu, false if quitting.
func RunGame(ctx context.Context, setup GameSetup) (goBack bool, err error) {
	model, err := NewGameModel(ctx, setup)
	if err != nil {
		return false, err
	}
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(GameModel)
	if !ok {
		return false, nil
	}
	return m.BackToMenu(), nil
}
