package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-memory/internal/config"
	"github.com/vovakirdan/tui-memory/internal/faces"
	"github.com/vovakirdan/tui-memory/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.memory/host_key.
	HostKeyPath string

	// DBPath is the path to the saves and scores database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Game is the configuration every session starts from.
	Game config.MemoryConfig

	// Faces is the face set cards are drawn from.
	Faces faces.Set

	FPS int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.memory/memory.db",
		IdleTimeout: 30 * time.Minute,
		Game:        config.DefaultMemoryConfig(),
		FPS:         DefaultFPS,
	}
}

// SSHServer wraps a Wish SSH server for the memory game.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "memory-ssh",
		})
	}
	if cfg.Faces.Len() == 0 {
		set, err := faces.Get(cfg.Game.Faces)
		if err != nil {
			return nil, err
		}
		cfg.Faces = set
	}

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open database, saves and scores disabled", "error", err)
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".memory", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// sessionSetup builds the per-player game setup. Each user gets their own
// save slot and hears the bell on their own session.
func (s *SSHServer) sessionSetup(sess ssh.Session) GameSetup {
	player := sess.User()
	logger := s.logger.With("user", player)

	setup := GameSetup{
		Config: s.config.Game,
		Faces:  s.config.Faces,
		Scores: s.store,
		Player: player,
		Logger: logger,
		FPS:    s.config.FPS,
		Bell:   sess,
	}
	if s.store != nil {
		setup.Slot = storage.NewSlot(s.store, "ssh:"+player, logger)
	}
	return setup
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewSessionModel(sshSession.Context(), s.sessionSetup(sshSession), pty.Window.Width, pty.Window.Height)

	// A dropped connection never reaches the quit key.
	go func() {
		<-sshSession.Context().Done()
		model.active.close()
	}()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server. Sessions are closed first so their
// games flush their saves before the database goes away.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)

	if s.store != nil {
		s.store.Close()
	}

	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// activeGame tracks the game a session is playing so it can be stopped
// from outside the update loop.
type activeGame struct {
	mu   sync.Mutex
	game *GameModel
}

func (a *activeGame) set(g *GameModel) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.game = g
}

func (a *activeGame) close() {
	a.mu.Lock()
	g := a.game
	a.game = nil
	a.mu.Unlock()
	if g != nil {
		g.Close()
	}
}

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenScores
)

// SessionModel manages the full session flow: menu -> game -> menu.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	ctx        context.Context
	setup      GameSetup
	screen     sessionScreen
	menu       MenuModel
	game       *GameModel
	scoreboard *ScoreboardModel
	active     *activeGame
	width      int
	height     int
	quitting   bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(ctx context.Context, setup GameSetup, width, height int) SessionModel {
	if setup.Logger == nil {
		setup.Logger = log.New(io.Discard)
	}
	m := SessionModel{
		ctx:    ctx,
		setup:  setup,
		active: &activeGame{},
		width:  width,
		height: height,
	}
	m.menu = NewMenuModel(m.hasSave(), width, height)
	return m
}

func (m SessionModel) hasSave() bool {
	return m.setup.Slot != nil && m.setup.Slot.Has(m.ctx)
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenScores:
		return m.updateScores(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}

	if selected.Choice == ChoiceScoreboard {
		sb := NewScoreboardModel(m.ctx, m.setup.Scores, m.setup.Config.Board.Layouts, m.width, m.height)
		m.scoreboard = &sb
		m.screen = screenScores
		return m, sb.Init()
	}

	if selected.Choice != ChoiceResume && m.setup.Slot != nil {
		m.setup.Slot.Clear(m.ctx)
	}

	setup := m.setup
	setup.Config = selected.Apply(m.setup.Config)
	game, err := NewGameModel(m.ctx, setup)
	if err != nil {
		m.setup.Logger.Error("cannot start game", "error", err)
		m.menu = NewMenuModel(m.hasSave(), m.width, m.height)
		return m, nil
	}

	m.game = &game
	m.active.set(m.game)
	m.screen = screenGame
	w, h := m.width, m.height
	return m, tea.Batch(game.Init(), func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	})
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.game = &gameModel
	}

	// The game asks the program to quit on back; the session keeps running.
	if m.game.BackToMenu() {
		m.active.close()
		m.game = nil
		m.screen = screenMenu
		m.menu = NewMenuModel(m.hasSave(), m.width, m.height)
		return m, m.menu.Init()
	}

	if m.game.IsQuitting() {
		m.active.close()
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// updateScores handles updates when the scoreboard is open.
func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scoreboard.Update(msg)
	if sb, ok := newModel.(ScoreboardModel); ok {
		m.scoreboard = &sb
	}

	if m.scoreboard.IsGoingBack() {
		m.scoreboard = nil
		m.screen = screenMenu
		m.menu = NewMenuModel(m.hasSave(), m.width, m.height)
		return m, nil
	}

	if m.scoreboard.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenScores:
		return m.scoreboard.View()
	}
	return m.menu.View()
}
