package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-memory/internal/config"
)

// MenuChoice is what the player picked on the start menu.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoiceResume
	ChoicePreset
	ChoiceRandom
	ChoiceScoreboard
)

// MenuItem represents a selectable entry in the menu.
type MenuItem struct {
	Choice MenuChoice
	Preset config.DifficultyPreset
	Title  string
	Detail string
}

// MenuModel is the Bubble Tea model for the start menu.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	keyMapper *KeyMapper
	quitting  bool
	selected  *MenuItem // Set when user selects an entry
}

// NewMenuModel creates a new menu model. hasSave adds a resume entry on top.
func NewMenuModel(hasSave bool, width, height int) MenuModel {
	items := make([]MenuItem, 0, 6)
	if hasSave {
		items = append(items, MenuItem{Choice: ChoiceResume, Title: "Continue", Detail: "saved game"})
	}
	for _, p := range config.Presets() {
		items = append(items, MenuItem{
			Choice: ChoicePreset,
			Preset: p,
			Title:  strings.ToUpper(string(p[:1])) + string(p[1:]),
			Detail: config.LayoutForPreset(p),
		})
	}
	items = append(items,
		MenuItem{Choice: ChoiceRandom, Title: "Random", Detail: "any layout"},
		MenuItem{Choice: ChoiceScoreboard, Title: "High scores"},
	)

	return MenuModel{
		items:     items,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keyMapper.MapKeyToMenuAction(msg)

	switch action {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit // Exit menu to start game
		}

	case MenuActionScoreboard:
		m.selected = &MenuItem{Choice: ChoiceScoreboard}
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  M E M O R Y  "), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Find every pair before you run out of moves", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := cursor + item.Title
		if item.Detail != "" {
			line = fmt.Sprintf("%s%-12s %s", cursor, item.Title, hudLabel.Render(item.Detail))
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Tab: Scores  |  Q: Quit"
	b.WriteString(centerText(helpStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Apply turns a menu item into the config for the next game. Only
// ChoiceResume keeps a saved game; the caller clears the slot otherwise.
func (item MenuItem) Apply(cfg config.MemoryConfig) config.MemoryConfig {
	cfg.Board.Layouts = slices.Clone(cfg.Board.Layouts)
	switch item.Choice {
	case ChoicePreset:
		config.ApplyPreset(&cfg, item.Preset)
	case ChoiceRandom:
		cfg.Board.Layout = config.RandomLayout
	}
	return cfg
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	Item MenuItem
	Quit bool
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(hasSave bool, width, height int) (MenuResult, error) {
	model := NewMenuModel(hasSave, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok || m.IsQuitting() || m.Selected() == nil {
		return MenuResult{Quit: true}, nil
	}

	return MenuResult{Item: *m.Selected()}, nil
}
