package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-memory/internal/platform/tui"
	"github.com/vovakirdan/tui-memory/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a difficulty picker menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select.
Esc during a game returns to the menu; the game is saved and offered
as "Continue" next time.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Tab          - High scores
  Q            - Quit

Examples:
  memory menu
  memory menu --fps 60
  memory menu --db ./memory.db`,
	Args: cobra.NoArgs,
	Run:  runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagFaces, "faces", "", "Card face set (see 'memory faces')")
	menuCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Never ring the terminal bell")
}

func runMenu(_ *cobra.Command, _ []string) {
	base, set, err := loadGameConfig("", "", flagFaces)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := openLogFile()
	defer closeLog()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		store = nil
	}

	// Get terminal size
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	ctx := context.Background()
	var slot *storage.Slot
	if store != nil {
		slot = storage.NewSlot(store, storage.DefaultSlot, logger)
	}

	// Menu loop
	for {
		menuResult, err := tui.RunMenu(slot != nil && slot.Has(ctx), width, height)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		if menuResult.Quit {
			break
		}

		item := menuResult.Item
		if item.Choice == tui.ChoiceScoreboard {
			goBack, sbErr := tui.RunScoreboard(ctx, store, base.Board.Layouts, width, height)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if goBack {
				continue // Back to menu
			}
			break // User quit from scoreboard
		}

		setup := tui.GameSetup{
			Config: item.Apply(base),
			Faces:  set,
			Scores: store,
			Player: os.Getenv("USER"),
			Logger: logger,
			Seed:   flagSeed,
			FPS:    flagFPS,
		}
		if !flagQuiet {
			setup.Bell = os.Stdout
		}
		if slot != nil {
			setup.Slot = slot
			if item.Choice != tui.ChoiceResume {
				slot.Clear(ctx)
			}
		}

		goBack, err := tui.RunGame(ctx, setup)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}
		if !goBack {
			break
		}
		// Loop back to menu
	}

	// Cleanup
	if store != nil {
		store.Close()
	}
}
