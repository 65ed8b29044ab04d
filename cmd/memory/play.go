package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-memory/internal/games/memory"
	"github.com/vovakirdan/tui-memory/internal/platform/tui"
	"github.com/vovakirdan/tui-memory/internal/storage"
)

var (
	flagDifficulty string
	flagLayout     string
	flagFaces      string
	flagSlot       string
	flagSaveFile   string
	flagFresh      bool
	flagQuiet      bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game",
	Long: `Start playing. A saved game in the slot is resumed unless --fresh is given.

Controls:
  Arrows/hjkl  - Move the cursor
  Enter/Space  - Flip the card under the cursor
  R            - Deal a new board (score resets)
  M            - Mute the bell
  ?            - Show all keys
  Ctrl+S       - Save a text screenshot
  Q/Ctrl+C     - Quit (the game is saved)

Difficulty options:
  easy   - 3x4 board, generous move budget, small mismatch penalty
  normal - 4x4 board, default budget
  hard   - 6x6 board, tight budget, large mismatch penalty

Examples:
  memory play
  memory play --difficulty hard
  memory play --layout 2x3 --faces letters
  memory play --layout random --fresh
  memory play --save-file ./memory.json
  memory play --config ./my-memory.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	playCmd.Flags().StringVar(&flagLayout, "layout", "", `Board layout "RxC" or "random"`)
	playCmd.Flags().StringVar(&flagFaces, "faces", "", "Card face set (see 'memory faces')")
	playCmd.Flags().StringVar(&flagSlot, "slot", storage.DefaultSlot, "Save slot name")
	playCmd.Flags().StringVar(&flagSaveFile, "save-file", "", "Keep the save in a JSON file instead of the database")
	playCmd.Flags().BoolVar(&flagFresh, "fresh", false, "Discard the saved game and deal a new board")
	playCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Never ring the terminal bell")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg, set, err := loadGameConfig(flagDifficulty, flagLayout, flagFaces)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := openLogFile()
	defer closeLog()

	// Open storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}

	ctx := context.Background()
	setup := tui.GameSetup{
		Config: cfg,
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

	slot, err := openSlot(store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: saves disabled: %v\n", err)
	}
	if slot != nil {
		setup.Slot = slot
		if flagFresh {
			slot.Clear(ctx)
		}
	}

	_, runErr := tui.RunGame(ctx, setup)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// openSlot picks the save backend: a JSON file when --save-file is set,
// otherwise a slot in the database. Returns nil when saves are unavailable.
func openSlot(store *storage.Store, logger *log.Logger) (memory.Store, error) {
	if flagSaveFile != "" {
		slot, err := storage.NewFileSlot(flagSaveFile, logger)
		if err != nil {
			return nil, err
		}
		return slot, nil
	}
	if store == nil {
		return nil, nil
	}
	return storage.NewSlot(store, flagSlot, logger), nil
}
