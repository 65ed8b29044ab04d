// memory is a tile-matching memory game for the terminal.
//
// Usage:
//
//	memory play              - Play a game (resumes the saved one)
//	memory menu              - Pick a difficulty interactively
//	memory serve             - Start SSH server for remote play
//	memory scores [layout]   - Show high scores
//	memory faces             - List card face sets
//
// Global flags:
//
//	--fps <rate>        - Redraw rate for animations (default: 30)
//	--seed <value>      - Set RNG seed for reproducible deals
//	--db <path>         - Set database path (default: ~/.memory/memory.db)
//	--config <path>     - Custom config YAML
//	--log-file <path>   - Where the local game writes its log
//	--log-level <level> - debug, info, warn or error
//
// MEMORY_DB, MEMORY_CONFIG and MEMORY_LOG_LEVEL (from the environment or a
// .env file) change the defaults of the matching flags.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-memory/internal/config"
	"github.com/vovakirdan/tui-memory/internal/faces"
	"github.com/vovakirdan/tui-memory/internal/storage"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogFile  string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "memory",
	Short: "Memory - Match pairs of cards in your terminal",
	Long: `Memory is a terminal card-matching game. Flip two cards per move and
find every pair before the move budget runs out. Consecutive matches
build a combo that multiplies your score.

Available commands:
  play     - Play a game directly
  menu     - Interactive difficulty picker
  serve    - Start SSH server for remote play
  scores   - View high scores
  faces    - List card face sets

Examples:
  memory play
  memory play --difficulty hard
  memory menu
  memory serve --ssh :2222
  memory scores 4x4`,
}

func init() {
	// A missing .env file is fine
	_ = godotenv.Load()

	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Redraw rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", getEnv("MEMORY_DB", "~/.memory/memory.db"), "Path to saves and scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", getEnv("MEMORY_CONFIG", ""), "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "~/.memory/memory.log", "Log file for the local game")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", getEnv("MEMORY_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(facesCmd)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// newLogger builds a logger writing to w at the configured level.
func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "memory",
	})
	if lvl, err := log.ParseLevel(flagLogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// openLogFile opens the local log file. The terminal belongs to the game,
// so a log that cannot be opened is discarded rather than printed.
func openLogFile() (*log.Logger, func()) {
	path, err := storage.ExpandHome(flagLogFile)
	if err == nil {
		err = os.MkdirAll(filepath.Dir(path), 0o755)
	}
	if err != nil {
		return log.New(io.Discard), func() {}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	//nolint:errcheck // Best-effort close on exit
	return newLogger(f), func() { f.Close() }
}

// loadGameConfig loads the YAML config and applies --difficulty/--layout/--faces.
func loadGameConfig(difficulty, layout, faceSet string) (config.MemoryConfig, faces.Set, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, faces.Set{}, err
	}

	if difficulty != "" {
		preset, err := config.ParsePreset(difficulty)
		if err != nil {
			return cfg, faces.Set{}, err
		}
		config.ApplyPreset(&cfg, preset)
	}
	if layout != "" {
		cfg.Board.Layout = layout
		if layout != config.RandomLayout && !slices.Contains(cfg.Board.Layouts, layout) {
			cfg.Board.Layouts = append(cfg.Board.Layouts, layout)
		}
	}
	if faceSet != "" {
		cfg.Faces = faceSet
	}
	if err := cfg.Validate(); err != nil {
		return cfg, faces.Set{}, err
	}

	set, err := faces.Get(cfg.Faces)
	if err != nil {
		return cfg, faces.Set{}, err
	}
	return cfg, set, nil
}
