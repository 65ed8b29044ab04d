package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-memory/internal/games/memory"
	"github.com/vovakirdan/tui-memory/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresStats bool
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [layout]",
	Short: "Show high scores",
	Long: `Display the top scores for a board layout, or for every layout when
none is given.

Examples:
  memory scores
  memory scores 4x4
  memory scores --stats
  memory scores 2x2 --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVarP(&flagScoresLimit, "limit", "n", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagScoresStats, "stats", false, "Show per-layout statistics instead")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete the scores instead of showing them")
}

func runScores(_ *cobra.Command, args []string) {
	layout := ""
	if len(args) == 1 {
		l, err := memory.ParseLayout(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		layout = l.String()
	}

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	switch {
	case flagScoresClear:
		if err := store.ClearScores(ctx, layout); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
			return
		}
		fmt.Println("Scores cleared.")
	case flagScoresStats:
		printStats(ctx, store)
	default:
		printScores(ctx, store, layout)
	}
}

func printScores(ctx context.Context, store *storage.Store, layout string) {
	scores, err := store.TopScores(ctx, layout, flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		return
	}

	title := "all layouts"
	if layout != "" {
		title = layout
	}
	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'memory play' to set the first high score!")
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-8s  %-6s  %-5s  %-5s  %-6s  %-10s  %s\n", "Rank", "Score", "Layout", "Combo", "Moves", "Result", "Player", "Date")
	fmt.Printf("  %-4s  %-8s  %-6s  %-5s  %-5s  %-6s  %-10s  %s\n", "----", "-----", "------", "-----", "-----", "------", "------", "----")

	for i, e := range scores {
		result := "lost"
		if e.Won {
			result = "won"
		}
		fmt.Printf("  %-4d  %-8d  %-6s  x%-4d  %-5d  %-6s  %-10s  %s\n",
			i+1, e.Score, e.Layout, e.MaxCombo, e.Moves, result, e.Player, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	if layout != "" {
		if best, err := store.HighScore(ctx, layout); err == nil {
			fmt.Println()
			fmt.Printf("Best: %d\n", best)
		}
	}
}

func printStats(ctx context.Context, store *storage.Store) {
	stats, err := store.AllLayoutStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
		return
	}
	if len(stats) == 0 {
		fmt.Println("No games played yet.")
		return
	}

	fmt.Printf("  %-6s  %-5s  %-4s  %-8s  %-5s  %-8s  %s\n", "Layout", "Games", "Wins", "Best", "Combo", "Average", "Last played")
	fmt.Printf("  %-6s  %-5s  %-4s  %-8s  %-5s  %-8s  %s\n", "------", "-----", "----", "----", "-----", "-------", "-----------")
	for _, st := range stats {
		fmt.Printf("  %-6s  %-5d  %-4d  %-8d  x%-4d  %-8.0f  %s\n",
			st.Layout, st.GamesCount, st.Wins, st.HighScore, st.BestCombo, st.AvgScore, st.LastPlayed.Format("2006-01-02 15:04"))
	}
}
