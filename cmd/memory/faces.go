package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-memory/internal/faces"
)

var facesCmd = &cobra.Command{
	Use:   "faces",
	Short: "List card face sets",
	Long: `Shows every face set cards can be drawn from. A board needs one face
per pair, so a 6x6 board needs a set of at least 18.`,
	Args: cobra.NoArgs,
	Run:  runFaces,
}

func runFaces(_ *cobra.Command, _ []string) {
	sets := faces.List()

	if len(sets) == 0 {
		fmt.Println("No face sets available.")
		return
	}

	fmt.Println("Available face sets:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, s := range sets {
		maxIDLen = max(maxIDLen, len(s.ID))
	}

	fmt.Printf("  %-*s  %-5s  %s\n", maxIDLen, "ID", "Faces", "Preview")
	fmt.Printf("  %-*s  %-5s  %s\n", maxIDLen, "--", "-----", "-------")

	for _, info := range sets {
		set, err := faces.Get(info.ID)
		if err != nil {
			continue
		}
		preview := set.Symbols[:min(8, set.Len())]
		fmt.Printf("  %-*s  %-5d  %s\n", maxIDLen, info.ID, info.Size, strings.Join(preview, " "))
	}

	fmt.Println()
	fmt.Println("Run 'memory play --faces <id>' to use a set.")
}
