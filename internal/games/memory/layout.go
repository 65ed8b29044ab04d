package memory

import (
	"fmt"
	"strconv"
	"strings"
)

// Layout is a grid size a board can be dealt in.
type Layout struct {
	Rows    int
	Columns int
}

// String formats the layout as "RxC".
func (l Layout) String() string {
	return fmt.Sprintf("%dx%d", l.Rows, l.Columns)
}

// Pairs returns the number of pairs a board of this layout holds.
func (l Layout) Pairs() int {
	return l.Rows * l.Columns / 2
}

// Validate checks that the layout can be filled with pairs.
func (l Layout) Validate() error {
	return ValidateGrid(l.Rows, l.Columns)
}

// ParseLayout parses "RxC" (e.g. "4x4", "3X4").
func ParseLayout(s string) (Layout, error) {
	r, c, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q is not RxC", ErrInvalidGrid, s)
	}
	rows, err := strconv.Atoi(r)
	if err != nil {
		return Layout{}, fmt.Errorf("%w: rows in %q: %v", ErrInvalidGrid, s, err)
	}
	cols, err := strconv.Atoi(c)
	if err != nil {
		return Layout{}, fmt.Errorf("%w: columns in %q: %v", ErrInvalidGrid, s, err)
	}

	l := Layout{Rows: rows, Columns: cols}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}
