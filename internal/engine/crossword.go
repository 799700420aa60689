package engine

import (
	"fmt"
	"strings"
)

// Direction of a crossword clue.
type Direction string

const (
	Across Direction = "across"
	Down   Direction = "down"
)

// Clue addresses one crossword word by (number, direction) with its grid
// placement. Clue numbers are not unique on their own (3-across and 3-down
// coexist); Key() is the item identifier used by the engine and the judge.
type Clue struct {
	Number    int       `json:"number"`
	Direction Direction `json:"direction"`
	Prompt    string    `json:"prompt"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Length    int       `json:"length"`
}

// Key returns the stable item identifier, e.g. "3-across".
func (c Clue) Key() string {
	return fmt.Sprintf("%d-%s", c.Number, c.Direction)
}

// cell returns the grid coordinates of the i-th letter of the clue.
func (c Clue) cell(i int) (row, col int) {
	if c.Direction == Across {
		return c.Row, c.Col + i
	}
	return c.Row + i, c.Col
}

// Grid is the mutable letter grid for a crossword session. Cells shared
// between clues hold a single letter; clearing a rejected word must not
// erase letters that belong to a locked crossing word.
type Grid struct {
	rows, cols int
	cells      [][]rune
	clues      []Clue
	byCell     map[[2]int][]Clue
}

// NewGrid builds an empty grid covering the given clues.
func NewGrid(rows, cols int, clues []Clue) *Grid {
	g := &Grid{
		rows:   rows,
		cols:   cols,
		cells:  make([][]rune, rows),
		clues:  clues,
		byCell: make(map[[2]int][]Clue),
	}
	for i := range g.cells {
		g.cells[i] = make([]rune, cols)
	}
	for _, clue := range clues {
		for i := 0; i < clue.Length; i++ {
			row, col := clue.cell(i)
			g.byCell[[2]int{row, col}] = append(g.byCell[[2]int{row, col}], clue)
		}
	}
	return g
}

// Clues returns the clue catalog backing this grid.
func (g *Grid) Clues() []Clue { return g.clues }

// CluesAt returns every clue passing through a cell. Empty for black squares.
func (g *Grid) CluesAt(row, col int) []Clue {
	return g.byCell[[2]int{row, col}]
}

// SetCell writes one uppercase letter into a playable cell. Writes to cells
// outside every clue are ignored.
func (g *Grid) SetCell(row, col int, letter rune) {
	if len(g.byCell[[2]int{row, col}]) == 0 {
		return
	}
	g.cells[row][col] = []rune(strings.ToUpper(string(letter)))[0]
}

// Word assembles the current letters of a clue into the candidate string
// submitted to the judge. Empty cells are skipped, matching how a partially
// filled word reads.
func (g *Grid) Word(clue Clue) string {
	var b strings.Builder
	for i := 0; i < clue.Length; i++ {
		row, col := clue.cell(i)
		if g.cells[row][col] != 0 {
			b.WriteRune(g.cells[row][col])
		}
	}
	return b.String()
}

// Fill writes a confirmed answer into the clue's cells.
func (g *Grid) Fill(clue Clue, answer string) {
	letters := []rune(strings.ToUpper(answer))
	for i := 0; i < clue.Length && i < len(letters); i++ {
		row, col := clue.cell(i)
		g.cells[row][col] = letters[i]
	}
}

// ClearWord empties a rejected word's cells while preserving any cell that a
// locked crossing word also occupies.
func (g *Grid) ClearWord(clue Clue, locked func(Clue) bool) {
	for i := 0; i < clue.Length; i++ {
		row, col := clue.cell(i)
		shared := false
		for _, other := range g.CluesAt(row, col) {
			if other.Key() == clue.Key() {
				continue
			}
			if locked(other) {
				shared = true
				break
			}
		}
		if !shared {
			g.cells[row][col] = 0
		}
	}
}

// Restore rebuilds the grid from saved answers keyed by clue key, used when
// resuming a session.
func (g *Grid) Restore(answers map[string]string) {
	for _, clue := range g.clues {
		if answer, ok := answers[clue.Key()]; ok && len([]rune(answer)) == clue.Length {
			g.Fill(clue, answer)
		}
	}
}
