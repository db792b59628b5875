package mines

import (
	"fmt"
	"log/slog"
	"strings"
)

var Log *slog.Logger = slog.Default()

type Phase uint8

const (
	InProgress Phase = iota
	Lost
	Won
)

var phaseNames = [...]string{
	InProgress: "in_progress",
	Lost:       "lost",
	Won:        "won",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", p)
}

func (p Phase) Over() bool {
	return p == Lost || p == Won
}

// [Phase] implements [encoding.TextMarshaler]
func (p Phase) MarshalText() ([]byte, error) {
	if int(p) >= len(phaseNames) {
		return nil, fmt.Errorf("unknown phase %d", p)
	}
	return []byte(phaseNames[p]), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Round is the complete state of one game. Rounds are values: Reveal,
// ToggleFlag and Reset return a new Round and leave the receiver untouched,
// so a caller may keep the previous Round around for rendering or comparison.
type Round struct {
	params  GameParams
	cells   []Cell
	phase   Phase
	version uint64
}

func (r Round) Params() GameParams { return r.params }
func (r Round) Size() int          { return r.params.Size }
func (r Round) MineCount() int     { return r.params.MineCount }
func (r Round) Phase() Phase       { return r.phase }

// Version grows by one with every operation that changed the round.
func (r Round) Version() uint64 { return r.version }

func (r Round) Cell(row, col int) (Cell, error) {
	if !r.params.ValidatePosition(row, col) {
		return Cell{}, r.positionError(row, col)
	}
	return r.cells[r.params.index(row, col)], nil
}

func (r Round) Status(row, col int) (CellStatus, error) {
	c, err := r.Cell(row, col)
	if err != nil {
		return Hidden, err
	}
	return c.Status(), nil
}

func (r Round) Statuses() GridInfo {
	grid := make(GridInfo, len(r.cells))
	for i, c := range r.cells {
		grid[i] = c.Status()
	}
	return grid
}

func (r Round) FlagCount() (n int) {
	for _, c := range r.cells {
		if c.Flagged && !c.Revealed {
			n++
		}
	}
	return
}

// MinesLeft goes negative when the player placed more flags than there are
// mines.
func (r Round) MinesLeft() int {
	return r.params.MineCount - r.FlagCount()
}

func (r Round) RevealedCount() (n int) {
	for _, c := range r.cells {
		if c.Revealed {
			n++
		}
	}
	return
}

// Round implements [fmt.Stringer]
func (r Round) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s v%d\n", r.params.Seed(), r.phase, r.version)
	b.WriteString(r.Statuses().ToString(r.params.Size))
	return b.String()
}

func (r Round) positionError(row, col int) error {
	return &PositionError{Row: row, Col: col, Size: r.params.Size}
}

// clone copies the cells so the caller can mutate them without touching r.
func (r Round) clone() Round {
	cells := make([]Cell, len(r.cells))
	copy(cells, r.cells)
	r.cells = cells
	return r
}
