package mines

import (
	"log/slog"

	"github.com/gammazero/deque"
)

// Reveal opens the cell at row, col. Acting on a finished round, a revealed
// cell or a flagged cell is a no-op and returns r unchanged with a nil error.
func (r Round) Reveal(row, col int) (Round, error) {
	if !r.params.ValidatePosition(row, col) {
		return r, r.positionError(row, col)
	}
	i := r.params.index(row, col)
	if r.phase != InProgress || r.cells[i].Revealed || r.cells[i].Flagged {
		return r, nil
	}

	next := r.clone()
	next.version++

	cell := &next.cells[i]
	cell.Revealed = true

	if cell.Mine {
		/*
		 * The player has landed on a mine. Show every mine on the board
		 * but leave flags and safe cells as they are.
		 */
		next.phase = Lost
		for j := range next.cells {
			if next.cells[j].Mine {
				next.cells[j].Revealed = true
			}
		}
		Log.Debug("round lost", slog.Int("row", row), slog.Int("col", col))
		return next, nil
	}

	if cell.Count == 0 {
		next.floodFill(i)
	}

	if next.cleared() {
		next.phase = Won
		Log.Debug("round won", slog.Int("version", int(next.version)))
	}
	return next, nil
}

// floodFill opens the connected zero region around start. The revealed flag
// doubles as the visited marker, so every cell enters the queue at most once.
func (r *Round) floodFill(start int) {
	var todo deque.Deque[int]
	todo.PushBack(start)
	for todo.Len() > 0 {
		i := todo.PopFront()
		r.params.neighbors(i, func(j int) {
			c := &r.cells[j]
			if c.Revealed || c.Mine {
				return
			}
			c.Revealed = true
			c.Flagged = false
			if c.Count == 0 {
				todo.PushBack(j)
			}
		})
	}
}

// cleared reports whether every safe cell is open. Mines need not be flagged.
func (r Round) cleared() bool {
	for _, c := range r.cells {
		if !c.Mine && !c.Revealed {
			return false
		}
	}
	return true
}

// ToggleFlag flips the flag on a hidden cell. It never opens anything and
// never changes the phase.
func (r Round) ToggleFlag(row, col int) (Round, error) {
	if !r.params.ValidatePosition(row, col) {
		return r, r.positionError(row, col)
	}
	i := r.params.index(row, col)
	if r.phase != InProgress || r.cells[i].Revealed {
		return r, nil
	}
	next := r.clone()
	next.version++
	next.cells[i].Flagged = !next.cells[i].Flagged
	return next, nil
}
