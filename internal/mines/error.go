package mines

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("invalid game configuration")
	ErrIllegalInteraction   = errors.New("illegal interaction")
)

// PositionError is returned when a move targets a cell outside the grid.
type PositionError struct {
	Row, Col int
	Size     int
}

// [PositionError] implements [error]
func (e *PositionError) Error() string {
	return fmt.Sprintf("cell %d:%d is outside the %dx%d grid",
		e.Row, e.Col, e.Size, e.Size)
}

func (e *PositionError) Unwrap() error {
	return ErrIllegalInteraction
}
