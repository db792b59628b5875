package config

import (
	"fmt"

	"github.com/vancomm/minesweeper/internal/mines"
)

// Board holds the limits of the settings form. The engine enforces only
// 0 < mines < size², the form additionally bounds the size.
type Board struct {
	MinSize      int `mapstructure:"min_size" json:"min_size"`
	MaxSize      int `mapstructure:"max_size" json:"max_size"`
	DefaultSize  int `mapstructure:"default_size" json:"default_size"`
	DefaultMines int `mapstructure:"default_mines" json:"default_mines"`
}

func DefaultBoard() Board {
	return Board{
		MinSize:      5,
		MaxSize:      20,
		DefaultSize:  10,
		DefaultMines: 20,
	}
}

func (b Board) Validate() error {
	if b.MinSize < 2 {
		return fmt.Errorf("min_size must be at least 2, got %d", b.MinSize)
	}
	if b.MaxSize < b.MinSize {
		return fmt.Errorf("max_size %d is below min_size %d", b.MaxSize, b.MinSize)
	}
	if _, err := b.Params(b.DefaultSize, b.DefaultMines); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}

func (b Board) Defaults() mines.GameParams {
	return mines.GameParams{Size: b.DefaultSize, MineCount: b.DefaultMines}
}

func MaxMines(size int) int {
	return size*size - 1
}

// Params rejects settings outside the form's bounds.
func (b Board) Params(size, mineCount int) (mines.GameParams, error) {
	if size < b.MinSize || size > b.MaxSize {
		return mines.GameParams{}, fmt.Errorf("%w: size %d outside %d..%d",
			mines.ErrInvalidConfiguration, size, b.MinSize, b.MaxSize)
	}
	if mineCount < 1 || mineCount > MaxMines(size) {
		return mines.GameParams{}, fmt.Errorf("%w: mine count %d outside 1..%d",
			mines.ErrInvalidConfiguration, mineCount, MaxMines(size))
	}
	params := mines.GameParams{Size: size, MineCount: mineCount}
	return params, params.Validate()
}

// Clamp pulls raw form input into bounds, size first, then mines against
// the clamped size.
func (b Board) Clamp(size, mineCount int) mines.GameParams {
	size = min(max(size, b.MinSize), b.MaxSize)
	mineCount = min(max(mineCount, 1), MaxMines(size))
	return mines.GameParams{Size: size, MineCount: mineCount}
}
