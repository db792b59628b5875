package mines

import (
	"fmt"
	"strings"
)

type GameParams struct {
	Size      int `json:"size"`
	MineCount int `json:"mine_count"`
}

type Point struct {
	Row int `json:"row" schema:"row,required"`
	Col int `json:"col" schema:"col,required"`
}

func (p GameParams) Unpack() (size int, mineCount int) {
	return p.Size, p.MineCount
}

func (p Point) Unpack() (row int, col int) {
	return p.Row, p.Col
}

func (p GameParams) CellCount() int {
	return p.Size * p.Size
}

// Validate reports ErrInvalidConfiguration unless 0 < MineCount < Size².
func (p GameParams) Validate() error {
	if p.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d",
			ErrInvalidConfiguration, p.Size)
	}
	if p.MineCount <= 0 {
		return fmt.Errorf("%w: mine count must be positive, got %d",
			ErrInvalidConfiguration, p.MineCount)
	}
	if p.MineCount >= p.CellCount() {
		return fmt.Errorf("%w: mine count must be below %d for size %d, got %d",
			ErrInvalidConfiguration, p.CellCount(), p.Size, p.MineCount)
	}
	return nil
}

func (p GameParams) ValidatePosition(row, col int) bool {
	return 0 <= row && row < p.Size && 0 <= col && col < p.Size
}

func (p GameParams) index(row, col int) int {
	return row*p.Size + col
}

func (p GameParams) point(i int) Point {
	return Point{Row: i / p.Size, Col: i % p.Size}
}

func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d", p.Size, p.MineCount)
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d", &p.Size, &p.MineCount)
	if err != nil {
		return nil, fmt.Errorf(`invalid game params seed %q: %w`, seed, err)
	}
	if n != 2 {
		return nil, fmt.Errorf(`invalid game params seed %q`, seed)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
