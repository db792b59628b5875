package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type Cell struct {
	Mine     bool `json:"mine"`
	Revealed bool `json:"revealed"`
	Flagged  bool `json:"flagged"`
	Count    int  `json:"count"` // mined neighbors, zero for mines
}

type CellStatus int8

const (
	Hidden    CellStatus = -2
	Flagged   CellStatus = -1
	Detonated CellStatus = 65
	// 0-8 for a revealed safe cell with given number of mined neighbors
)

// Status is what a renderer is allowed to see of the cell.
func (c Cell) Status() CellStatus {
	switch {
	case c.Revealed && c.Mine:
		return Detonated
	case c.Revealed:
		return CellStatus(c.Count)
	case c.Flagged:
		return Flagged
	default:
		return Hidden
	}
}

func (s CellStatus) String() string {
	switch s {
	case Hidden:
		return "-"
	case Flagged:
		return "F"
	case Detonated:
		return "*"
	case 0:
		return "."
	case 1, 2, 3, 4, 5, 6, 7, 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

type GridInfo []CellStatus

func (g GridInfo) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			i := y*width + x
			if i >= len(g) {
				break
			}
			fmt.Fprint(&b, g[i].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}

// neighbors calls fn for every in-bounds cell around i, excluding i itself.
func (p GameParams) neighbors(i int, fn func(j int)) {
	x, y := i%p.Size, i/p.Size
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			xx, yy := x+dx, y+dy
			if xx >= 0 && xx < p.Size && yy >= 0 && yy < p.Size {
				fn(yy*p.Size + xx)
			}
		}
	}
}
