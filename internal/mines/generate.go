package mines

import (
	"fmt"
	"hash/maphash"
	"log/slog"
	"math/rand/v2"
)

// NewRand returns a randomly seeded source suitable for New and Reset.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// New starts a round with mineCount mines placed uniformly at random.
func New(params GameParams, r *rand.Rand) (Round, error) {
	if err := params.Validate(); err != nil {
		return Round{}, err
	}
	if r == nil {
		r = NewRand()
	}

	mined := params.placeMines(r)

	Log.Debug("placed mines",
		slog.String("seed", params.Seed()),
		slog.Int("count", len(mined)),
	)

	return params.newRound(mined), nil
}

// NewWithMines starts a round with a fixed mine layout. Duplicate points are
// rejected, since they would silently lower the mine count.
func NewWithMines(size int, mines []Point) (Round, error) {
	params := GameParams{Size: size, MineCount: len(mines)}
	if err := params.Validate(); err != nil {
		return Round{}, err
	}
	mined := make([]int, 0, len(mines))
	seen := make(map[int]struct{}, len(mines))
	for _, pt := range mines {
		if !params.ValidatePosition(pt.Row, pt.Col) {
			return Round{}, fmt.Errorf("%w: mine at %d:%d is outside the grid",
				ErrInvalidConfiguration, pt.Row, pt.Col)
		}
		i := params.index(pt.Row, pt.Col)
		if _, ok := seen[i]; ok {
			return Round{}, fmt.Errorf("%w: duplicate mine at %d:%d",
				ErrInvalidConfiguration, pt.Row, pt.Col)
		}
		seen[i] = struct{}{}
		mined = append(mined, i)
	}
	return params.newRound(mined), nil
}

// Reset discards the grid and deals a fresh one with the same parameters.
func (r Round) Reset(rnd *rand.Rand) (Round, error) {
	return New(r.params, rnd)
}

// placeMines returns the indices of mineCount distinct cells.
func (p GameParams) placeMines(r *rand.Rand) []int {
	n := p.CellCount()

	/*
	 * Sparse boards: sample coordinates and retry on a hit. Once more
	 * than half of the board is mined the retries start to dominate, so
	 * pick off a shrinking candidate list instead.
	 */
	if 2*p.MineCount <= n {
		grid := make([]bool, n)
		mined := make([]int, 0, p.MineCount)
		for len(mined) < p.MineCount {
			i := p.index(r.IntN(p.Size), r.IntN(p.Size))
			if grid[i] {
				continue
			}
			grid[i] = true
			mined = append(mined, i)
		}
		return mined
	}

	candidates := make([]int, n)
	for i := range candidates {
		candidates[i] = i
	}
	mined := make([]int, 0, p.MineCount)
	k := n
	for range p.MineCount {
		i := r.IntN(k)
		mined = append(mined, candidates[i])
		k--
		candidates[i] = candidates[k]
	}
	return mined
}

func (p GameParams) newRound(mined []int) Round {
	cells := make([]Cell, p.CellCount())
	for _, i := range mined {
		cells[i].Mine = true
	}
	for i := range cells {
		if cells[i].Mine {
			continue
		}
		count := 0
		p.neighbors(i, func(j int) {
			if cells[j].Mine {
				count++
			}
		})
		cells[i].Count = count
	}
	return Round{
		params: p,
		cells:  cells,
		phase:  InProgress,
	}
}
