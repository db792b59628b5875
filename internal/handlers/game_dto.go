package handlers

import (
	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/repository"
)

var decoder = func() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}()

// NewGameDTO carries the optional settings of a new round. Missing fields
// fall back to the configured defaults.
type NewGameDTO struct {
	Size      *int `schema:"size"`
	MineCount *int `schema:"mine_count"`
}

func ParseNewGameDTO(src map[string][]string) (NewGameDTO, error) {
	var dto NewGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

func (dto NewGameDTO) Empty() bool {
	return dto.Size == nil && dto.MineCount == nil
}

func (dto NewGameDTO) Params(board config.Board) (mines.GameParams, error) {
	params := board.Defaults()
	if dto.Size != nil {
		params.Size = *dto.Size
	}
	if dto.MineCount != nil {
		params.MineCount = *dto.MineCount
	}
	return board.Params(params.Size, params.MineCount)
}

func ParsePoint(src map[string][]string) (mines.Point, error) {
	var p mines.Point
	err := decoder.Decode(&p, src)
	return p, err
}

type RoundDTO struct {
	GameID    string         `json:"game_id"`
	Size      int            `json:"size"`
	MineCount int            `json:"mine_count"`
	Seed      string         `json:"seed"`
	Phase     mines.Phase    `json:"phase"`
	Version   uint64         `json:"version"`
	MinesLeft int            `json:"mines_left"`
	Cells     mines.GridInfo `json:"cells"`
	CreatedAt int64          `json:"created_at"`
	UpdatedAt int64          `json:"updated_at"`
}

func NewRoundDTO(s *repository.GameSession) *RoundDTO {
	r := s.Round
	return &RoundDTO{
		GameID:    s.GameSessionId,
		Size:      r.Size(),
		MineCount: r.MineCount(),
		Seed:      r.Params().Seed(),
		Phase:     r.Phase(),
		Version:   r.Version(),
		MinesLeft: r.MinesLeft(),
		Cells:     r.Statuses(),
		CreatedAt: s.CreatedAt.UnixMilli(),
		UpdatedAt: s.UpdatedAt.UnixMilli(),
	}
}
