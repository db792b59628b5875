package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/mines"
)

const (
	originX   = 2
	originY   = 2
	cellWidth = 2

	lostBanner = "Game Over! You hit a mine."
	wonBanner  = "Congratulations! You won!"
	againHint  = "Press n to play again, q to quit."
	helpLine   = "arrows/hjkl move  space reveal  f flag  n new  q quit"
)

var countColors = [...]tcell.Color{
	1: tcell.ColorBlue,
	2: tcell.ColorGreen,
	3: tcell.ColorRed,
	4: tcell.ColorPurple,
	5: tcell.ColorYellow,
	6: tcell.ColorPink,
	7: tcell.ColorOrange,
	8: tcell.ColorGray,
}

type ui struct {
	round   mines.Round
	rnd     *rand.Rand
	row     int
	col     int
	buttons tcell.ButtonMask
}

func newUI(params mines.GameParams, rnd *rand.Rand) (*ui, error) {
	round, err := mines.New(params, rnd)
	if err != nil {
		return nil, err
	}
	return &ui{round: round, rnd: rnd}, nil
}

func (u *ui) move(dr, dc int) {
	size := u.round.Size()
	u.row = min(max(u.row+dr, 0), size-1)
	u.col = min(max(u.col+dc, 0), size-1)
}

func (u *ui) apply(next mines.Round, err error) {
	if err != nil {
		log.WithError(err).Warn("move rejected")
		return
	}
	if next.Phase() != u.round.Phase() {
		log.WithFields(logrus.Fields{
			"phase":   next.Phase().String(),
			"version": next.Version(),
		}).Info("round finished")
	}
	u.round = next
}

func (u *ui) reveal() {
	u.apply(u.round.Reveal(u.row, u.col))
}

func (u *ui) flag() {
	u.apply(u.round.ToggleFlag(u.row, u.col))
}

func (u *ui) newRound() {
	next, err := u.round.Reset(u.rnd)
	if err != nil {
		log.WithError(err).Error("unable to deal a new round")
		return
	}
	log.WithField("seed", next.Params().Seed()).Info("new round")
	u.round = next
}

// handleKey reports false when the player asked to quit.
func (u *ui) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		u.move(-1, 0)
	case tcell.KeyDown:
		u.move(1, 0)
	case tcell.KeyLeft:
		u.move(0, -1)
	case tcell.KeyRight:
		u.move(0, 1)
	case tcell.KeyEnter:
		u.reveal()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'k':
			u.move(-1, 0)
		case 'j':
			u.move(1, 0)
		case 'h':
			u.move(0, -1)
		case 'l':
			u.move(0, 1)
		case ' ':
			u.reveal()
		case 'f':
			u.flag()
		case 'n':
			u.newRound()
		}
	}
	return true
}

func cellAt(size, x, y int) (row, col int, ok bool) {
	if x < originX || y < originY {
		return 0, 0, false
	}
	row, col = y-originY, (x-originX)/cellWidth
	if row >= size || col >= size {
		return 0, 0, false
	}
	return row, col, true
}

// handleMouse acts on button presses only. Left reveals, right flags.
func (u *ui) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons &^ u.buttons
	u.buttons = buttons

	x, y := ev.Position()
	row, col, ok := cellAt(u.round.Size(), x, y)
	if !ok {
		return
	}
	switch {
	case pressed&tcell.Button1 != 0:
		u.row, u.col = row, col
		u.reveal()
	case pressed&tcell.Button2 != 0:
		u.row, u.col = row, col
		u.flag()
	}
}

func glyph(s mines.CellStatus) rune {
	return []rune(s.String())[0]
}

func styleFor(s mines.CellStatus) tcell.Style {
	style := tcell.StyleDefault
	switch {
	case s == mines.Hidden:
		return style.Foreground(tcell.ColorSilver)
	case s == mines.Flagged:
		return style.Foreground(tcell.ColorYellow).Bold(true)
	case s == mines.Detonated:
		return style.Foreground(tcell.ColorWhite).Background(tcell.ColorRed).Bold(true)
	case s > 0 && int(s) < len(countColors):
		return style.Foreground(countColors[s]).Bold(true)
	}
	return style.Foreground(tcell.ColorDarkGray)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func (u *ui) draw(s tcell.Screen) {
	s.Clear()

	header := fmt.Sprintf("Mines left: %d   %dx%d, %d mines",
		u.round.MinesLeft(), u.round.Size(), u.round.Size(), u.round.MineCount())
	drawText(s, originX, 0, tcell.StyleDefault.Bold(true), header)

	size := u.round.Size()
	statuses := u.round.Statuses()
	for row := range size {
		for col := range size {
			status := statuses[row*size+col]
			style := styleFor(status)
			if row == u.row && col == u.col && !u.round.Phase().Over() {
				style = style.Reverse(true)
			}
			s.SetContent(originX+col*cellWidth, originY+row, glyph(status), nil, style)
		}
	}

	y := originY + size + 1
	switch u.round.Phase() {
	case mines.Lost:
		drawText(s, originX, y, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true), lostBanner)
		drawText(s, originX, y+1, tcell.StyleDefault, againHint)
	case mines.Won:
		drawText(s, originX, y, tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true), wonBanner)
		drawText(s, originX, y+1, tcell.StyleDefault, againHint)
	default:
		drawText(s, originX, y, tcell.StyleDefault.Foreground(tcell.ColorGray), helpLine)
	}

	s.Show()
}

func (u *ui) run(s tcell.Screen) {
	for {
		u.draw(s)
		switch ev := s.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if !u.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			u.handleMouse(ev)
		case *tcell.EventResize:
			s.Sync()
		}
	}
}
