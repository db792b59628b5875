package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/mines"
)

type options struct {
	size    int
	mines   int
	seed    uint64
	logFile string
	debug   bool
}

func newRootCmd() *cobra.Command {
	board := config.DefaultBoard()
	var opts options

	cmd := &cobra.Command{
		Use:          "sweep",
		Short:        "Play minesweeper in the terminal",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(board, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.size, "size", "s", board.DefaultSize,
		fmt.Sprintf("grid size (%d..%d)", board.MinSize, board.MaxSize))
	flags.IntVarP(&opts.mines, "mines", "m", board.DefaultMines,
		"number of mines (1..size²-1)")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed, 0 picks one")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	flags.BoolVar(&opts.debug, "debug", false, "log engine events")

	return cmd
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return mines.NewRand()
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// params pulls the flag values into the board's limits, the way the
// settings form does.
func (o options) params(board config.Board) (params mines.GameParams, adjusted bool) {
	params = board.Clamp(o.size, o.mines)
	size, mineCount := params.Unpack()
	return params, size != o.size || mineCount != o.mines
}

func run(board config.Board, opts options) error {
	closeLog, err := setupLogging(opts.logFile, opts.debug)
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	defer closeLog()

	params, adjusted := opts.params(board)
	if adjusted {
		log.WithFields(logrus.Fields{
			"size":       opts.size,
			"mines":      opts.mines,
			"size_used":  params.Size,
			"mines_used": params.MineCount,
		}).Warn("settings adjusted to board limits")
	}

	u, err := newUI(params, newRand(opts.seed))
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("unable to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("unable to init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	log.WithFields(logrus.Fields{
		"seed": params.Seed(),
	}).Info("game started")

	u.run(screen)

	log.WithFields(logrus.Fields{
		"phase":   u.round.Phase().String(),
		"version": u.round.Version(),
	}).Info("game closed")
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
