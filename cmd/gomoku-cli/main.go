// Command gomoku-cli runs a tournament between two or more gomocup-speaking
// agents from a TOML configuration file. Grounded on
// jaivial-cli-agent/cmd/eai/main.go's single-root-command-with-RunE shape.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nkg114mc/c-gomoku-cli"
	"github.com/nkg114mc/c-gomoku-cli/checkpoint"
	"github.com/nkg114mc/c-gomoku-cli/config"
	"github.com/nkg114mc/c-gomoku-cli/logging"
	"github.com/nkg114mc/c-gomoku-cli/match"
	"github.com/nkg114mc/c-gomoku-cli/opening"
	"github.com/nkg114mc/c-gomoku-cli/sample"
	"github.com/nkg114mc/c-gomoku-cli/seqwriter"
	"github.com/nkg114mc/c-gomoku-cli/sprt"
	"github.com/nkg114mc/c-gomoku-cli/supervisor"
	"github.com/nkg114mc/c-gomoku-cli/tourney"
)

func main() {
	var configPath string
	var debug bool
	var resume bool

	root := &cobra.Command{
		Use:   "gomoku-cli",
		Short: "Run a gomocup tournament described by a TOML configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTournament(configPath, debug, resume)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to the tournament TOML configuration (required)")
	root.Flags().BoolVar(&debug, "debug", false, "override tournament.debug and log at debug level")
	root.Flags().BoolVar(&resume, "resume", false, "resume from tournament.checkpoint instead of starting fresh")
	_ = root.MarkFlagRequired("config")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTournament(configPath string, debugFlag, resume bool) error {
	f, err := config.Open(configPath)
	if err != nil {
		return err
	}

	debug := f.Tournament.Debug || debugFlag
	log := logging.New(debug)

	engines := make([]gomoku.EngineOptions, len(f.Engines))
	for i, e := range f.Engines {
		engines[i] = e.EngineOptions()
	}

	var queue *tourney.Queue
	if f.Tournament.Gauntlet {
		queue = tourney.NewGauntlet(len(engines), f.Tournament.Rounds, f.Tournament.Games)
	} else {
		queue = tourney.NewRoundRobin(len(engines), f.Tournament.Rounds, f.Tournament.Games)
	}

	var store *checkpoint.Store
	if f.Tournament.Checkpoint != "" {
		store, err = checkpoint.Open(f.Tournament.Checkpoint, f.Fingerprint())
		if err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
		defer store.Close()

		if resume {
			completed, err := store.CompletedGames()
			if err != nil {
				return fmt.Errorf("checkpoint: %w", err)
			}
			queue.FastForward(completed)

			names, err := store.Names()
			if err != nil {
				return fmt.Errorf("checkpoint: %w", err)
			}
			for id, name := range names {
				queue.SetName(id, name)
			}
			log.Info().Int("completed", len(completed)).Msg("resumed from checkpoint")
		}
	}

	var book *opening.Source
	if f.Tournament.Openings != "" {
		book, err = opening.Open(f.Tournament.Openings, f.Tournament.RandomOpenings, f.Tournament.Seed)
		if err != nil {
			return fmt.Errorf("openings: %w", err)
		}
		defer book.Close()
	}
	openingFormat := gomoku.OpeningOffset
	if f.Tournament.OpeningFormat == "position" {
		openingFormat = gomoku.OpeningPosition
	}

	var pgn, sgf *seqwriter.Writer
	if f.Tournament.PGNFile != "" {
		file, err := os.Create(f.Tournament.PGNFile)
		if err != nil {
			return fmt.Errorf("pgn: %w", err)
		}
		defer file.Close()
		pgn = seqwriter.New(file)
	}
	if f.Tournament.SGFFile != "" {
		file, err := os.Create(f.Tournament.SGFFile)
		if err != nil {
			return fmt.Errorf("sgf: %w", err)
		}
		defer file.Close()
		sgf = seqwriter.New(file)
	}

	var samples *sample.Sink
	if f.Tournament.SampleFile != "" && f.Tournament.SampleFreq > 0 {
		file, err := os.Create(f.Tournament.SampleFile)
		if err != nil {
			return fmt.Errorf("samples: %w", err)
		}
		format := sample.FormatCSV
		if f.Tournament.SampleFormat == "binary" {
			format = sample.FormatBinary
		}
		samples, err = sample.Open(file, format, f.Tournament.SampleCompress)
		if err != nil {
			file.Close()
			return fmt.Errorf("samples: %w", err)
		}
	}

	var sprtParams *sprt.Params
	if f.Tournament.SPRT != nil {
		p := sprt.Params{
			Elo0:  f.Tournament.SPRT.Elo0,
			Elo1:  f.Tournament.SPRT.Elo1,
			Alpha: f.Tournament.SPRT.Alpha,
			Beta:  f.Tournament.SPRT.Beta,
		}
		if !p.Valid() {
			return fmt.Errorf("config: invalid tournament.sprt bounds")
		}
		sprtParams = &p
	}

	cfg := supervisor.Config{
		Match: match.Config{
			BoardSize:      f.Tournament.BoardSize,
			Rule:           f.Tournament.Rule(),
			UseTURN:        true,
			ForceDrawAfter: f.Tournament.ForceDrawAfter,
			DrawCount:      f.Tournament.DrawCount,
			DrawScore:      f.Tournament.DrawScore,
			ResignCount:    f.Tournament.ResignCount,
			ResignScore:    f.Tournament.ResignScore,
			Debug:          debug,
			SampleFreq:     f.Tournament.SampleFreq,
		},
		Engines:        engines,
		Concurrency:    f.Tournament.Concurrency,
		Opening:        book,
		OpeningFormat:  openingFormat,
		Repeat:         f.Tournament.Repeat,
		SPRT:           sprtParams,
		PrintFrequency: f.Tournament.PrintFrequency,
		PGN:            pgn,
		SGF:            sgf,
		Samples:        samples,
		Checkpoint:     store,
		Log:            log,
	}

	sup := supervisor.New(cfg, queue)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		if _, ok := <-sigCh; ok {
			log.Warn().Msg("received interrupt, stopping after in-flight games finish")
			sup.Stop()
		}
	}()
	defer signal.Stop(sigCh)

	sup.Run()
	return sup.Close()
}
