// Package config decodes a tournament's TOML configuration file: the
// roster of engines and the tournament-wide rules they play under.
// Grounded on go-kgp/conf.go and go-kgp/conf/io.go's toml.Decode-into-
// struct-then-apply-defaults pattern.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nkg114mc/c-gomoku-cli"
)

// EngineConf is one [[engine]] table.
type EngineConf struct {
	Name         string   `toml:"name"`
	Command      string   `toml:"cmd"`
	TimeoutMatch uint     `toml:"tc"`
	TimeoutTurn  uint     `toml:"turn_time"`
	Increment    uint     `toml:"increment"`
	NodeLimit    int64    `toml:"nodes"`
	DepthLimit   int      `toml:"depth"`
	MemoryLimit  int64    `toml:"memory"`
	ThreadHint   int      `toml:"threads"`
	Tolerance    uint     `toml:"tolerance"`
	Options      []string `toml:"options"`
}

// SPRTConf configures the early-stopping test, when present.
type SPRTConf struct {
	Elo0  float64 `toml:"elo0"`
	Elo1  float64 `toml:"elo1"`
	Alpha float64 `toml:"alpha"`
	Beta  float64 `toml:"beta"`
}

// TournamentConf is the [tournament] table.
type TournamentConf struct {
	BoardSize      int    `toml:"board_size"`
	RuleName       string `toml:"rule"`
	Rounds         int    `toml:"rounds"`
	Games          int    `toml:"games"`
	Gauntlet       bool   `toml:"gauntlet"`
	Concurrency    int    `toml:"concurrency"`
	ForceDrawAfter int    `toml:"force_draw_after"`
	DrawCount      int    `toml:"draw_count"`
	DrawScore      int    `toml:"draw_score"`
	ResignCount    int    `toml:"resign_count"`
	ResignScore    int    `toml:"resign_score"`

	Openings       string `toml:"openings"`
	OpeningFormat  string `toml:"opening_format"`
	RandomOpenings bool   `toml:"random_openings"`
	Repeat         bool   `toml:"repeat"`
	Seed           uint64 `toml:"seed"`

	SampleFreq     float64 `toml:"sample_freq"`
	SampleFile     string  `toml:"sample_file"`
	SampleFormat   string  `toml:"sample_format"`
	SampleCompress bool    `toml:"sample_compress"`

	PGNFile    string `toml:"pgn_file"`
	SGFFile    string `toml:"sgf_file"`
	Checkpoint string `toml:"checkpoint"`

	PrintFrequency int   `toml:"print_frequency"`
	Debug          bool  `toml:"debug"`
	SPRT           *SPRTConf `toml:"sprt"`
}

// File is the top-level decoded configuration.
type File struct {
	Tournament TournamentConf `toml:"tournament"`
	Engines    []EngineConf   `toml:"engine"`
}

// Load decodes and validates a configuration from r.
func Load(r io.Reader) (*File, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	f.applyDefaults()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Open reads and decodes the configuration file at path.
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(file)
}

func (f *File) applyDefaults() {
	if f.Tournament.Concurrency <= 0 {
		f.Tournament.Concurrency = 1
	}
	if f.Tournament.Games <= 0 {
		f.Tournament.Games = 1
	}
	if f.Tournament.Rounds <= 0 {
		f.Tournament.Rounds = 1
	}
	if f.Tournament.PrintFrequency <= 0 {
		f.Tournament.PrintFrequency = 1
	}
	if f.Tournament.OpeningFormat == "" {
		f.Tournament.OpeningFormat = "position"
	}
	if f.Tournament.SampleFormat == "" {
		f.Tournament.SampleFormat = "csv"
	}

	for i := range f.Engines {
		e := &f.Engines[i]
		if e.Tolerance == 0 {
			e.Tolerance = uint(gomoku.DefaultTolerance / time.Millisecond)
		}
		if e.MemoryLimit == 0 {
			e.MemoryLimit = gomoku.DefaultMemoryLimit
		}
		if e.Name == "" {
			e.Name = fmt.Sprintf("Engine%d", i+1)
		}
	}
}

func (f *File) validate() error {
	if len(f.Engines) < 2 {
		return fmt.Errorf("config: need at least two [[engine]] entries, got %d", len(f.Engines))
	}
	if f.Tournament.BoardSize <= 0 {
		return fmt.Errorf("config: tournament.board_size must be positive")
	}
	if _, ok := ruleByName(f.Tournament.RuleName); !ok {
		return fmt.Errorf("config: unknown tournament.rule %q", f.Tournament.RuleName)
	}
	if f.Tournament.SampleFreq < 0 || f.Tournament.SampleFreq > 1 {
		return fmt.Errorf("config: tournament.sample_freq must be within [0,1]")
	}
	return nil
}

func ruleByName(name string) (gomoku.GameRule, bool) {
	switch name {
	case "", "freestyle":
		return gomoku.FiveOrMore, true
	case "standard":
		return gomoku.ExactFive, true
	case "renju":
		return gomoku.Renju, true
	default:
		return 0, false
	}
}

// Rule returns the tournament's parsed game rule.
func (t TournamentConf) Rule() gomoku.GameRule {
	r, _ := ruleByName(t.RuleName)
	return r
}

// EngineOptions converts one decoded [[engine]] table into the
// EngineOptions the engine package consumes.
func (e EngineConf) EngineOptions() gomoku.EngineOptions {
	return gomoku.EngineOptions{
		Command:      e.Command,
		DisplayName:  e.Name,
		TimeoutMatch: time.Duration(e.TimeoutMatch) * time.Millisecond,
		TimeoutTurn:  time.Duration(e.TimeoutTurn) * time.Millisecond,
		Increment:    time.Duration(e.Increment) * time.Millisecond,
		NodeLimit:    e.NodeLimit,
		DepthLimit:   e.DepthLimit,
		MemoryLimit:  e.MemoryLimit,
		ThreadHint:   e.ThreadHint,
		Tolerance:    time.Duration(e.Tolerance) * time.Millisecond,
		Options:      e.Options,
	}
}

// Fingerprint returns a stable digest of every field that determines
// whether a checkpoint database may be resumed against this config: the
// roster and its commands, plus the pairing rules. Cosmetic-only knobs
// (print frequency, debug, PGN/SGF paths) are deliberately excluded.
func (f *File) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "board=%d;rule=%s;gauntlet=%t;rounds=%d;games=%d;",
		f.Tournament.BoardSize, f.Tournament.RuleName, f.Tournament.Gauntlet,
		f.Tournament.Rounds, f.Tournament.Games)
	for _, e := range f.Engines {
		fmt.Fprintf(h, "engine=%s|%s;", e.Name, e.Command)
	}
	return hex.EncodeToString(h.Sum(nil))
}
