// Package engine drives a single agent subprocess through the Gomocup
// line protocol: spawn, ABOUT/handshake, START acknowledgement, and the
// bestmove request/response cycle, all under watchdog-enforced deadlines.
// Grounded on original_source/src/engine.cpp's Engine class.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nkg114mc/c-gomoku-cli"
	"github.com/nkg114mc/c-gomoku-cli/isolation"
	"github.com/nkg114mc/c-gomoku-cli/watchdog"
)

// Info carries per-move think info. BestMove sets only Time (the time
// spent waiting for the move); Score and Depth are not parsed from the
// engine's output and stay zero, so score-based draw and resign
// adjudication in package match sees a score of 0 on every ply.
type Info struct {
	Score int
	Depth int
	Time  time.Duration
}

// TimedOut is the sentinel BestMove reports as the returned time budget
// when the engine failed to answer before its turn deadline.
const TimedOut = time.Duration(math.MinInt64 / 2)

// Agent manages one running engine process.
type Agent struct {
	opts    gomoku.EngineOptions
	debug   bool
	log     zerolog.Logger
	wd      *watchdog.Watchdog
	backend isolation.Backend

	mu      sync.Mutex
	name    string
	proc    *isolation.Process
	stdin   io.WriteCloser
	stdout  *bufio.Scanner
	crashed bool

	msgMu    sync.Mutex
	messages strings.Builder
}

// New returns an unstarted Agent for opts, running its process directly
// on the host.
func New(opts gomoku.EngineOptions, debug bool, log zerolog.Logger) *Agent {
	return NewWithBackend(opts, debug, log, isolation.Local{})
}

// NewWithBackend returns an unstarted Agent whose process is spawned
// through backend — e.g. isolation.NewDockerBackend for a sandboxed
// engine, selected via isolation.Select on opts.Options.
func NewWithBackend(opts gomoku.EngineOptions, debug bool, log zerolog.Logger, backend isolation.Backend) *Agent {
	return &Agent{
		opts:    opts,
		debug:   debug,
		log:     log.With().Str("engine", opts.DisplayName).Logger(),
		wd:      watchdog.New(),
		backend: backend,
		name:    opts.DisplayName,
	}
}

// Name returns the engine's display name, updated by ABOUT parsing if the
// caller did not pin one via EngineOptions.DisplayName.
func (a *Agent) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.name
}

// Messages returns the accumulated "MESSAGE" lines seen during play, for
// embedding as PGN-style comments.
func (a *Agent) Messages() string {
	a.msgMu.Lock()
	defer a.msgMu.Unlock()
	return a.messages.String()
}

// Start spawns the engine process and performs the ABOUT handshake.
func (a *Agent) Start() error {
	cwd, run, argv, err := parseCommand(a.opts.Command)
	if err != nil {
		return errors.Wrapf(err, "engine %s: parse command", a.opts.DisplayName)
	}

	path := resolvedPath(cwd, run)

	var stderr io.Writer
	if a.debug {
		stderr = &debugWriter{log: a.log}
	}

	backend := a.backend
	if backend == nil {
		backend = isolation.Local{}
	}
	proc, err := backend.Spawn(context.Background(), cwd, path, argv[1:], stderr)
	if err != nil {
		return errors.Wrapf(err, "[%s] failed to load engine %q", a.opts.DisplayName, a.opts.Command)
	}

	scanner := bufio.NewScanner(proc.Stdout)
	scanner.Buffer(make([]byte, 64*1024), 4<<20)

	a.mu.Lock()
	a.proc = &proc
	a.stdin = proc.Stdin
	a.stdout = scanner
	a.crashed = false
	a.mu.Unlock()

	return a.parseAbout(a.opts.Command)
}

type debugWriter struct{ log zerolog.Logger }

func (d *debugWriter) Write(p []byte) (int, error) {
	d.log.Debug().Str("dir", "stderr").Msg(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// IsOK reports whether the process is currently running.
func (a *Agent) IsOK() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.proc != nil
}

// IsCrashed reports whether the process died or its pipes broke.
func (a *Agent) IsCrashed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.crashed
}

// ReadLine reads one protocol line, returning ok=false on crash or EOF.
func (a *Agent) ReadLine() (string, bool) {
	a.mu.Lock()
	sc := a.stdout
	crashed := a.crashed
	a.mu.Unlock()

	if crashed || sc == nil {
		return "", false
	}

	if !sc.Scan() {
		// The read failed because the deadline callback force-killed us,
		// or because the engine crashed on its own. Either way, wait for
		// any in-flight callback to finish before touching shared state.
		a.wd.WaitCallbackDone()

		a.mu.Lock()
		a.crashed = true
		a.mu.Unlock()
		return "", false
	}

	line := sc.Text()
	a.log.Debug().Str("dir", "->").Msg(line)
	return line, true
}

// WriteLine sends one protocol line, marking the agent crashed on failure.
func (a *Agent) WriteLine(line string) {
	a.mu.Lock()
	stdin := a.stdin
	crashed := a.crashed
	a.mu.Unlock()

	if crashed || stdin == nil {
		return
	}

	if _, err := io.WriteString(stdin, line+"\n"); err != nil {
		a.mu.Lock()
		a.crashed = true
		a.mu.Unlock()
		return
	}
	a.log.Debug().Str("dir", "<-").Msg(line)
}

// PollDeadline checks the agent's active watchdog deadline, firing its
// callback once if the deadline has passed. sustained reports whether the
// deadline has now been overdue for longer than sustainedAfter, meaning
// fire_once already ran yet the agent's pipe is still not unblocked —
// the supervisor's cue to abort the whole process (spec.md §4.2).
func (a *Agent) PollDeadline(sustainedAfter time.Duration) (overdue, sustained bool) {
	d := a.wd.Overdue()
	if d <= 0 {
		return false, false
	}
	a.wd.FireOnce()
	return true, d > sustainedAfter
}

func (a *Agent) forceKill() {
	a.mu.Lock()
	proc := a.proc
	a.mu.Unlock()
	if proc != nil && proc.Kill != nil {
		_ = proc.Kill()
	}
}

// Terminate asks the engine to exit gracefully via "END" (unless force),
// waiting up to its tolerance before killing it outright.
func (a *Agent) Terminate(force bool) {
	a.mu.Lock()
	proc := a.proc
	a.mu.Unlock()
	if proc == nil {
		return
	}

	if !force {
		a.wd.Set(a.Name(), time.Now().Add(a.opts.Tolerance), "exit", func() { a.forceKill() })
		a.WriteLine("END")
	} else {
		a.forceKill()
	}

	done := make(chan struct{})
	go func() { proc.Wait(); close(done) }()

	if !force {
		select {
		case <-done:
		case <-time.After(a.opts.Tolerance):
			a.forceKill()
			<-done
		}
		a.wd.Clear()
	} else {
		<-done
	}

	a.mu.Lock()
	if a.stdin != nil {
		a.stdin.Close()
	}
	a.proc = nil
	a.stdin = nil
	a.stdout = nil
	a.mu.Unlock()
}

// WaitForOK blocks for the engine's "OK" acknowledgement (e.g. after
// START), returning false on ERROR, crash, or timeout.
func (a *Agent) WaitForOK() bool {
	a.wd.Set(a.Name(), time.Now().Add(a.opts.Tolerance), "start", func() { a.forceKill() })
	defer a.wd.Clear()

	for {
		line, ok := a.ReadLine()
		if !ok {
			a.log.Warn().Msg("engine crashed or timed out before answering START")
			return false
		}
		if strings.HasPrefix(line, "ERROR") {
			a.log.Warn().Str("error", line).Msg("engine reported error before START")
			return false
		}
		if line == "OK" {
			return true
		}
	}
}

func (a *Agent) recordMessage(moveply int, line string) {
	tail := strings.TrimPrefix(line, "MESSAGE")
	a.msgMu.Lock()
	fmt.Fprintf(&a.messages, "%d) %s:%s\n", moveply, a.Name(), tail)
	a.msgMu.Unlock()
}

// isValidMoveToken reports whether line has the "x,y" shape of a move
// response — both halves non-negative integers — per original_source's
// is_valid_move_gomostr (isNumber on each half).
func isValidMoveToken(line string) bool {
	idx := strings.IndexByte(line, ',')
	if idx < 0 || idx != strings.LastIndexByte(line, ',') {
		return false
	}
	return isNonNegativeInt(line[:idx]) && isNonNegativeInt(line[idx+1:])
}

func isNonNegativeInt(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// BestMove requests a move within timeLeft (and maxTurnTime, if positive),
// returning the raw wire-format move token, accumulated think-info, and
// the updated match time budget.
func (a *Agent) BestMove(timeLeft, maxTurnTime time.Duration, moveply int) (best string, info Info, newTimeLeft time.Duration, ok bool) {
	start := time.Now()
	matchDeadline := start.Add(timeLeft)
	turnDeadline := matchDeadline
	turnTimeLeft := timeLeft
	if maxTurnTime > 0 {
		lim := timeLeft
		if maxTurnTime < lim {
			lim = maxTurnTime
		}
		turnDeadline = start.Add(lim)
		turnTimeLeft = lim
	}

	a.wd.Set(a.Name(), turnDeadline.Add(a.opts.Tolerance), "move", func() { a.forceKill() })
	defer a.wd.Clear()

	moveOverhead := a.opts.Tolerance / 2
	if moveOverhead > time.Second {
		moveOverhead = time.Second
	}

	for turnTimeLeft+moveOverhead >= 0 {
		line, readOk := a.ReadLine()
		if !readOk {
			return "", info, timeLeft, false
		}

		now := time.Now()
		info.Time = now.Sub(start)
		timeLeft = matchDeadline.Sub(now)
		turnTimeLeft = turnDeadline.Sub(now)

		if strings.HasPrefix(line, "MESSAGE") {
			a.recordMessage(moveply, line)
			continue
		}
		if isValidMoveToken(line) {
			return line, info, timeLeft, true
		}
	}

	// Turn budget exhausted: ask the engine to stop and give it one more
	// chance to answer, still under the same watchdog deadline.
	a.WriteLine("YXSTOP")
	timeLeft = TimedOut

	for {
		line, readOk := a.ReadLine()
		if !readOk {
			return "", info, timeLeft, false
		}
		if strings.HasPrefix(line, "MESSAGE") {
			a.recordMessage(moveply, line)
			continue
		}
		if isValidMoveToken(line) {
			return line, info, timeLeft, true
		}
	}
}
