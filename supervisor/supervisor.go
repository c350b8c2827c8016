// Package supervisor wires together the job queue, opening book, worker
// pool and result sinks into a running tournament, per spec.md §4.9.
// Grounded on go-kgp/tourn.go's Tournament.Manage: a pool of goroutines
// draining a shared queue, each running one game at a time and folding
// its result back into shared state under a mutex.
package supervisor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nkg114mc/c-gomoku-cli"
	"github.com/nkg114mc/c-gomoku-cli/checkpoint"
	"github.com/nkg114mc/c-gomoku-cli/engine"
	"github.com/nkg114mc/c-gomoku-cli/isolation"
	"github.com/nkg114mc/c-gomoku-cli/match"
	"github.com/nkg114mc/c-gomoku-cli/opening"
	"github.com/nkg114mc/c-gomoku-cli/position"
	"github.com/nkg114mc/c-gomoku-cli/sample"
	"github.com/nkg114mc/c-gomoku-cli/seqwriter"
	"github.com/nkg114mc/c-gomoku-cli/sprt"
	"github.com/nkg114mc/c-gomoku-cli/tourney"
)

// watchdogPollInterval and watchdogSustainedOverdue implement spec.md
// §4.2/§4.9's supervisor deadline loop: poll every ~100ms, fire an
// overdue deadline's callback, and treat an agent still overdue by more
// than 1000ms after firing as unrecoverable — its pipe is assumed to be
// blocking forever even past the force-kill.
const (
	watchdogPollInterval     = 100 * time.Millisecond
	watchdogSustainedOverdue = 1000 * time.Millisecond
)

// Config carries everything a run needs beyond the pre-built queue.
type Config struct {
	Match       match.Config
	Engines     []gomoku.EngineOptions
	Concurrency int

	Opening       *opening.Source
	OpeningFormat gomoku.OpeningFormat
	// Repeat plays each opening twice with seats swapped instead of
	// drawing a new opening per game, matching original_source's
	// "-repeat" flag (openings.cpp: idx/2 instead of idx).
	Repeat bool

	SPRT *sprt.Params

	PrintFrequency int

	PGN, SGF   *seqwriter.Writer
	Samples    *sample.Sink
	Checkpoint *checkpoint.Store

	Log zerolog.Logger
}

// agentKey identifies one worker's seat for the deadline poller's weak
// reference table (spec.md §4.1 ownership: "the Supervisor holds weak
// references to worker deadline records solely to poll them").
type agentKey struct {
	worker, seat int
}

// Supervisor runs a tournament to completion.
type Supervisor struct {
	cfg   Config
	queue *tourney.Queue

	stopping int32 // atomic bool, set once SPRT decides or the operator stops the run

	sampleMu sync.Mutex

	agentsMu sync.Mutex
	agents   map[agentKey]*engine.Agent
}

// New wraps a pre-built queue with the runtime resources needed to
// actually play its jobs.
func New(cfg Config, queue *tourney.Queue) *Supervisor {
	return &Supervisor{cfg: cfg, queue: queue, agents: make(map[agentKey]*engine.Agent)}
}

// trackAgent records (or, if a is nil, forgets) the live Agent occupying
// a worker's seat, so the deadline poller can reach it without racing the
// worker goroutine's own respawn logic.
func (s *Supervisor) trackAgent(workerID, seat int, a *engine.Agent) {
	s.agentsMu.Lock()
	defer s.agentsMu.Unlock()
	key := agentKey{workerID, seat}
	if a == nil {
		delete(s.agents, key)
		return
	}
	s.agents[key] = a
}

// pollWatchdogs runs the supervisor's ~100ms deadline loop until stop is
// closed: fire any overdue agent's watchdog callback, and abort the whole
// process if an agent is still overdue well past the point its callback
// should have unblocked it.
func (s *Supervisor) pollWatchdogs(stop <-chan struct{}) {
	ticker := time.NewTicker(watchdogPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.agentsMu.Lock()
			snapshot := make([]*engine.Agent, 0, len(s.agents))
			for _, a := range s.agents {
				snapshot = append(snapshot, a)
			}
			s.agentsMu.Unlock()

			for _, a := range snapshot {
				if _, sustained := a.PollDeadline(watchdogSustainedOverdue); sustained {
					s.cfg.Log.Fatal().Str("engine", a.Name()).
						Msg("agent still unresponsive well past its force-kill deadline, aborting")
				}
			}
		}
	}
}

// Run launches cfg.Concurrency workers and blocks until the queue is
// drained or a worker stops it early (SPRT decision or explicit Stop).
func (s *Supervisor) Run() {
	var wg sync.WaitGroup
	agentsPerWorker := make([][]*engine.Agent, s.cfg.Concurrency)
	for i := range agentsPerWorker {
		agentsPerWorker[i] = make([]*engine.Agent, len(s.cfg.Engines))
	}

	stopPoll := make(chan struct{})
	go s.pollWatchdogs(stopPoll)
	defer close(stopPoll)

	for i := 0; i < s.cfg.Concurrency; i++ {
		wg.Add(1)
		w := &worker{id: i, sup: s, agents: agentsPerWorker[i]}
		go w.run(&wg)
	}
	wg.Wait()
}

// Stop discards the remaining jobs, causing every worker to exit once
// it finishes its current game.
func (s *Supervisor) Stop() {
	atomic.StoreInt32(&s.stopping, 1)
	s.queue.Stop()
}

func (s *Supervisor) stopped() bool {
	return atomic.LoadInt32(&s.stopping) != 0
}

// Close flushes and closes the transcript/sample/checkpoint sinks. It
// does not terminate agents itself — that happens per-worker as it exits
// — but it finalizes shared sinks that must only be closed once.
func (s *Supervisor) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.cfg.PGN != nil {
		record(s.cfg.PGN.Close())
	}
	if s.cfg.SGF != nil {
		record(s.cfg.SGF.Close())
	}
	if s.cfg.Samples != nil {
		record(s.cfg.Samples.Close())
	}
	if s.cfg.Checkpoint != nil {
		record(s.cfg.Checkpoint.Close())
	}
	return firstErr
}

type worker struct {
	id         int
	sup        *Supervisor
	agents     []*engine.Agent
	sampleSeed uint64
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	w.sampleSeed = uint64(time.Now().UnixNano()) ^ uint64(w.id)<<32

	for {
		if w.sup.stopped() {
			w.terminateAll()
			return
		}

		job, index, _, ok := w.sup.queue.Pop()
		if !ok {
			w.terminateAll()
			return
		}

		if !w.ensureAgents(job) {
			// The pair is charged one loss for seat 0 (job.AgentIDs[0]),
			// whichever seat failed to start, so the pair's tally still
			// advances instead of stalling.
			w.sup.queue.AddResult(job.PairIndex, gomoku.Loss)
			continue
		}

		start := w.drawOpening(index)
		agents := [2]*engine.Agent{w.agents[job.AgentIDs[0]], w.agents[job.AgentIDs[1]]}
		opts := [2]gomoku.EngineOptions{w.sup.cfg.Engines[job.AgentIDs[0]], w.sup.cfg.Engines[job.AgentIDs[1]]}

		report := match.Play(w.sup.cfg.Match, opts, agents, start, job.Reverse, &w.sampleSeed)

		result := w.sup.queue.AddResult(job.PairIndex, report.Outcome)
		if w.sup.cfg.Checkpoint != nil {
			if err := w.sup.cfg.Checkpoint.RecordResult(job, report.Outcome); err != nil {
				w.sup.cfg.Log.Warn().Err(err).Msg("checkpoint: failed to record result")
			}
		}

		if update := w.sup.queue.PrintResults(w.sup.cfg.PrintFrequency); update != "" {
			w.sup.cfg.Log.Info().Msg(update)
		}

		w.writeTranscript(job, index, report)
		w.writeSamples(report.Samples)

		if w.sup.cfg.SPRT != nil {
			verdict, llr := w.sup.cfg.SPRT.Done(result.Win, result.Loss, result.Draw)
			if verdict != sprt.Continuing {
				w.sup.cfg.Log.Info().
					Str("verdict", sprtVerdictName(verdict)).
					Float64("llr", llr).
					Msg("SPRT decided outcome, stopping tournament")
				w.sup.Stop()
			}
		}
	}
}

func sprtVerdictName(v sprt.Verdict) string {
	switch v {
	case sprt.AcceptH1:
		return "H1"
	case sprt.AcceptH0:
		return "H0"
	default:
		return "continuing"
	}
}

func (w *worker) terminateAll() {
	for ai, a := range w.agents {
		if a != nil {
			a.Terminate(false)
			w.sup.trackAgent(w.id, ai, nil)
		}
	}
}

// ensureAgents (re)spawns any of the job's two engines that aren't
// currently a live process, returning false if a spawn failed.
func (w *worker) ensureAgents(job gomoku.Job) bool {
	for _, ai := range job.AgentIDs {
		if w.agents[ai] != nil && w.agents[ai].IsOK() && !w.agents[ai].IsCrashed() {
			continue
		}
		if w.agents[ai] != nil {
			w.agents[ai].Terminate(true)
			w.sup.trackAgent(w.id, ai, nil)
		}

		opts := w.sup.cfg.Engines[ai]
		backend, err := isolation.Select(opts)
		if err != nil {
			w.sup.cfg.Log.Error().Err(err).Int("agent", ai).Msg("failed to select isolation backend")
			return false
		}

		a := engine.NewWithBackend(opts, w.sup.cfg.Match.Debug, w.sup.cfg.Log, backend)
		// Track before Start so the poller can unblock a hang during the
		// ABOUT handshake too, not just later BestMove/WaitForOK deadlines.
		w.sup.trackAgent(w.id, ai, a)
		if err := a.Start(); err != nil {
			w.sup.cfg.Log.Error().Err(err).Int("agent", ai).Msg("failed to start engine")
			w.sup.trackAgent(w.id, ai, nil)
			return false
		}

		w.agents[ai] = a
		w.sup.queue.SetName(ai, a.Name())
		if w.sup.cfg.Checkpoint != nil {
			_ = w.sup.cfg.Checkpoint.RecordName(ai, a.Name())
		}
	}
	return true
}

// drawOpening picks the opening for the jobIndex'th job popped from the
// queue, so every job in the tournament (regardless of which worker
// plays it) draws a distinct, deterministic slot from the book. When
// Repeat is enabled, consecutive game pairs (idx, idx+1) share a slot so
// the same opening is replayed with seats swapped, per original_source's
// "-repeat" behavior.
func (w *worker) drawOpening(jobIndex int) gomoku.Position {
	empty := position.New(w.sup.cfg.Match.BoardSize, w.sup.cfg.Match.Rule)
	src := w.sup.cfg.Opening
	if src == nil || src.Len() == 0 {
		return empty
	}

	if w.sup.cfg.Repeat {
		jobIndex /= 2
	}
	line, _, err := src.Next(jobIndex)
	if err != nil || line == "" {
		return empty
	}

	parsed, err := empty.ParseOpening(line, w.sup.cfg.OpeningFormat)
	if err != nil {
		w.sup.cfg.Log.Warn().Err(err).Str("opening", line).Msg("failed to parse opening line, starting from an empty board")
		return empty
	}
	return parsed
}

func (w *worker) writeTranscript(job gomoku.Job, index int, report match.Report) {
	if report.Final == nil || (w.sup.cfg.PGN == nil && w.sup.cfg.SGF == nil) {
		return
	}

	blackName, whiteName := w.agents[job.AgentIDs[0]].Name(), w.agents[job.AgentIDs[1]].Name()
	if job.Reverse {
		blackName, whiteName = whiteName, blackName
	}

	t := match.Transcript{
		Round:     job.Round,
		Game:      job.GameIndex,
		BlackName: blackName,
		WhiteName: whiteName,
		Rule:      w.sup.cfg.Match.Rule,
		Final:     report.Final,
		Report:    report,
		When:      time.Now(),
	}

	if w.sup.cfg.PGN != nil {
		_ = w.sup.cfg.PGN.Push(index, []byte(match.ExportPGN(t)))
	}
	if w.sup.cfg.SGF != nil {
		_ = w.sup.cfg.SGF.Push(index, []byte(match.ExportSGF(t)))
	}
}

func (w *worker) writeSamples(samples []sample.Sample) {
	if w.sup.cfg.Samples == nil || len(samples) == 0 {
		return
	}
	w.sup.sampleMu.Lock()
	defer w.sup.sampleMu.Unlock()
	for _, sm := range samples {
		if err := w.sup.cfg.Samples.Write(sm); err != nil {
			w.sup.cfg.Log.Warn().Err(err).Msg("failed to write sample")
			return
		}
	}
}
