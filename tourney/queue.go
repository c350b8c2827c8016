// Package tourney builds and drains the job queue that pairs agents
// against each other across rounds, per spec.md §4.7. Grounded on
// original_source/src/jobs.cpp's JobQueue: round-robin or gauntlet pairing,
// alternating first-mover per game within a pair, single mutex guarding
// pop/add_result/done/stop/set_name/print_results.
package tourney

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nkg114mc/c-gomoku-cli"
)

// Queue is the thread-safe, pre-built list of games to play.
type Queue struct {
	mu        sync.Mutex
	jobs      []gomoku.Job
	next      int
	completed int
	names     []string
	results   []gomoku.Result
	pairIndex map[[2]int]int
}

// NewRoundRobin builds a queue where every pair (e1, e2), e1 < e2, plays
// games games per round for rounds rounds.
func NewRoundRobin(engines, rounds, games int) *Queue {
	q := &Queue{names: make([]string, engines), pairIndex: map[[2]int]int{}}

	pair := 0
	for e1 := 0; e1 < engines-1; e1++ {
		for e2 := e1 + 1; e2 < engines; e2++ {
			q.results = append(q.results, gomoku.Result{AgentIDs: [2]int{e1, e2}})
			q.pairIndex[[2]int{e1, e2}] = pair
			pair++
		}
	}

	for r := 0; r < rounds; r++ {
		pairIdx := 0
		added := 0
		for e1 := 0; e1 < engines-1; e1++ {
			for e2 := e1 + 1; e2 < engines; e2++ {
				q.appendPair(games, e1, e2, pairIdx, r, &added)
				pairIdx++
			}
		}
	}
	return q
}

// NewGauntlet builds a queue where engine 0 plays every other engine
// (1..N-1), games games per round for rounds rounds.
func NewGauntlet(engines, rounds, games int) *Queue {
	q := &Queue{names: make([]string, engines), pairIndex: map[[2]int]int{}}

	for e2 := 1; e2 < engines; e2++ {
		q.results = append(q.results, gomoku.Result{AgentIDs: [2]int{0, e2}})
		q.pairIndex[[2]int{0, e2}] = e2 - 1
	}

	for r := 0; r < rounds; r++ {
		added := 0
		for e2 := 1; e2 < engines; e2++ {
			q.appendPair(games, 0, e2, e2-1, r, &added)
		}
	}
	return q
}

func (q *Queue) appendPair(games, e1, e2, pair, round int, added *int) {
	for g := 0; g < games; g++ {
		q.jobs = append(q.jobs, gomoku.Job{
			AgentIDs:  [2]int{e1, e2},
			PairIndex: pair,
			Round:     round,
			GameIndex: *added,
			Reverse:   g%2 != 0,
		})
		*added++
	}
}

// Pop claims the next job, reporting its index and the total job count.
func (q *Queue) Pop() (job gomoku.Job, index, total int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.next >= len(q.jobs) {
		return gomoku.Job{}, 0, 0, false
	}
	job = q.jobs[q.next]
	index = q.next
	total = len(q.jobs)
	q.next++
	return job, index, total, true
}

// AddResult records one game's outcome for the given pair and returns the
// pair's updated running tally.
func (q *Queue) AddResult(pairIndex int, outcome gomoku.Outcome) gomoku.Result {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.results[pairIndex] = q.results[pairIndex].Add(outcome)
	q.completed++
	return q.results[pairIndex]
}

// Done reports whether every job has been popped.
func (q *Queue) Done() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.next == len(q.jobs)
}

// Stop discards all remaining unpopped jobs, causing Done to report true
// and further Pop calls to fail. Used for SPRT early-stop and shutdown.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next = len(q.jobs)
}

// Total returns the total number of jobs in the queue.
func (q *Queue) Total() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Completed returns the number of games recorded via AddResult so far.
func (q *Queue) Completed() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.completed
}

// SetName records the discovered display name for engine index ei, the
// first time it's reported (later reports are ignored, matching the
// original's "only fill in blanks" semantics).
func (q *Queue) SetName(ei int, name string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.names[ei] == "" {
		q.names[ei] = name
	}
}

// PairIndex returns the result-slot index for the pair (e1, e2), or -1 if
// no such pair exists. Pairs are looked up in canonical (e1 < e2) order.
func (q *Queue) PairIndex(e1, e2 int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if idx, ok := q.pairIndex[[2]int{e1, e2}]; ok {
		return idx
	}
	return -1
}

// FastForward replays previously-recorded results (keyed by pairIndex
// and gameIndex) against freshly-popped jobs, in job order, stopping as
// soon as it reaches a job with no recorded result — that job is left
// unpopped for a worker to play. The command's --resume path calls it
// with checkpoint.Store.CompletedGames so already-completed games are not
// re-played.
func (q *Queue) FastForward(completed map[[2]int]gomoku.Outcome) {
	for {
		job, _, _, ok := q.Pop()
		if !ok {
			return
		}
		outcome, done := completed[[2]int{job.PairIndex, job.GameIndex}]
		if !done {
			q.mu.Lock()
			q.next--
			q.mu.Unlock()
			return
		}
		q.AddResult(job.PairIndex, outcome)
	}
}

// Results returns a snapshot of every pair's running tally.
func (q *Queue) Results() []gomoku.Result {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]gomoku.Result, len(q.results))
	copy(out, q.results)
	return out
}

// PrintResults renders a "Tournament update" table, but only when the
// completed-game count is a positive multiple of frequency (so it fires
// once per frequency games regardless of which worker just finished one).
func (q *Queue) PrintResults(frequency int) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if frequency <= 0 || q.completed == 0 || q.completed%frequency != 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Tournament update:\n")
	for _, r := range q.results {
		n := r.Total()
		if n == 0 {
			continue
		}
		score := (float64(r.Win) + 0.5*float64(r.Draw)) / float64(n)
		fmt.Fprintf(&sb, "%s vs %s: %d - %d - %d  [%.3f] %d\n",
			q.names[r.AgentIDs[0]], q.names[r.AgentIDs[1]],
			r.Win, r.Loss, r.Draw, score, n)
	}
	return sb.String()
}

// SortedResults returns Results() sorted by pair index (already in order
// but exported for callers that mutate a copy).
func SortedResults(results []gomoku.Result) []gomoku.Result {
	out := append([]gomoku.Result(nil), results...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].AgentIDs[0] != out[j].AgentIDs[0] {
			return out[i].AgentIDs[0] < out[j].AgentIDs[0]
		}
		return out[i].AgentIDs[1] < out[j].AgentIDs[1]
	})
	return out
}
