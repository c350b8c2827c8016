package tourney

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkg114mc/c-gomoku-cli"
)

func TestRoundRobinPairCountAndReverseAlternation(t *testing.T) {
	q := NewRoundRobin(4, 1, 4)
	// C(4,2) = 6 pairs, 4 games each.
	assert.Equal(t, 24, q.Total())

	seenReverse := map[bool]int{}
	for {
		job, _, _, ok := q.Pop()
		if !ok {
			break
		}
		seenReverse[job.Reverse]++
	}
	assert.Equal(t, 12, seenReverse[false])
	assert.Equal(t, 12, seenReverse[true])
}

func TestFastForwardSkipsRecordedGamesAndStopsAtFirstGap(t *testing.T) {
	q := NewGauntlet(3, 1, 2) // pairs (0,1) and (0,2), 2 games each -> 4 jobs total
	completed := map[[2]int]gomoku.Outcome{
		{0, 0}: gomoku.Win,
		{0, 1}: gomoku.Loss,
	}
	q.FastForward(completed)

	assert.Equal(t, 2, q.Completed())
	job, _, _, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 0, job.GameIndex)
	assert.Equal(t, 1, job.PairIndex)
}

func TestGauntletOnlyPairsEngineZero(t *testing.T) {
	q := NewGauntlet(4, 2, 2)
	// N-1 = 3 pairs, 2 rounds * 2 games = 4 games per pair.
	assert.Equal(t, 12, q.Total())

	for {
		job, _, _, ok := q.Pop()
		if !ok {
			break
		}
		assert.Equal(t, 0, job.AgentIDs[0])
		assert.NotEqual(t, 0, job.AgentIDs[1])
	}
}

func TestPopExhaustsInOrder(t *testing.T) {
	q := NewRoundRobin(3, 1, 1)
	require.Equal(t, 3, q.Total())

	var idxs []int
	for {
		_, idx, total, ok := q.Pop()
		if !ok {
			break
		}
		idxs = append(idxs, idx)
		assert.Equal(t, 3, total)
	}
	assert.Equal(t, []int{0, 1, 2}, idxs)
	assert.True(t, q.Done())
}

func TestStopDiscardsRemainingJobs(t *testing.T) {
	q := NewRoundRobin(3, 5, 5)
	_, _, _, ok := q.Pop()
	require.True(t, ok)

	q.Stop()
	assert.True(t, q.Done())
	_, _, _, ok = q.Pop()
	assert.False(t, ok)
}

func TestAddResultAccumulatesPerPair(t *testing.T) {
	q := NewRoundRobin(2, 1, 3)
	r := q.AddResult(0, gomoku.Win)
	assert.Equal(t, 1, r.Win)

	r = q.AddResult(0, gomoku.Draw)
	assert.Equal(t, 1, r.Win)
	assert.Equal(t, 1, r.Draw)
	assert.Equal(t, 2, q.Completed())
}

func TestSetNameKeepsFirstReport(t *testing.T) {
	q := NewRoundRobin(2, 1, 1)
	q.SetName(0, "first")
	q.SetName(0, "second")

	q.AddResult(0, gomoku.Win)
	out := q.PrintResults(1)
	assert.Contains(t, out, "first vs")
	assert.NotContains(t, out, "second vs")
}

func TestPrintResultsOnlyFiresOnFrequencyMultiples(t *testing.T) {
	q := NewRoundRobin(2, 1, 4)
	q.SetName(0, "a")
	q.SetName(1, "b")

	q.AddResult(0, gomoku.Win)
	assert.Empty(t, q.PrintResults(2))

	q.AddResult(0, gomoku.Loss)
	assert.NotEmpty(t, q.PrintResults(2))
}

func TestPairIndexLookup(t *testing.T) {
	q := NewRoundRobin(3, 1, 1)
	assert.Equal(t, 0, q.PairIndex(0, 1))
	assert.Equal(t, 1, q.PairIndex(0, 2))
	assert.Equal(t, 2, q.PairIndex(1, 2))
	assert.Equal(t, -1, q.PairIndex(2, 1))
}
