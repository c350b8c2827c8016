package watchdog

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverdueIsZeroBeforeDeadlineAndPositiveAfter(t *testing.T) {
	w := New()
	w.Set("engine", time.Now().Add(30*time.Millisecond), "move", func() {})

	assert.Equal(t, time.Duration(0), w.Overdue())

	time.Sleep(50 * time.Millisecond)
	assert.Greater(t, w.Overdue(), time.Duration(0))
}

func TestOverdueIsZeroWhenNoDeadlineActive(t *testing.T) {
	w := New()
	assert.Equal(t, time.Duration(0), w.Overdue())
}

func TestFireOnceInvokesCallbackExactlyOnce(t *testing.T) {
	w := New()
	var calls int32
	w.Set("engine", time.Now().Add(-time.Millisecond), "move", func() {
		atomic.AddInt32(&calls, 1)
	})

	w.FireOnce()
	w.FireOnce()
	w.FireOnce()

	assert.EqualValues(t, 1, calls)
}

func TestClearPreventsFireOnceFromCalling(t *testing.T) {
	w := New()
	var fired bool
	w.Set("engine", time.Now().Add(-time.Millisecond), "move", func() {
		fired = true
	})
	w.Clear()
	w.FireOnce()
	assert.False(t, fired)
}

func TestSetReplacesPreviousDeadlineWithoutFiringIt(t *testing.T) {
	w := New()
	var firstFired bool
	w.Set("engine", time.Now().Add(-time.Millisecond), "move", func() {
		firstFired = true
	})
	w.Set("engine", time.Now().Add(time.Hour), "exit", func() {})

	w.FireOnce()
	assert.False(t, firstFired)
	assert.Equal(t, time.Duration(0), w.Overdue())
}

func TestDescriptionReportsActiveState(t *testing.T) {
	w := New()
	_, _, active := w.Description()
	assert.False(t, active)

	w.Set("engine", time.Now().Add(time.Hour), "move", func() {})
	engine, desc, active := w.Description()
	assert.True(t, active)
	assert.Equal(t, "engine", engine)
	assert.Equal(t, "move", desc)
}
