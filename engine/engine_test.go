package engine

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nkg114mc/c-gomoku-cli"
)

// fakeAgentScript is a minimal Gomocup-protocol stub: it answers ABOUT,
// acknowledges START with OK, and replies to a TURN line with a fixed
// move at once.
const fakeAgentScript = `#!/bin/sh
while IFS= read -r line; do
  case "$line" in
    ABOUT) echo 'name="Stub", version="1", author="test", country="?"' ;;
    START*) echo OK ;;
    TURN*) echo "7,7" ;;
    END) exit 0 ;;
  esac
done
`

func writeFakeAgent(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake agent script requires a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "stub-agent.sh")
	require.NoError(t, os.WriteFile(path, []byte(fakeAgentScript), 0o755))
	return path
}

func TestAgentStartAndAboutHandshake(t *testing.T) {
	path := writeFakeAgent(t)
	opts := gomoku.EngineOptions{
		Command:   path,
		Tolerance: 2 * time.Second,
	}
	a := New(opts, false, zerolog.Nop())
	require.NoError(t, a.Start())
	defer a.Terminate(true)

	require.Equal(t, "Stub", a.Name())
	require.True(t, a.IsOK())
}

func TestAgentWaitForOKAndBestMove(t *testing.T) {
	path := writeFakeAgent(t)
	opts := gomoku.EngineOptions{
		Command:   path,
		Tolerance: 2 * time.Second,
	}
	a := New(opts, false, zerolog.Nop())
	require.NoError(t, a.Start())
	defer a.Terminate(true)

	a.WriteLine("START 15")
	require.True(t, a.WaitForOK())

	a.WriteLine("TURN 7,7")
	best, _, timeLeft, ok := a.BestMove(5*time.Second, 0, 1)
	require.True(t, ok)
	require.Equal(t, "7,7", best)
	require.Greater(t, timeLeft, time.Duration(0))
}

// hangingAgentScript acknowledges the handshake but never answers a TURN,
// simulating spec.md's "agent hangs after START" scenario.
const hangingAgentScript = `#!/bin/sh
while IFS= read -r line; do
  case "$line" in
    ABOUT) echo 'name="Hung", version="1", author="test", country="?"' ;;
    START*) echo OK ;;
    TURN*) : ;; # never answers
    END) exit 0 ;;
  esac
done
`

func writeHangingAgent(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hanging agent script requires a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "hung-agent.sh")
	require.NoError(t, os.WriteFile(path, []byte(hangingAgentScript), 0o755))
	return path
}

// TestPollDeadlineForceKillsHungAgent proves the watchdog's tolerance
// actually unblocks a hung BestMove call: nothing calls FireOnce on its
// own (spec.md §4.2 makes that the supervisor's job), so this drives the
// poll loop the way Supervisor's ticker does.
func TestPollDeadlineForceKillsHungAgent(t *testing.T) {
	path := writeHangingAgent(t)
	opts := gomoku.EngineOptions{
		Command:   path,
		Tolerance: 50 * time.Millisecond,
	}
	a := New(opts, false, zerolog.Nop())
	require.NoError(t, a.Start())
	defer a.Terminate(true)

	a.WriteLine("START 15")
	require.True(t, a.WaitForOK())

	a.WriteLine("TURN 7,7")

	result := make(chan bool, 1)
	go func() {
		_, _, _, ok := a.BestMove(200*time.Millisecond, 0, 1)
		result <- ok
	}()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ok := <-result:
			require.False(t, ok, "BestMove should fail once the watchdog force-kills the hung engine")
			require.True(t, a.IsCrashed())
			return
		case <-deadline:
			t.Fatal("BestMove never returned; watchdog polling failed to unblock the hung agent")
		case <-time.After(10 * time.Millisecond):
			a.PollDeadline(time.Second)
		}
	}
}

func TestAgentTerminateGraceful(t *testing.T) {
	path := writeFakeAgent(t)
	opts := gomoku.EngineOptions{
		Command:   path,
		Tolerance: 2 * time.Second,
	}
	a := New(opts, false, zerolog.Nop())
	require.NoError(t, a.Start())

	a.Terminate(false)
	require.False(t, a.IsOK())
}
