package match

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkg114mc/c-gomoku-cli"
	"github.com/nkg114mc/c-gomoku-cli/engine"
	"github.com/nkg114mc/c-gomoku-cli/position"
)

// scriptedAgent is a POSIX-shell stub that answers BEGIN/BOARD/TURN with a
// fixed, pre-scripted move sequence, tracked by call count.
const scriptedAgentTemplate = `#!/bin/sh
i=0
set -- %s
nextmove() {
  i=$((i+1))
  eval "printf '%%s\n' \"\${$i}\""
}
while IFS= read -r line; do
  case "$line" in
    ABOUT) echo 'name="%s", version="1", author="t", country="?"' ;;
    START*) echo OK ;;
    INFO*) : ;;
    BEGIN) nextmove ;;
    BOARD)
      while IFS= read -r bl; do
        [ "$bl" = "DONE" ] && break
      done
      nextmove
      ;;
    TURN*) nextmove ;;
    END) exit 0 ;;
  esac
done
`

func writeScriptedAgent(t *testing.T, name, moves string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("scripted agent requires a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	script := fmt.Sprintf(scriptedAgentTemplate, moves, name)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func startAgent(t *testing.T, path string) *engine.Agent {
	t.Helper()
	opts := gomoku.EngineOptions{
		Command:   path,
		Tolerance: 2 * time.Second,
	}
	a := engine.New(opts, false, zerolog.Nop())
	require.NoError(t, a.Start())
	return a
}

func TestPlayBlackWinsFiveInARow(t *testing.T) {
	blackPath := writeScriptedAgent(t, "black", "0,0 1,0 2,0 3,0 4,0")
	whitePath := writeScriptedAgent(t, "white", "0,1 1,1 2,1 3,1")

	black := startAgent(t, blackPath)
	white := startAgent(t, whitePath)

	cfg := Config{BoardSize: 9, Rule: gomoku.FiveOrMore}
	opts := [2]gomoku.EngineOptions{
		{Command: blackPath, Tolerance: 2 * time.Second},
		{Command: whitePath, Tolerance: 2 * time.Second},
	}
	start := position.New(9, gomoku.FiveOrMore)

	report := Play(cfg, opts, [2]*engine.Agent{black, white}, start, false, nil)

	assert.Equal(t, gomoku.StateFiveConnect, report.State)
	assert.Equal(t, gomoku.Win, report.Outcome)
	assert.Equal(t, 9, report.Plies)
}

func TestPgnResultTagReflectsSeatZeroOutcome(t *testing.T) {
	assert.Equal(t, "0-1", pgnResultTag(gomoku.Win, 0))
	assert.Equal(t, "1-0", pgnResultTag(gomoku.Loss, 0))
	assert.Equal(t, "1/2-1/2", pgnResultTag(gomoku.Draw, 0))
	assert.Equal(t, "1-0", pgnResultTag(gomoku.Win, 1))
}

func TestComputeTimeLeftAppliesIncrementOnlyWithMatchLimit(t *testing.T) {
	unlimited := gomoku.EngineOptions{}
	assert.Equal(t, NoTimeLimit, computeTimeLeft(unlimited, 5*time.Second))

	timed := gomoku.EngineOptions{TimeoutMatch: time.Minute, Increment: time.Second}
	assert.Equal(t, 6*time.Second, computeTimeLeft(timed, 5*time.Second))

	noIncrement := gomoku.EngineOptions{TimeoutMatch: time.Minute}
	assert.Equal(t, 5*time.Second, computeTimeLeft(noIncrement, 5*time.Second))
}
