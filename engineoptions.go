package gomoku

import "time"

// EngineOptions configures one agent in the roster. Grounded on
// original_source/src/options.h's EngineOptions struct.
type EngineOptions struct {
	Command     string
	DisplayName string

	TimeoutMatch time.Duration // 0 means no match-time limit
	TimeoutTurn  time.Duration // 0 means no per-move cap
	Increment    time.Duration

	NodeLimit  int64
	DepthLimit int
	MemoryLimit int64 // bytes
	ThreadHint  int

	// Tolerance is the slack added to any deadline before the watchdog
	// fires for this agent.
	Tolerance time.Duration

	// Options are arbitrary key=value pairs forwarded to the agent via
	// INFO <key> <value>, except for keys prefixed "sandbox:" which
	// select an isolation.Backend instead (see SPEC_FULL.md).
	Options []string
}

// DefaultTolerance matches original_source/src/options.h's 3000ms default.
const DefaultTolerance = 3 * time.Second

// DefaultMemoryLimit matches the Gomocup default of ~350MB.
const DefaultMemoryLimit int64 = 367001600
