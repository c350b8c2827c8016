// Package isolation abstracts where an agent's process actually runs:
// directly on the host (the default) or inside a Docker container, per
// SPEC_FULL.md's ISOLATION BACKENDS section. Grounded on
// go-kgp/sched/isol's ControlledAgent split between a plain local agent
// and a docker-backed one.
package isolation

import (
	"context"
	"io"
	"strings"

	"github.com/nkg114mc/c-gomoku-cli"
)

// Process is a running agent, however it was spawned.
type Process struct {
	Stdin  io.WriteCloser
	Stdout io.Reader
	Wait   func() error
	Kill   func() error
}

// Backend spawns one agent process from a resolved (cwd, executable,
// args) triple.
type Backend interface {
	Spawn(ctx context.Context, cwd, path string, args []string, stderr io.Writer) (Process, error)
}

// sandboxPrefix marks an EngineOptions.Options entry as selecting a
// Backend instead of being forwarded to the agent via INFO.
const sandboxPrefix = "sandbox:"

// Select inspects opts.Options for a "sandbox:<backend>=<arg>" entry
// (e.g. "sandbox:docker=<image>" or "sandbox:local") and returns the
// Backend it names, defaulting to Local when none is present. The matched
// option is not removed from opts.Options; callers that forward the
// roster verbatim over INFO should filter it out themselves (see
// match.sendGameInfo's sandbox: skip).
func Select(opts gomoku.EngineOptions) (Backend, error) {
	for _, opt := range opts.Options {
		if !strings.HasPrefix(opt, sandboxPrefix) {
			continue
		}
		spec := strings.TrimPrefix(opt, sandboxPrefix)
		key, value, _ := strings.Cut(spec, "=")
		switch key {
		case "docker":
			return NewDockerBackend(value), nil
		case "local", "":
			return Local{}, nil
		}
	}
	return Local{}, nil
}

// IsSandboxOption reports whether opt is a sandbox selector rather than
// a plain engine option to forward over the wire.
func IsSandboxOption(opt string) bool {
	return strings.HasPrefix(opt, sandboxPrefix)
}
