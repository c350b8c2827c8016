package isolation

import (
	"context"
	"io"
	"os/exec"
)

// Local runs the agent as a plain child process of the tournament
// binary, via os/exec. This is the default Backend.
type Local struct{}

func (Local) Spawn(ctx context.Context, cwd, path string, args []string, stderr io.Writer) (Process, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = cwd
	if stderr != nil {
		cmd.Stderr = stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Process{}, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Process{}, err
	}

	if err := cmd.Start(); err != nil {
		return Process{}, err
	}

	return Process{
		Stdin:  stdin,
		Stdout: stdout,
		Wait:   cmd.Wait,
		Kill: func() error {
			if cmd.Process == nil {
				return nil
			}
			return cmd.Process.Kill()
		},
	}, nil
}
