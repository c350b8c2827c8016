package isolation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/pkg/errors"
)

// DockerBackend runs the agent inside a fresh, auto-removed container
// built from Image, wired up to a resource-limited HostConfig. Grounded
// on go-kgp/sched/isol/docker.go's docker.Start (ContainerCreate/
// ContainerAttach/ContainerStart sequencing).
type DockerBackend struct {
	Image      string
	CPUCount   int64
	MemoryByte int64
}

// NewDockerBackend returns a DockerBackend for image with the module's
// default resource limits: one CPU and 1 GiB of memory.
func NewDockerBackend(image string) *DockerBackend {
	return &DockerBackend{
		Image:      image,
		CPUCount:   1,
		MemoryByte: 1024 * 1024 * 1024,
	}
}

func (d *DockerBackend) Spawn(ctx context.Context, cwd, path string, args []string, stderr io.Writer) (Process, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return Process{}, errors.Wrap(err, "isolation: connect to docker daemon")
	}

	cmd := append([]string{path}, args...)
	resp, err := cli.ContainerCreate(ctx, &container.Config{
		Image:        d.Image,
		Cmd:          cmd,
		WorkingDir:   cwd,
		OpenStdin:    true,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          false,
	}, &container.HostConfig{
		AutoRemove:     true,
		ReadonlyRootfs: false,
		Resources: container.Resources{
			CPUCount: d.CPUCount,
			Memory:   d.MemoryByte,
		},
	}, nil, nil, fmt.Sprintf("gomoku-agent-%d", time.Now().UnixNano()))
	if err != nil {
		return Process{}, errors.Wrapf(err, "isolation: create container %s", d.Image)
	}

	attach, err := cli.ContainerAttach(ctx, resp.ID, types.ContainerAttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return Process{}, errors.Wrapf(err, "isolation: attach container %s", d.Image)
	}

	if err := cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		attach.Close()
		return Process{}, errors.Wrapf(err, "isolation: start container %s", d.Image)
	}

	stdoutR, stdoutW := io.Pipe()
	errSink := stderr
	if errSink == nil {
		errSink = io.Discard
	}
	go func() {
		_, err := stdcopy.StdCopy(stdoutW, errSink, attach.Reader)
		stdoutW.CloseWithError(err)
	}()

	return Process{
		Stdin:  attach.Conn,
		Stdout: stdoutR,
		Wait: func() error {
			okC, errC := cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
			select {
			case err := <-errC:
				return err
			case <-okC:
				return nil
			}
		},
		Kill: func() error {
			return cli.ContainerKill(ctx, resp.ID, "SIGKILL")
		},
	}, nil
}
