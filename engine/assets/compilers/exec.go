package compilers

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spaghettifunk/assetforge/engine/core"
)

type cmdOptions struct {
	args    []string
	dir     string
	timeout time.Duration
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) {
		o.args = args
	}
}

func withDir(dir string) cmdOption {
	return func(o *cmdOptions) {
		o.dir = dir
	}
}

func withTimeout(d time.Duration) cmdOption {
	return func(o *cmdOptions) {
		o.timeout = d
	}
}

// executeCmd runs an external tool and returns its combined output. On failure
// the output becomes part of the error.
func executeCmd(ctx context.Context, command string, options ...cmdOption) (string, error) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	core.LogDebug("Executing: %s %s", command, strings.Join(opts.args, " "))
	cmd := exec.CommandContext(ctx, command, opts.args...)
	if opts.dir != "" {
		cmd.Dir = opts.dir
	}

	var b bytes.Buffer
	cmd.Stdout = &b
	cmd.Stderr = &b
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error executing %s: %w: %s", command, err, strings.TrimSpace(b.String()))
	}
	return b.String(), nil
}
