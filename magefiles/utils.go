//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
)

type cmdOptions struct {
	args   []string
	env    []string
	stream bool
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) {
		o.args = args
	}
}

// withEnv adds KEY=VALUE pairs on top of the current environment.
func withEnv(env ...string) cmdOption {
	return func(o *cmdOptions) {
		o.env = append(o.env, env...)
	}
}

func withStream() cmdOption {
	return func(o *cmdOptions) {
		o.stream = true
	}
}

func executeCmd(command string, options ...cmdOption) (string, error) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}

	line := strings.TrimSpace(command + " " + strings.Join(opts.args, " "))
	if len(opts.env) > 0 {
		line = strings.Join(opts.env, " ") + " " + line
	}
	fmt.Printf("> %s\n", line)
	start := time.Now()
	cmd := exec.Command(command, opts.args...)
	if len(opts.env) > 0 {
		cmd.Env = append(os.Environ(), opts.env...)
	}

	streamOutput := mg.Verbose() || opts.stream

	var b bytes.Buffer
	if streamOutput {
		cmd.Stdout = io.MultiWriter(&b, os.Stdout)
		cmd.Stderr = io.MultiWriter(&b, os.Stderr)
	} else {
		cmd.Stdout = &b
		cmd.Stderr = &b
	}
	if err := cmd.Run(); err != nil {
		if !streamOutput {
			fmt.Fprintf(os.Stderr, "%s failed:\n%s\n", command, b.String())
		}
		return "", fmt.Errorf("error executing %s: %w", command, err)
	}
	if mg.Verbose() {
		fmt.Printf("%s finished in %s\n", command, time.Since(start).Round(time.Millisecond))
	}
	return b.String(), nil
}

// configArgs prefixes command with --config when ASSETFORGE_CONFIG is set.
func configArgs(command ...string) []string {
	if path := os.Getenv("ASSETFORGE_CONFIG"); path != "" {
		return append([]string{"--config", path}, command...)
	}
	return command
}
