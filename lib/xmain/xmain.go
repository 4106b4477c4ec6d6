// Package xmain runs a command: flags with environment fallbacks, user facing logging,
// signal handling and exit codes.
package xmain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"
)

type RunFunc func(context.Context, *State) error

// State is everything a command touches outside its own memory.
type State struct {
	Name string

	Stdin  io.Reader
	Stdout io.WriteCloser
	Stderr io.WriteCloser

	Log  *cmdlog.Logger
	Env  *xos.Env
	Opts *Opts
}

// NewState wires a state around the given streams. Log writes to stderr.
func NewState(name string, args []string, env *xos.Env, stdin io.Reader, stdout, stderr io.WriteCloser) *State {
	ms := &State{
		Name:   name,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Env:    env,
	}
	ms.Log = cmdlog.New(env, stderr)
	ms.Opts = NewOpts(env, args)
	return ms
}

func Main(run RunFunc) {
	name := "m2"
	var args []string
	if len(os.Args) > 0 {
		name = filepath.Base(os.Args[0])
		args = os.Args[1:]
	}
	ms := NewState(name, args, xos.NewEnv(os.Environ()), os.Stdin, os.Stdout, os.Stderr)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	err := ms.Main(context.Background(), sigs, run)
	if err != nil {
		os.Exit(ms.report(err))
	}
}

// report logs err and returns the exit code for it.
func (ms *State) report(err error) int {
	var eerr ExitError
	var uerr UsageError
	switch {
	case errors.As(err, &eerr):
		if eerr.Message != "" {
			ms.Log.Error.Print(eerr.Message)
		}
		return eerr.Code
	case errors.As(err, &uerr):
		ms.Log.Error.Printf("%s\nRun with --help to see usage.", err)
	default:
		ms.Log.Error.Print(err)
	}
	return 1
}

// Main calls run and cancels its context on the first signal. run then has a minute to
// return.
func (ms *State) Main(ctx context.Context, sigs <-chan os.Signal, run RunFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- run(ctx, ms)
	}()

	var sig os.Signal
	select {
	case err := <-done:
		return err
	case sig = <-sigs:
	}

	ms.Log.Warn.Printf("received signal %v: shutting down...", sig)
	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to shutdown: %w", err)
		}
		if sig == syscall.SIGTERM {
			return nil
		}
		return ExitError{Code: 1}
	case <-time.After(time.Minute):
		return ExitErrorf(1, "took longer than 1 minute to shutdown: exiting forcefully")
	}
}

type ExitError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func ExitErrorf(code int, msg string, v ...interface{}) ExitError {
	return ExitError{
		Code:    code,
		Message: fmt.Sprintf(msg, v...),
	}
}

func (ee ExitError) Error() string {
	s := fmt.Sprintf("exiting with code %d", ee.Code)
	if ee.Message != "" {
		s += ": " + ee.Message
	}
	return s
}

type UsageError struct {
	Message string `json:"message"`
}

func UsageErrorf(msg string, v ...interface{}) UsageError {
	return UsageError{
		Message: fmt.Sprintf(msg, v...),
	}
}

func (ue UsageError) Error() string {
	return fmt.Sprintf("bad usage: %s", ue.Message)
}

// ReadPath reads fp, or stdin for "-".
func (ms *State) ReadPath(fp string) ([]byte, error) {
	if fp == "-" {
		return io.ReadAll(ms.Stdin)
	}
	return os.ReadFile(fp)
}

// WritePath writes p to fp, or to stdout for "-". Files are replaced atomically so a
// reader never observes a partial write.
func (ms *State) WritePath(fp string, p []byte) (err error) {
	if fp == "-" {
		_, err = ms.Stdout.Write(p)
		if err != nil {
			return err
		}
		return ms.Stdout.Close()
	}

	f, err := os.CreateTemp(filepath.Dir(fp), "."+filepath.Base(fp)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()
	_, err = f.Write(p)
	if err != nil {
		return err
	}
	err = f.Chmod(0644)
	if err != nil {
		return err
	}
	err = f.Close()
	if err != nil {
		return err
	}
	return os.Rename(f.Name(), fp)
}
