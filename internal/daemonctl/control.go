// Package daemonctl orchestrates daemon process lifecycle from the CLI:
// launching rookeryd, waiting for its socket, and requesting shutdown.
package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"rookery/internal/ipc"
)

// ErrDaemonNotRunning indicates no daemon was reachable on the socket.
var ErrDaemonNotRunning = errors.New("daemon is not running")

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	ConfigPath string
}

// StartState describes the outcome of a start request.
type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult captures daemon start orchestration state.
type StartResult struct {
	State    StartState
	Launched bool
}

// StopResult captures daemon stop orchestration state.
type StopResult struct {
	PID          int
	Acknowledged bool
}

// DaemonExecutable locates the rookeryd binary: next to the current
// executable first, then on PATH.
func DaemonExecutable() (string, error) {
	self, err := os.Executable()
	if err == nil {
		sibling := filepath.Join(filepath.Dir(self), "rookeryd")
		if info, statErr := os.Stat(sibling); statErr == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	path, err := exec.LookPath("rookeryd")
	if err != nil {
		return "", fmt.Errorf("locate rookeryd: %w", err)
	}
	return path, nil
}

// Launch starts a detached rookeryd process.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return errors.New("launch daemon: executable path is empty")
	}

	var args []string
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}

	proc := exec.Command(executablePath, args...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient waits for socket availability and returns a connected client.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err == nil {
			return client, nil
		}
		lastErr = err
		time.Sleep(200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("timeout waiting for daemon")
	}
	return nil, fmt.Errorf("daemon failed to start: %w", lastErr)
}

// EnsureStarted launches the daemon if it is not already reachable.
func EnsureStarted(socketPath, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	client, err := ipc.Dial(socketPath)
	if err == nil {
		client.Close()
		return StartResult{State: StartStateAlreadyRunning}, nil
	}

	if launchErr := Launch(executablePath, opts); launchErr != nil {
		return StartResult{}, launchErr
	}
	client, err = WaitForClient(socketPath, waitTimeout)
	if err != nil {
		return StartResult{}, err
	}
	client.Close()
	return StartResult{State: StartStateStarted, Launched: true}, nil
}

// Stop asks a running daemon to shut down and waits for the socket to
// disappear.
func Stop(socketPath string, waitTimeout time.Duration) (StopResult, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return StopResult{}, ErrDaemonNotRunning
	}

	status, statusErr := client.Status()
	result := StopResult{}
	if statusErr == nil {
		result.PID = status.Status.PID
	}

	resp, err := client.Stop()
	client.Close()
	if err != nil {
		return result, fmt.Errorf("request daemon stop: %w", err)
	}
	result.Acknowledged = resp.Stopping

	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		probe, dialErr := ipc.Dial(socketPath)
		if dialErr != nil {
			return result, nil
		}
		probe.Close()
		time.Sleep(200 * time.Millisecond)
	}
	return result, errors.New("daemon did not stop within the wait window")
}
