package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/pleasehelpm32/chesstutor/internal/errors"
)

const (
	// readChunkSize is the buffer size for one stdout read. Engine output
	// lines are short; boundaries within or across lines are irrelevant to
	// the framing layer.
	readChunkSize = 4096

	// maxStderrBufferSize caps the stderr buffer kept for crash reports.
	maxStderrBufferSize = 64 * 1024
)

// Transport abstracts the engine subprocess's stdio so tests can script
// conversations without spawning a real engine. The default implementation
// is procTransport.
type Transport interface {
	// Start spawns the engine process and wires its pipes.
	Start(ctx context.Context) error

	// ReadOutput returns a channel of raw stdout chunks and a channel
	// carrying the process exit error, if any. Both channels close when
	// the process exits; the chunk channel closing is the exit signal.
	ReadOutput(ctx context.Context) (<-chan []byte, <-chan error)

	// WriteCommand writes one protocol command line to the engine's stdin.
	// Must be safe for concurrent use.
	WriteCommand(ctx context.Context, cmd string) error

	// Close forcefully kills the engine process. Safe to call multiple
	// times or on an already-terminated process.
	Close() error
}

// procTransport runs the engine as a child process.
type procTransport struct {
	log     *slog.Logger
	path    string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  io.ReadCloser
	stderr  io.ReadCloser
	mu      sync.Mutex // protects stdin writes and closing
	closing bool
}

// Compile-time verification that procTransport implements Transport.
var _ Transport = (*procTransport)(nil)

// newProcTransport creates a transport for the engine binary at path.
// If path is empty, the binary is located at Start.
func newProcTransport(log *slog.Logger, path string) *procTransport {
	return &procTransport{
		log:  log.With("component", "transport"),
		path: path,
	}
}

// Start locates the engine binary, spawns it, and wires stdio pipes.
func (t *procTransport) Start(ctx context.Context) error {
	path, err := locateEngine(t.log, t.path)
	if err != nil {
		return err
	}

	t.path = path

	//nolint:gosec // G204: spawning a configured engine binary is the point
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &errors.EngineStartupError{Stage: "spawn", Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &errors.EngineStartupError{Stage: "spawn", Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &errors.EngineStartupError{Stage: "spawn", Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return &errors.EngineStartupError{Stage: "spawn", Err: fmt.Errorf("start process: %w", err)}
	}

	t.cmd = cmd
	t.stdin = stdin
	t.stdout = stdout
	t.stderr = stderr
	t.log.Info("Engine subprocess started", "path", path, "pid", cmd.Process.Pid)

	return nil
}

// ReadOutput streams raw stdout chunks until the process exits.
//
// A goroutine drains stderr into a capped buffer for crash reporting; the
// reads rely on process exit (or Close killing the process) to unblock.
// On an unexpected exit the error channel carries an EngineCrashError
// with the exit code and buffered stderr.
func (t *procTransport) ReadOutput(ctx context.Context) (<-chan []byte, <-chan error) {
	chunks := make(chan []byte)
	errs := make(chan error, 1)

	var stderrWg sync.WaitGroup

	var stderrBuf strings.Builder

	var stderrMu sync.Mutex

	stderrWg.Add(1)

	go func() {
		defer stderrWg.Done()

		buf := make([]byte, readChunkSize)

		for {
			n, err := t.stderr.Read(buf)
			if n > 0 {
				stderrMu.Lock()

				if stderrBuf.Len() < maxStderrBufferSize {
					stderrBuf.Write(buf[:n])
				}

				stderrMu.Unlock()
			}

			if err != nil {
				return
			}
		}
	}()

	go func() {
		defer close(chunks)
		defer close(errs)

		buf := make([]byte, readChunkSize)

		for {
			n, err := t.stdout.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])

				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}

			if err != nil {
				break
			}
		}

		// Stderr reads must complete before Wait releases the pipes.
		stderrWg.Wait()

		waitErr := t.cmd.Wait()

		t.mu.Lock()
		closing := t.closing
		t.mu.Unlock()

		if waitErr == nil || closing {
			t.log.Debug("Engine process exited", "intentional", closing)

			return
		}

		exitCode := 0

		var exitErr *exec.ExitError
		if stderrors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		stderrMu.Lock()
		stderrOut := strings.TrimSpace(stderrBuf.String())
		stderrMu.Unlock()

		t.log.Error("Engine process exited unexpectedly",
			"exit_code", exitCode, "stderr", stderrOut)

		errs <- &errors.EngineCrashError{
			ExitCode: exitCode,
			Stderr:   stderrOut,
			Err:      waitErr,
		}
	}()

	return chunks, errs
}

// WriteCommand writes one command line to the engine's stdin.
func (t *procTransport) WriteCommand(ctx context.Context, cmd string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin == nil {
		return errors.ErrNotInitialized
	}

	if t.closing {
		return errors.ErrAlreadyShutdown
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	t.log.Debug("Writing engine command", "command", cmd)

	if _, err := io.WriteString(t.stdin, cmd+"\n"); err != nil {
		return fmt.Errorf("write to engine stdin: %w", err)
	}

	return nil
}

// Close kills the engine process.
func (t *procTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closing = true

	if t.cmd != nil && t.cmd.Process != nil {
		t.log.Debug("Killing engine process", "pid", t.cmd.Process.Pid)

		if err := t.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill engine process (pid %d): %w", t.cmd.Process.Pid, err)
		}
	}

	return nil
}
