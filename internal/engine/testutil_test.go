package engine

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pleasehelpm32/chesstutor/internal/config"
	"github.com/pleasehelpm32/chesstutor/internal/rules"
)

// validFEN is the standard starting position, used wherever the test only
// needs a well-formed position.
const validFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// scriptedTransport plays the role of the engine process in tests. Each
// incoming command is matched by its first token against the script and
// the scripted lines are emitted as one stdout chunk.
type scriptedTransport struct {
	mu        sync.Mutex
	commands  []string
	script    map[string][]string
	onCommand func(cmd string)
	quitHangs bool
	killed    bool
	exited    bool

	out  chan []byte
	errs chan error

	exitOnce sync.Once
}

func newScriptedTransport() *scriptedTransport {
	t := &scriptedTransport{
		script: make(map[string][]string),
		out:    make(chan []byte, 64),
		errs:   make(chan error, 1),
	}

	// Default handshake responses; tests override as needed.
	t.respond("uci", "id name Scripted Engine", "uciok")
	t.respond("isready", "readyok")

	return t
}

// respond scripts the lines emitted when a command whose first token is
// token arrives.
func (t *scriptedTransport) respond(token string, lines ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.script[token] = lines
}

func (t *scriptedTransport) Start(ctx context.Context) error {
	return nil
}

func (t *scriptedTransport) ReadOutput(ctx context.Context) (<-chan []byte, <-chan error) {
	return t.out, t.errs
}

func (t *scriptedTransport) WriteCommand(ctx context.Context, cmd string) error {
	t.mu.Lock()

	if t.exited {
		t.mu.Unlock()

		return io.ErrClosedPipe
	}

	t.commands = append(t.commands, cmd)
	token := strings.Fields(cmd)[0]
	lines, scripted := t.script[token]
	hook := t.onCommand
	quitHangs := t.quitHangs
	t.mu.Unlock()

	if scripted {
		t.emit(lines...)
	}

	if token == "quit" && !quitHangs {
		t.exit(nil)
	}

	if hook != nil {
		hook(cmd)
	}

	return nil
}

func (t *scriptedTransport) Close() error {
	t.mu.Lock()
	t.killed = true
	t.mu.Unlock()

	t.exit(nil)

	return nil
}

// emit pushes lines to the manager's read loop as a single chunk.
func (t *scriptedTransport) emit(lines ...string) {
	if len(lines) == 0 {
		return
	}

	t.out <- []byte(strings.Join(lines, "\n") + "\n")
}

// exit simulates process exit; a non-nil err is an unexpected crash.
func (t *scriptedTransport) exit(err error) {
	t.exitOnce.Do(func() {
		t.mu.Lock()
		t.exited = true
		t.mu.Unlock()

		if err != nil {
			t.errs <- err
		}

		close(t.out)
		close(t.errs)
	})
}

func (t *scriptedTransport) sentCommands() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string(nil), t.commands...)
}

func (t *scriptedTransport) sawCommand(cmd string) bool {
	for _, c := range t.sentCommands() {
		if c == cmd {
			return true
		}
	}

	return false
}

func (t *scriptedTransport) wasKilled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.killed
}

// waitForCommand polls until the transport has observed cmd.
func (t *scriptedTransport) waitForCommand(tt *testing.T, cmd string) {
	tt.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !t.sawCommand(cmd) {
		if time.Now().After(deadline) {
			tt.Fatalf("command %q never observed; saw %v", cmd, t.sentCommands())
		}

		time.Sleep(time.Millisecond)
	}
}

// stubRules is a scriptable rules collaborator.
type stubRules struct {
	validateErr error
	applied     map[string]string // move -> resulting FEN
	applyErr    map[string]error  // move -> error
	mateFENs    map[string]bool   // FEN -> checkmate
}

func newStubRules() *stubRules {
	return &stubRules{
		applied:  make(map[string]string),
		applyErr: make(map[string]error),
		mateFENs: make(map[string]bool),
	}
}

func (r *stubRules) ValidatePosition(fen string) error {
	return r.validateErr
}

func (r *stubRules) ApplyMove(fen, move string) (string, error) {
	if err, ok := r.applyErr[move]; ok {
		return "", err
	}

	if after, ok := r.applied[move]; ok {
		return after, nil
	}

	return fen + " after " + move, nil
}

func (r *stubRules) IsCheckmate(fen string) (bool, error) {
	return r.mateFENs[fen], nil
}

var _ rules.Rules = (*stubRules)(nil)

// newTestManager wires a manager to a scripted transport.
func newTestManager(t *testing.T, tr *scriptedTransport, opts *config.Options, r rules.Rules) *Manager {
	t.Helper()

	if opts == nil {
		opts = &config.Options{}
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	m := NewManager(opts, r)
	m.newTransport = func() Transport { return tr }

	return m
}

// initTestManager additionally completes the handshake.
func initTestManager(t *testing.T, tr *scriptedTransport, opts *config.Options, r rules.Rules) *Manager {
	t.Helper()

	m := newTestManager(t, tr, opts, r)
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	return m
}
