package engine

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pleasehelpm32/chesstutor/internal/broker"
	"github.com/pleasehelpm32/chesstutor/internal/config"
	"github.com/pleasehelpm32/chesstutor/internal/errors"
	"github.com/pleasehelpm32/chesstutor/internal/rules"
	"github.com/pleasehelpm32/chesstutor/internal/uci"
)

// State is the engine handle's lifecycle state.
type State int

// Engine handle states. Busy is derived: the stored state stays Ready
// while a ticket is active.
const (
	StateNotStarted State = iota
	StateHandshaking
	StateReady
	StateBusy
	StateTerminating
	StateCrashed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	case StateTerminating:
		return "terminating"
	case StateCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}

// handshake shares one in-flight Initialize outcome between callers.
type handshake struct {
	done chan struct{}
	err  error
}

// conversation is one exclusive protocol exchange: the handler consuming
// the engine's output lines on behalf of the owning ticket. done closes
// when the handler sees its terminal line.
type conversation struct {
	handler uci.LineHandler
	done    chan struct{}
}

// tokenWaiter resolves when the engine emits an exact token line, used
// for the uciok/readyok handshake steps.
type tokenWaiter struct {
	token string
}

func (w *tokenWaiter) HandleLine(line string) bool {
	return strings.TrimSpace(line) == w.token
}

// Manager owns the engine subprocess and serializes all conversations
// with it. Create one with NewManager and pass it by reference; there is
// no package-level instance.
type Manager struct {
	log    *slog.Logger
	opts   *config.Options
	rules  rules.Rules
	broker *broker.Broker

	// newTransport is the factory for the subprocess transport; tests
	// substitute scripted transports here.
	newTransport func() Transport

	mu        sync.Mutex
	state     State
	transport Transport
	handshake *handshake
	exited    chan struct{}
	exitErr   error
	eg        *errgroup.Group

	convMu sync.Mutex
	active *conversation
}

// NewManager creates an engine manager. The rules collaborator r is used
// to validate positions and tag checkmating moves; if nil, the default
// notnil/chess implementation is used.
func NewManager(opts *config.Options, r rules.Rules) *Manager {
	if opts == nil {
		opts = &config.Options{}
	}

	opts.ApplyDefaults()

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log = log.With("component", "engine")

	if r == nil {
		r = rules.New()
	}

	m := &Manager{
		log:    log,
		opts:   opts,
		rules:  r,
		broker: broker.New(log, opts.MaxQueueDepth),
	}
	m.newTransport = func() Transport {
		return newProcTransport(log, opts.EnginePath)
	}

	return m
}

// SetTransportFactory replaces the subprocess transport factory. The
// factory is invoked once per Initialize. Intended for tests and for
// embedders that talk to an engine over something other than local stdio.
func (m *Manager) SetTransportFactory(f func() Transport) {
	m.newTransport = f
}

// Initialize spawns the engine process and completes the UCI handshake:
// "uci" until uciok, then "isready" until readyok. It resolves only after
// readyok. Calling it while already Ready returns immediately; concurrent
// calls during the handshake share one outcome. After a crash or shutdown
// an explicit new Initialize is required; nothing respawns implicitly.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()

	switch m.state {
	case StateReady:
		m.mu.Unlock()

		return nil

	case StateHandshaking:
		hs := m.handshake
		m.mu.Unlock()

		select {
		case <-hs.done:
			return hs.err
		case <-ctx.Done():
			return ctx.Err()
		}

	case StateTerminating:
		m.mu.Unlock()

		return &errors.EngineStartupError{Err: errors.ErrAlreadyShutdown}
	}

	// NotStarted or Crashed: start a fresh handshake.
	hs := &handshake{done: make(chan struct{})}
	m.handshake = hs
	m.state = StateHandshaking
	m.mu.Unlock()

	m.log.Info("Initializing engine")

	err := m.runHandshake(ctx)

	m.mu.Lock()
	m.handshake = nil

	if err != nil {
		m.state = StateNotStarted
		m.transport = nil
	} else {
		m.state = StateReady
	}
	m.mu.Unlock()

	if err == nil {
		m.broker.SetReady(true)
		m.log.Info("Engine ready")
	} else {
		m.log.Error("Engine initialization failed", "error", err)
	}

	hs.err = err
	close(hs.done)

	return err
}

// runHandshake spawns the process and drives the uci/isready exchange,
// bounded by the configured handshake window.
func (m *Manager) runHandshake(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.opts.HandshakeTimeout)
	defer cancel()

	t := m.newTransport()
	if err := t.Start(ctx); err != nil {
		return err
	}

	exited := make(chan struct{})
	eg := &errgroup.Group{}

	m.mu.Lock()
	m.transport = t
	m.exited = exited
	m.exitErr = nil
	m.eg = eg
	m.mu.Unlock()

	eg.Go(func() error {
		m.readLoop(t, exited)

		return nil
	})

	steps := []struct {
		cmd   string
		want  string
		stage string
	}{
		{uci.CmdUCI, uci.ResponseUCIOK, "uci"},
		{uci.CmdIsReady, uci.ResponseReadyOK, "isready"},
	}

	for _, step := range steps {
		conv := m.beginConversation(&tokenWaiter{token: step.want})

		if err := t.WriteCommand(ctx, step.cmd); err != nil {
			m.endConversation(conv)
			m.teardown(t, exited)

			return &errors.EngineStartupError{Stage: step.stage, Err: err}
		}

		select {
		case <-conv.done:

		case <-exited:
			m.endConversation(conv)

			m.mu.Lock()
			exitErr := m.exitErr
			m.mu.Unlock()

			if exitErr == nil {
				exitErr = stderrors.New("engine process exited during handshake")
			}

			return &errors.EngineStartupError{Stage: step.stage, Err: exitErr}

		case <-ctx.Done():
			m.endConversation(conv)
			m.teardown(t, exited)

			return &errors.EngineStartupError{Stage: step.stage, Err: ctx.Err()}
		}
	}

	return nil
}

// teardown kills a half-started process and waits briefly for its read
// loop to drain.
func (m *Manager) teardown(t Transport, exited chan struct{}) {
	_ = t.Close()

	select {
	case <-exited:
	case <-time.After(time.Second):
		m.log.Warn("Read loop did not stop after kill during teardown")
	}
}

// IsReady reports whether the engine can accept (or is serving) work.
func (m *Manager) IsReady() bool {
	s := m.State()

	return s == StateReady || s == StateBusy
}

// State returns the current engine handle state.
func (m *Manager) State() State {
	m.mu.Lock()
	s := m.state
	m.mu.Unlock()

	if s == StateReady && m.broker.Active() != nil {
		return StateBusy
	}

	return s
}

// Shutdown cancels every queued ticket and the active one with
// EngineShutdownError, writes "quit", and waits up to the configured grace
// before escalating to a kill. Calling it when NotStarted or Crashed is a
// no-op success.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()

	switch m.state {
	case StateNotStarted, StateCrashed:
		m.state = StateNotStarted
		m.transport = nil
		m.mu.Unlock()

		return nil

	case StateHandshaking:
		hs := m.handshake
		m.mu.Unlock()

		// Let the in-flight handshake settle, then shut down whatever
		// it produced.
		select {
		case <-hs.done:
		case <-ctx.Done():
			return ctx.Err()
		}

		return m.Shutdown(ctx)

	case StateTerminating:
		exited := m.exited
		m.mu.Unlock()

		select {
		case <-exited:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	t := m.transport
	exited := m.exited
	eg := m.eg
	m.state = StateTerminating
	m.mu.Unlock()

	m.log.Info("Shutting down engine")

	// Reject queued and active work before touching the process, so no
	// conversation is mid-flight when the pipes go away.
	m.broker.FailAll(&errors.EngineShutdownError{})

	if err := t.WriteCommand(ctx, uci.CmdQuit); err != nil {
		m.log.Debug("Quit command failed, killing directly", "error", err)
	}

	select {
	case <-exited:

	case <-time.After(m.opts.ShutdownGrace):
		m.log.Warn("Engine did not exit within grace period, killing",
			"grace", m.opts.ShutdownGrace)

		_ = t.Close()

		select {
		case <-exited:
		case <-time.After(time.Second):
			m.log.Error("Read loop did not stop after kill")
		}
	}

	if eg != nil {
		_ = eg.Wait()
	}

	m.mu.Lock()
	m.state = StateNotStarted
	m.transport = nil
	m.mu.Unlock()

	m.log.Info("Engine shut down")

	return nil
}

// readLoop is the only reader of the engine's stdout. It frames chunks
// into lines and feeds them to the active conversation; exactly one such
// loop exists per process.
func (m *Manager) readLoop(t Transport, exited chan struct{}) {
	chunks, errs := t.ReadOutput(context.Background())
	lineBuf := &uci.LineBuffer{}

	for chunk := range chunks {
		for _, line := range lineBuf.Feed(chunk) {
			m.dispatchLine(line)
		}
	}

	var exitErr error
	if err, ok := <-errs; ok {
		exitErr = err
	}

	m.onProcessExit(exitErr, exited)
}

// dispatchLine hands one complete line to the active conversation's
// handler. Lines with no active conversation are discarded; they must
// never be buffered for a ticket that has not been granted yet.
func (m *Manager) dispatchLine(line string) {
	m.convMu.Lock()

	conv := m.active
	if conv == nil {
		m.convMu.Unlock()
		m.log.Debug("Discarding engine line with no active conversation", "line", line)

		return
	}

	done := conv.handler.HandleLine(line)
	if done {
		m.active = nil
	}

	m.convMu.Unlock()

	if done {
		close(conv.done)
	}
}

func (m *Manager) beginConversation(handler uci.LineHandler) *conversation {
	conv := &conversation{
		handler: handler,
		done:    make(chan struct{}),
	}

	m.convMu.Lock()

	if m.active != nil {
		// The broker should make this impossible.
		m.log.Error("Conversation started while another is active")
	}

	m.active = conv
	m.convMu.Unlock()

	return conv
}

func (m *Manager) endConversation(conv *conversation) {
	m.convMu.Lock()

	if m.active == conv {
		m.active = nil
	}

	m.convMu.Unlock()
}

// onProcessExit records the exit, transitions to Crashed unless a shutdown
// is in progress, and rejects the active and all queued tickets. It never
// respawns the process.
func (m *Manager) onProcessExit(exitErr error, exited chan struct{}) {
	m.mu.Lock()

	starting := m.state == StateHandshaking
	terminating := m.state == StateTerminating
	m.exitErr = exitErr

	if !terminating {
		m.state = StateCrashed
		m.transport = nil
	}

	close(exited)
	m.mu.Unlock()

	if terminating {
		return
	}

	if starting {
		// The handshake path reports the startup failure itself.
		m.log.Debug("Engine exited during handshake", "error", exitErr)

		return
	}

	crashErr := exitErr
	if crashErr == nil {
		crashErr = &errors.EngineCrashError{Err: stderrors.New("engine process exited")}
	}

	m.log.Error("Engine crashed while serving", "error", crashErr)
	m.broker.FailAll(crashErr)
}

// send writes one command to the current process.
func (m *Manager) send(ctx context.Context, cmd string) error {
	m.mu.Lock()
	t := m.transport
	m.mu.Unlock()

	if t == nil {
		return errors.ErrNotInitialized
	}

	return t.WriteCommand(ctx, cmd)
}

// converse runs one exclusive exchange with the engine: acquire a ticket,
// write the command sequence, and let handler consume output lines until
// its terminal line, the deadline, or an engine failure. The ticket is
// released exactly once, on every exit path.
func (m *Manager) converse(
	ctx context.Context,
	handler uci.LineHandler,
	timeout time.Duration,
	cmds ...string,
) error {
	if !m.IsReady() {
		return errors.ErrNotInitialized
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticket, err := m.broker.Acquire(ctx)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return &errors.EngineTimeoutError{Timeout: timeout}
		}

		return err
	}

	m.log.Debug("Conversation started", "ticket_id", ticket.ID())

	conv := m.beginConversation(handler)

	for _, cmd := range cmds {
		if err := m.send(ctx, cmd); err != nil {
			// A write failing mid-sequence usually means the process died
			// under us; the crash watcher delivers the real cause to the
			// ticket. Prefer it over the raw pipe error, but not when the
			// caller's own context killed the write.
			if ctx.Err() == nil {
				select {
				case failErr := <-ticket.Failed():
					err = failErr
				case <-time.After(m.opts.StopGrace):
				}
			}

			m.endConversation(conv)
			m.broker.Release(ticket)

			return err
		}
	}

	select {
	case <-conv.done:
		m.broker.Release(ticket)

		return nil

	case failErr := <-ticket.Failed():
		m.endConversation(conv)
		m.broker.Release(ticket)

		return failErr

	case <-ctx.Done():
		// The search may still be running. Ask the engine to stop and
		// wait a bounded grace for its terminal line: releasing before
		// it arrives would let a late bestmove leak into the next
		// ticket's conversation.
		_ = m.send(context.Background(), uci.CmdStop)

		select {
		case <-conv.done:
		case <-ticket.Failed():
		case <-time.After(m.opts.StopGrace):
			m.log.Warn("No terminal line after stop, releasing anyway",
				"ticket_id", ticket.ID())
		}

		m.endConversation(conv)
		m.broker.Release(ticket)

		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &errors.EngineTimeoutError{Timeout: timeout}
		}

		return ctx.Err()
	}
}
