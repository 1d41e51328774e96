// Package chesstutor manages a single long-lived UCI chess engine process
// and mediates all access to it.
//
// A UCI engine such as Stockfish is a stateful subprocess speaking a
// line-oriented text protocol over stdio. Interleaving commands from
// concurrent callers corrupts its state, so this package serializes every
// request through a session broker: exactly one request converses with the
// engine at a time, and waiters are granted access in arrival order.
//
// # Basic Usage
//
// Create a manager, initialize it once, and share it across goroutines:
//
//	em := chesstutor.New(
//	    chesstutor.WithLogger(slog.Default()),
//	)
//	if err := em.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer em.Shutdown(context.Background())
//
//	moves, err := em.RequestAnalysis(ctx, fen, chesstutor.WithDepth(8))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, mv := range moves {
//	    fmt.Println(mv.Move, mv.IsCheckmate)
//	}
//
// # Best Move
//
// RequestBestMove plays at a configurable strength. Skill level ranges from
// 0 (weakest) to 20 (full strength); higher levels are given more thinking
// time:
//
//	best, err := em.RequestBestMove(ctx, fen, 15)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if best.None() {
//	    fmt.Println("no legal moves")
//	}
//
// # Failure Model
//
// If the engine process dies, every in-flight and queued request fails with
// EngineCrashError and the manager reports Crashed. The manager never
// respawns the engine on its own: call Initialize again to start a fresh
// process. Shutdown asks the engine to quit, waits a short grace period,
// then kills it; requests drained by a shutdown fail with
// EngineShutdownError.
package chesstutor
