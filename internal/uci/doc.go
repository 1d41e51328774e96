// Package uci implements the line-level protocol spoken by UCI chess engines.
//
// The package has three concerns: incremental framing of the engine's raw
// stdout bytes into complete lines (LineBuffer), building the command text
// written to the engine's stdin, and the two response grammars driven by a
// conversation — ranked multi-line analysis (AnalysisCollector) and single
// best move (BestMoveCollector).
//
// Framing is independent of how the byte stream is chunked: feeding a
// transcript split at arbitrary boundaries yields the same lines as feeding
// it whole. Lines that do not match an expected pattern are skipped, never
// fatal; a stray line must not abandon a conversation.
package uci
