package engine

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pleasehelpm32/chesstutor/internal/errors"
)

// engineBinaryName is the conventional name of the engine binary on PATH.
const engineBinaryName = "stockfish"

// locateEngine resolves the engine binary. An explicit path is used as-is
// and never falls back; otherwise PATH and common install locations are
// searched. Platform-specific naming is a deployment concern handled by
// configuration, not here.
func locateEngine(log *slog.Logger, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}

		log.Debug("Configured engine path not found", "path", explicit)

		return "", &errors.EngineNotFoundError{SearchedPaths: []string{explicit}}
	}

	searched := make([]string, 0, 4)

	if path, err := exec.LookPath(engineBinaryName); err == nil {
		log.Debug("Found engine in PATH", "path", path)

		return path, nil
	}

	searched = append(searched, "$PATH")

	commonPaths := []string{
		"/usr/local/bin/" + engineBinaryName,
		"/usr/bin/" + engineBinaryName,
		"/opt/homebrew/bin/" + engineBinaryName,
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(homeDir, ".local/bin", engineBinaryName))
	}

	for _, path := range commonPaths {
		searched = append(searched, path)

		if _, err := os.Stat(path); err == nil {
			log.Debug("Found engine at common path", "path", path)

			return path, nil
		}
	}

	log.Warn("Engine binary not found", "searched_paths", searched)

	return "", &errors.EngineNotFoundError{SearchedPaths: searched}
}
