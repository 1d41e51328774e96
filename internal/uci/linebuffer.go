package uci

import "bytes"

// LineBuffer accumulates raw engine output and yields complete lines.
//
// It always holds exactly the trailing incomplete fragment between feeds,
// so parsing is identical regardless of where chunk boundaries fall.
// LineBuffer is not safe for concurrent use; the engine manager owns one
// and feeds it from its single reader goroutine.
type LineBuffer struct {
	pending []byte
}

// Feed appends a chunk of raw bytes and returns every complete line it now
// holds, in emission order. Line terminators are stripped; both LF and CRLF
// are accepted.
func (b *LineBuffer) Feed(chunk []byte) []string {
	b.pending = append(b.pending, chunk...)

	var lines []string

	for {
		i := bytes.IndexByte(b.pending, '\n')
		if i < 0 {
			break
		}

		line := bytes.TrimSuffix(b.pending[:i], []byte("\r"))
		lines = append(lines, string(line))
		b.pending = b.pending[i+1:]
	}

	// Reset backing storage once drained so a long session does not pin
	// every chunk ever fed.
	if len(b.pending) == 0 {
		b.pending = nil
	}

	return lines
}

// Pending returns the trailing incomplete fragment, for diagnostics.
func (b *LineBuffer) Pending() string {
	return string(b.pending)
}
