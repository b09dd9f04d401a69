// Package output implements the per-tick textual record writer (spec §6):
// monotonic-id records written through a bufio.Writer, optionally wrapped
// in gzip for archived runs. klauspost/compress/gzip is a drop-in
// replacement for compress/gzip the teacher already carries indirectly (for
// its network layer's packet compression); here it is promoted to a direct
// dependency with a concrete use, writing archived tick logs instead of
// compressing packets.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Record is one per-tick, per-agent output line: agent id, tick, role name,
// position, velocity, plus free-form role-specific fields appended as
// "key=value" pairs.
type Record struct {
	Tick     int64
	AgentID  int64
	Role     string
	X, Y     float64
	VX, VY   float64
	Extra    []string
}

// Writer serializes Records as whitespace-separated textual lines, one per
// record, with a monotonic sequence number prefix.
type Writer struct {
	w       *bufio.Writer
	closers []io.Closer
	seq     int64
}

// Open creates (truncating) the file at path and wraps it in a Writer. If
// gzipCompressed is true, writes pass through a gzip.Writer first, the way
// an archived run's tick log would be stored.
func Open(path string, gzipCompressed bool) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("output: create %s: %w", path, err)
	}

	var sink io.Writer = f
	closers := []io.Closer{f}
	if gzipCompressed {
		gz := gzip.NewWriter(f)
		sink = gz
		closers = append(closers, gz)
	}

	return &Writer{w: bufio.NewWriter(sink), closers: closers}, nil
}

// NewUncompressed wraps an already-open io.Writer (e.g. for tests), with no
// file lifecycle to manage.
func NewUncompressed(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends r as one textual line and advances the sequence number.
func (w *Writer) Write(r Record) error {
	w.seq++
	_, err := fmt.Fprintf(w.w, "%d\t%d\t%d\t%s\t%.3f\t%.3f\t%.3f\t%.3f",
		w.seq, r.Tick, r.AgentID, r.Role, r.X, r.Y, r.VX, r.VY)
	if err != nil {
		return err
	}
	for _, kv := range r.Extra {
		if _, err := fmt.Fprintf(w.w, "\t%s", kv); err != nil {
			return err
		}
	}
	_, err = w.w.WriteString("\n")
	return err
}

// Flush flushes the buffered writer without closing any underlying file or
// gzip stream.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes and closes every layer opened by Open, innermost first
// (gzip trailer, then the file). Closers opened elsewhere (NewUncompressed)
// are left untouched.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i].Close(); err != nil {
			return err
		}
	}
	return nil
}
