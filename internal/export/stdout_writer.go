// Writer implementation printing rows as JSON lines
package export

import (
	"encoding/json"
	"io"
	"os"
	"sync"
)

// StdoutWriter prints rows as JSON lines to Out (STDOUT when nil).
type StdoutWriter struct {
	Out io.Writer
	mu  sync.Mutex
}

func (w *StdoutWriter) encode(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.Out
	if out == nil {
		out = os.Stdout
	}
	return json.NewEncoder(out).Encode(v)
}

// WriteCast outputs a single cast row.
func (w *StdoutWriter) WriteCast(row CastRow) error {
	return w.encode(row)
}

// WriteDamage outputs a single damage row.
func (w *StdoutWriter) WriteDamage(row DamageRow) error {
	return w.encode(row)
}
