package display

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
)

// ProgressIndicator prints one line per finished document: [N/Total] name.
// It is safe for concurrent use.
type ProgressIndicator struct {
	mu      sync.Mutex
	writer  io.Writer
	total   int
	current int
	styles  styles
}

// NewProgressIndicator creates a new progress indicator
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{writer: w, total: total, styles: newStyles(w)}
}

// Step records one finished document.
func (p *ProgressIndicator) Step(path string, passed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++

	mark := p.styles.pass.Sprint("ok")
	if !passed {
		mark = p.styles.fail.Sprint("FAIL")
	}
	fmt.Fprintf(p.writer, "  [%d/%d] %s %s\n", p.current, p.total, filepath.Base(path), mark)
}

// Complete prints the closing line.
func (p *ProgressIndicator) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.writer, "Verified %d of %d documents\n", p.current, p.total)
}
