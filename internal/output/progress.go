package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressReporter displays a live per-phase progress line. It implements
// phase.Observer.
type ProgressReporter struct {
	writer   io.Writer
	interval time.Duration

	mu       sync.Mutex
	done     chan struct{}
	finished chan struct{}
}

// NewProgressReporter creates a progress reporter that rewrites its line at
// the given interval.
func NewProgressReporter(interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &ProgressReporter{writer: writer, interval: interval}
}

// PhaseStarted begins updating the progress line for one phase.
func (p *ProgressReporter) PhaseStarted(name string, total int, completed func() int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		return // previous phase still attached
	}
	p.done = make(chan struct{})
	p.finished = make(chan struct{})
	go p.run(name, total, completed, p.done, p.finished)
}

// PhaseFinished stops the progress line and terminates it with a newline.
func (p *ProgressReporter) PhaseFinished(string) {
	p.mu.Lock()
	done, finished := p.done, p.finished
	p.done, p.finished = nil, nil
	p.mu.Unlock()
	if done == nil {
		return
	}
	close(done)
	<-finished
	fmt.Fprintln(p.writer)
}

func (p *ProgressReporter) run(name string, total int, completed func() int64, done, finished chan struct{}) {
	defer close(finished)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Fprintf(p.writer, "\r%s: %d/%d", name, completed(), total)
		case <-done:
			fmt.Fprintf(p.writer, "\r%s: %d/%d", name, completed(), total)
			return
		}
	}
}
