package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// entry is either a log line or, when ack is set, a flush barrier.
type entry struct {
	line []byte
	ack  chan error
}

// asyncWriter moves formatting off the slow path: handlers enqueue lines and
// a single goroutine writes them to every sink in order.
type asyncWriter struct {
	entries chan entry
	stopped chan struct{}

	gate   sync.RWMutex
	closed bool

	sinks []*bufio.Writer

	mu     sync.Mutex
	failed error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		entries: make(chan entry, 256),
		stopped: make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.stopped)
	for e := range w.entries {
		if e.ack != nil {
			e.ack <- w.flushSinks()
			continue
		}
		w.record(w.writeLine(e.line))
	}
	w.record(w.flushSinks())
}

// Write enqueues a copy of p. It blocks only while the queue is full and
// fails once an earlier write to a sink has failed.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.err(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	return w.send(entry{line: append([]byte(nil), p...)})
}

// Flush returns once every line enqueued before it has reached the sinks.
func (w *asyncWriter) Flush() error {
	if err := w.err(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	if err := w.send(entry{ack: ack}); err != nil {
		return nil
	}
	return <-ack
}

var errWriterClosed = errors.New("logger: writer closed")

func (w *asyncWriter) send(e entry) error {
	w.gate.RLock()
	defer w.gate.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.entries <- e
	return nil
}

// Close drains pending lines and returns the first write error seen.
func (w *asyncWriter) Close() error {
	w.gate.Lock()
	if !w.closed {
		w.closed = true
		close(w.entries)
	}
	w.gate.Unlock()
	<-w.stopped
	return w.err()
}

func (w *asyncWriter) writeLine(p []byte) error {
	for _, s := range w.sinks {
		if _, err := s.Write(p); err != nil {
			return err
		}
		if err := s.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flushSinks() error {
	var errs []error
	for _, s := range w.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) record(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failed == nil {
		w.failed = err
	}
}

func (w *asyncWriter) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failed
}
