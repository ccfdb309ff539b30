package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errSinkClosed = errors.New("logger: sink closed")

// sinkOp is either a line to write or, with a nil line, a flush request.
type sinkOp struct {
	line []byte
	ack  chan error
}

// asyncSink serializes writes to every output on one goroutine.
// Writers block when the queue is full; lines are never dropped.
type asyncSink struct {
	ops     chan sinkOp
	stopped chan struct{}
	gate    sync.RWMutex
	closed  bool

	outs []*bufio.Writer
	err  error
	mu   sync.Mutex
}

func newAsyncSink(outputs []io.Writer, bufSize int) *asyncSink {
	s := &asyncSink{
		ops:     make(chan sinkOp, 256),
		stopped: make(chan struct{}),
	}
	for _, w := range outputs {
		if w != nil {
			s.outs = append(s.outs, bufio.NewWriterSize(w, max(bufSize, 4096)))
		}
	}
	go s.run()
	return s
}

func (s *asyncSink) run() {
	defer close(s.stopped)
	for op := range s.ops {
		if op.line == nil {
			op.ack <- s.flush()
			continue
		}
		for _, out := range s.outs {
			if _, err := out.Write(op.line); err != nil {
				s.fail(err)
			}
		}
		// Outputs are flushed whenever the queue drains.
		if len(s.ops) == 0 {
			if err := s.flush(); err != nil {
				s.fail(err)
			}
		}
	}
	if err := s.flush(); err != nil {
		s.fail(err)
	}
}

// Write queues a copy of p.
func (s *asyncSink) Write(p []byte) error {
	if err := s.Err(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	s.gate.RLock()
	defer s.gate.RUnlock()
	if s.closed {
		return errSinkClosed
	}
	s.ops <- sinkOp{line: append([]byte(nil), p...)}
	return nil
}

// Flush returns once everything queued before it has reached the outputs.
func (s *asyncSink) Flush() error {
	ack := make(chan error, 1)
	s.gate.RLock()
	if s.closed {
		s.gate.RUnlock()
		return s.Err()
	}
	s.ops <- sinkOp{ack: ack}
	s.gate.RUnlock()
	select {
	case err := <-ack:
		return err
	case <-s.stopped:
		return s.Err()
	}
}

// Close drains the queue and stops the goroutine.
func (s *asyncSink) Close() error {
	s.gate.Lock()
	if !s.closed {
		s.closed = true
		close(s.ops)
	}
	s.gate.Unlock()
	<-s.stopped
	return s.Err()
}

// Err returns the first write error seen.
func (s *asyncSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *asyncSink) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

func (s *asyncSink) flush() error {
	var errs []error
	for _, out := range s.outs {
		errs = append(errs, out.Flush())
	}
	return errors.Join(errs...)
}
