// Package streamutil provides the output drain shared by interact providers.
//
// A Drain copies everything a process writes to one descriptor into memory on
// its own goroutine, so the engine loop can inspect the text without ever
// blocking on a read.
package streamutil

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// ReadErrorText replaces the captured text when reading the stream fails.
// The process exit code stays the authoritative success signal.
const ReadErrorText = "error reading output"

const chunkSize = 4096

// Drain accumulates the bytes of one stream.
// The reader goroutine is the only writer; Snapshot, Reset and Take may be
// called concurrently from any goroutine.
type Drain struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	done chan struct{}
}

// Start launches a reader goroutine for r and returns immediately.
func Start(r io.Reader) *Drain {
	d := &Drain{done: make(chan struct{})}

	go d.run(r)

	return d
}

func (d *Drain) run(r io.Reader) {
	defer close(d.done)

	chunk := make([]byte, chunkSize)

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			d.mu.Lock()
			d.buf.Write(chunk[:n])
			d.mu.Unlock()
		}

		if err == nil {
			continue
		}

		if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
			d.mu.Lock()
			d.buf.Reset()
			d.buf.WriteString(ReadErrorText)
			d.mu.Unlock()
		}

		return
	}
}

// Snapshot returns the accumulated text decoded as UTF-8.
func (d *Drain) Snapshot() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.buf.String()
}

// Reset clears the accumulated bytes.
func (d *Drain) Reset() {
	d.mu.Lock()
	d.buf.Reset()
	d.mu.Unlock()
}

// Take applies match to the accumulated text and clears the buffer on a match.
// No bytes can be appended between the match and the reset.
func (d *Drain) Take(match func(string) (string, bool)) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	got, ok := match(d.buf.String())
	if ok {
		d.buf.Reset()
	}

	return got, ok
}

// Done is closed once the stream reached end of input.
func (d *Drain) Done() <-chan struct{} {
	return d.done
}

// Final waits for end of input and returns the captured text.
// The boolean is false when nothing is left in the buffer.
func (d *Drain) Final() (string, bool) {
	<-d.done

	s := d.Snapshot()

	return s, s != ""
}
