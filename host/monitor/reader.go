package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"
)

// Sink receives every parsed telemetry message
type Sink interface {
	Publish(Message)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Message)

func (f SinkFunc) Publish(msg Message) { f(msg) }

// Reader scans a telemetry stream line by line and fans parsed messages
// out to its sinks. Lines that do not parse (firmware debug output, boot
// banners) are logged and skipped.
type Reader struct {
	src   io.Reader
	sinks []Sink
	now   func() time.Time

	// Verbose logs skipped lines
	Verbose bool
}

func NewReader(src io.Reader, sinks ...Sink) *Reader {
	return &Reader{src: src, sinks: sinks, now: time.Now}
}

// Run reads until EOF, a read error, or ctx is done. The caller closes
// the source to unblock a pending read on cancellation.
func (r *Reader) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.src)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if line == "" || line == "\r" {
			continue
		}
		msg, err := ParseLine(line)
		if err != nil {
			if r.Verbose {
				log.Printf("skipping %q: %v", line, err)
			}
			continue
		}
		msg.Time = r.now()
		for _, s := range r.sinks {
			s.Publish(msg)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading telemetry: %w", err)
	}
	return nil
}
