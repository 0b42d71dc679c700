// Package scanner finds every URL occurrence in a byte stream.
//
// The Scanner runs one matcher.Automaton per input offset. Each new byte
// spawns a fresh automaton (the byte may start a URL) and is then fed to all
// live automata in spawn order. Automata that succeed are counted and
// removed, automata that fail are removed, the rest stay live. Nothing is
// ever re-read, so a URL is found no matter what byte precedes it.
//
// The live set is a slice compacted in place during the forward pass, so it
// can hold any number of candidates. With this grammar it never holds more
// than two: the scheme prefix cannot overlap itself, and the ':' every
// later candidate must pass through ends any domain or path in progress.
// Memory is therefore dominated by the longest domain or path token, which
// is unbounded. PeakLive reports the largest live set observed.
package scanner

import (
	"context"
	"errors"
	"io"

	"github.com/nao1215/urltally/internal/matcher"
	"github.com/nao1215/urltally/internal/model"
)

// FlushSentinel is fed after the end of a stream. It belongs to neither the
// domain nor the path byte class, so every automaton in an acceptable state
// succeeds and every automaton still in the scheme prefix fails.
const FlushSentinel byte = '\n'

// DefaultBufferSize is the read buffer size used by ScanReader.
const DefaultBufferSize = 64 * 1024

// Scanner counts URL occurrences in a stream of bytes.
// A Scanner is not safe for concurrent use.
type Scanner struct {
	// live holds the non-terminal automata in spawn order.
	live []matcher.Automaton

	// tally receives every recognized match.
	tally *model.Tally

	// onMatch, if set, is called once per recognized match.
	onMatch func(model.Match)

	// bufferSize is the read buffer size used by ScanReader.
	bufferSize int

	// peakLive is the largest len(live) observed after a step.
	peakLive int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithTally makes the scanner count into t instead of a fresh Tally.
func WithTally(t *model.Tally) Option {
	return func(s *Scanner) {
		if t != nil {
			s.tally = t
		}
	}
}

// WithMatchHandler registers fn to be called once for every recognized
// match, after the counters have been updated.
func WithMatchHandler(fn func(model.Match)) Option {
	return func(s *Scanner) {
		s.onMatch = fn
	}
}

// WithBufferSize sets the read buffer size used by ScanReader.
func WithBufferSize(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		bufferSize: DefaultBufferSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.tally == nil {
		s.tally = model.NewTally()
	}

	return s
}

// Consume processes one byte: spawn, advance every live automaton, reap.
func (s *Scanner) Consume(b byte) {
	s.live = append(s.live, matcher.New())

	// Compact in place: kept automata slide left over removed ones, which
	// preserves spawn order with O(1) work per automaton.
	kept := 0
	for i := range s.live {
		a := &s.live[i]
		a.Consume(b)

		switch {
		case a.IsSuccess():
			s.record(model.Match{Domain: a.TakeDomain(), Path: a.TakePath()})
		case a.IsError():
		default:
			if kept != i {
				s.live[kept] = *a
			}
			kept++
		}
	}

	// Drop references held by the vacated tail so their buffers can be collected.
	clear(s.live[kept:])
	s.live = s.live[:kept]

	if kept > s.peakLive {
		s.peakLive = kept
	}
}

// Write feeds p to the scanner. It never fails and always reports len(p),
// which lets a Scanner sit behind io.Copy or an io.MultiWriter.
func (s *Scanner) Write(p []byte) (int, error) {
	for _, b := range p {
		s.Consume(b)
	}
	return len(p), nil
}

// Flush ends the current stream by feeding FlushSentinel. Afterwards no
// automaton is live and the scanner can be fed the next stream; the
// counters keep accumulating.
func (s *Scanner) Flush() {
	s.Consume(FlushSentinel)
}

// ScanReader feeds every byte of r to the scanner and flushes at EOF.
// It returns the number of bytes read from r.
//
// The context is checked between buffer fills. On cancellation or a read
// error the error is returned without flushing; candidates in progress stay
// live until the caller flushes or keeps feeding.
func (s *Scanner) ScanReader(ctx context.Context, r io.Reader) (int64, error) {
	buf := make([]byte, s.bufferSize)

	var n int64
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		read, err := r.Read(buf)
		if read > 0 {
			n += int64(read)
			_, _ = s.Write(buf[:read]) //nolint:errcheck // Write never fails
		}
		if errors.Is(err, io.EOF) {
			s.Flush()
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}

// Tally returns the counters. The returned Tally is owned by the scanner
// and keeps changing while bytes are consumed.
func (s *Scanner) Tally() *model.Tally {
	return s.tally
}

// Live returns the number of candidate matches currently in progress.
func (s *Scanner) Live() int {
	return len(s.live)
}

// PeakLive returns the largest number of simultaneously live candidates seen.
func (s *Scanner) PeakLive() int {
	return s.peakLive
}

// record counts m and hands it to the match handler.
func (s *Scanner) record(m model.Match) {
	s.tally.Add(m)
	if s.onMatch != nil {
		s.onMatch(m)
	}
}
