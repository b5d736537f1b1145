package address

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/histweather/histweather/internal/geo"
)

// Status is the search session's activity indicator.
type Status int

const (
	StatusIdle Status = iota
	StatusSearching
)

// Default orchestration parameters. Queries shorter than the minimum never
// reach the geocoder, which keeps near-empty keystrokes off the network.
const (
	DefaultDebounce    = 300 * time.Millisecond
	DefaultMinQueryLen = 3
)

// Sinks are the callbacks a Searcher emits through. Results receives a fresh
// ranked slice per completed search (nil clears the suggestion list).
// Selected fires when the user finalizes a choice. Error receives transient
// provider failures; cancellations never reach it. All fields are optional.
type Sinks struct {
	Results  func([]Candidate)
	Selected func(Selection)
	Status   func(Status)
	Error    func(error)
}

// Searcher owns one address-input session: it debounces keystrokes, keeps at
// most one lookup in flight, and guards against results arriving after the
// user has already picked a suggestion. All state is replaced-and-cancelled
// under a single mutex, so no two lookups for the session ever overlap.
type Searcher struct {
	geocoder Geocoder
	sinks    Sinks

	debounce    time.Duration
	minQueryLen int

	mu        sync.Mutex
	timer     *time.Timer
	cancel    context.CancelFunc
	gen       uint64
	selected  bool
	reference *geo.Coordinate
}

// Option customizes a Searcher.
type Option func(*Searcher)

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(s *Searcher) { s.debounce = d }
}

// WithMinQueryLen overrides the minimum trimmed input length that triggers
// a lookup.
func WithMinQueryLen(n int) Option {
	return func(s *Searcher) { s.minQueryLen = n }
}

// NewSearcher creates a session bound to the given geocoder and sinks.
func NewSearcher(geocoder Geocoder, sinks Sinks, opts ...Option) *Searcher {
	s := &Searcher{
		geocoder:    geocoder,
		sinks:       sinks,
		debounce:    DefaultDebounce,
		minQueryLen: DefaultMinQueryLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetReference updates the coordinate used to bias the geocoder and rank
// results. A nil reference leaves results in provider order.
func (s *Searcher) SetReference(c *geo.Coordinate) {
	s.mu.Lock()
	s.reference = c
	s.mu.Unlock()
}

// Input handles one keystroke event. Any pending debounce timer and any
// in-flight lookup are invalidated first, even when the new input is too
// short, so at most one logical search is ever active. Fresh typing also
// clears a prior selection.
func (s *Searcher) Input(text string) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	s.invalidateLocked()
	s.selected = false

	if len(text) < s.minQueryLen {
		s.mu.Unlock()
		s.emitResults(nil)
		s.setStatus(StatusIdle)
		return
	}

	gen := s.gen
	s.mu.Unlock()

	// The searching status must be observable before the debounced lookup can
	// finish and report idle. Sinks are never called under the lock, so the
	// timer is armed afterwards, and only if no newer input arrived meanwhile.
	s.setStatus(StatusSearching)

	s.mu.Lock()
	if gen == s.gen {
		s.timer = time.AfterFunc(s.debounce, func() {
			s.lookup(gen, text)
		})
	}
	s.mu.Unlock()
}

// Select finalizes a suggestion: it latches the selection, invalidates any
// outstanding timer or lookup, clears the suggestion list, and notifies the
// selection sink.
func (s *Searcher) Select(c Candidate) {
	s.mu.Lock()
	s.invalidateLocked()
	s.selected = true
	s.mu.Unlock()

	s.emitResults(nil)
	s.setStatus(StatusIdle)

	if s.sinks.Selected != nil {
		s.sinks.Selected(SelectionOf(c))
	}
}

// Close invalidates any pending work. The Searcher must not be used after.
func (s *Searcher) Close() {
	s.mu.Lock()
	s.invalidateLocked()
	s.mu.Unlock()
}

// lookup runs once the debounce fires. gen identifies the keystroke that
// armed the timer; if a newer keystroke has arrived the work is already
// superseded and nothing is emitted.
func (s *Searcher) lookup(gen uint64, text string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	reference := s.reference
	s.mu.Unlock()

	query := Normalize(text)
	if query == "" {
		cancel()
		s.clearCancelFor(gen)
		s.emitResults(nil)
		s.setStatus(StatusIdle)
		return
	}

	candidates, err := s.geocoder.Search(ctx, query, reference)

	s.mu.Lock()
	superseded := gen != s.gen || s.selected
	if gen == s.gen {
		s.cancel = nil
	}
	s.mu.Unlock()
	cancel()

	switch {
	case err != nil && errors.Is(err, context.Canceled):
		// Superseded or aborted mid-flight: not an error.
		s.setStatus(StatusIdle)
	case err != nil:
		s.setStatus(StatusIdle)
		if !superseded && s.sinks.Error != nil {
			s.sinks.Error(err)
		}
	case superseded:
		// The user picked a suggestion (or typed again) while the request
		// was outstanding; discard silently.
		s.setStatus(StatusIdle)
	default:
		s.emitResults(FilterAndRank(candidates, reference))
		s.setStatus(StatusIdle)
	}
}

// invalidateLocked cancels the pending timer and the in-flight lookup and
// bumps the generation so any late completion is recognized as stale.
// Caller must hold s.mu.
func (s *Searcher) invalidateLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) clearCancelFor(gen uint64) {
	s.mu.Lock()
	if gen == s.gen {
		s.cancel = nil
	}
	s.mu.Unlock()
}

func (s *Searcher) emitResults(candidates []Candidate) {
	if s.sinks.Results != nil {
		s.sinks.Results(candidates)
	}
}

func (s *Searcher) setStatus(st Status) {
	if s.sinks.Status != nil {
		s.sinks.Status(st)
	}
}
