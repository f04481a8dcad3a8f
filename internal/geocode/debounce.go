package geocode

import (
	"context"
	"sync"
	"time"
)

// DefaultSettle is how long a stream must stay quiet before a suggestion
// fetch is issued, coalescing per-keystroke triggers into one network call.
const DefaultSettle = 800 * time.Millisecond

// maxStreams bounds the generation map. When exceeded, the map is dropped
// wholesale: every in-flight call then observes a generation mismatch and
// reports itself superseded, which is safe for type-ahead traffic.
const maxStreams = 1024

// Debouncer coalesces rapid repeated triggers on the same input stream.
// Each trigger bumps the stream's generation counter; the fetch only runs if
// the generation is still current once the settle delay elapses, and a fetch
// result is discarded if a newer trigger arrived while it was in flight.
// Superseding relies on generation comparison, never on response timing, so a
// stale response can never overwrite fresher suggestions.
type Debouncer struct {
	settle time.Duration

	mu   sync.Mutex
	gens map[string]uint64
}

// NewDebouncer constructs a Debouncer with the given settle delay.
// Pass DefaultSettle unless a test needs a shorter one.
func NewDebouncer(settle time.Duration) *Debouncer {
	return &Debouncer{settle: settle, gens: make(map[string]uint64)}
}

// Debounce registers a trigger on stream, waits out the settle delay, and
// runs fetch if no newer trigger arrived. The bool is true when this call
// was superseded (or the context ended) and its results must be ignored.
func (d *Debouncer) Debounce(ctx context.Context, stream string, fetch func(context.Context) []Suggestion) ([]Suggestion, bool) {
	gen := d.bump(stream)

	timer := time.NewTimer(d.settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, true
	case <-timer.C:
	}

	if !d.current(stream, gen) {
		return nil, true
	}

	results := fetch(ctx)

	// A newer trigger may have arrived while the fetch was in flight.
	if !d.current(stream, gen) {
		return nil, true
	}
	return results, false
}

func (d *Debouncer) bump(stream string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.gens) >= maxStreams {
		if _, ok := d.gens[stream]; !ok {
			d.gens = make(map[string]uint64)
		}
	}
	d.gens[stream]++
	return d.gens[stream]
}

func (d *Debouncer) current(stream string, gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gens[stream] == gen
}
