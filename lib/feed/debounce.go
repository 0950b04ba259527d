package feed

import (
	"sync"
	"time"
)

// DebounceWindow is how long input must be quiet before it settles.
const DebounceWindow = 400 * time.Millisecond

// Debouncer turns a stream of keystrokes into settled search terms. A term
// settles once no newer input arrives within the window. Consecutive equal
// settled terms are reported once.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	last    string
	emitted bool
	stopped bool
	out     chan string
}

func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DebounceWindow
	}
	return &Debouncer{
		window: window,
		out:    make(chan string, 1),
	}
}

// Input records the latest raw term.
func (d *Debouncer) Input(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.settle(seq, term) })
}

// Settled delivers settled terms. A reader that falls behind only sees the
// newest one. The channel is closed by Stop.
func (d *Debouncer) Settled() <-chan string {
	return d.out
}

// Stop cancels any pending term and closes Settled.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.out)
}

func (d *Debouncer) settle(seq uint64, term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || seq != d.seq {
		return
	}
	if d.emitted && term == d.last {
		return
	}
	d.last = term
	d.emitted = true

	select {
	case d.out <- term:
	default:
		select {
		case <-d.out:
		default:
		}
		d.out <- term
	}
}
