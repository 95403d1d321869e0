// Package stub is an in-memory transport driver. It records every send call in
// a bounded ring and can be primed with status codes, for dry runs and tests.
package stub

import (
	"sync"

	"github.com/danmuck/rcxctl/internal/transport"
	"github.com/rs/zerolog/log"
)

// Call is one recorded Send invocation.
type Call struct {
	Len int
	B0  byte
	B1  byte
	B2  byte
}

// Driver implements transport.Driver without hardware.
type Driver struct {
	mu         sync.Mutex
	openStatus transport.Status
	queued     []transport.Status
	log        ring
	sends      int
	opens      int
	closes     int
}

var _ transport.Driver = (*Driver)(nil)

func New() *Driver { return NewWithCapacity(DefaultCapacity) }

// NewWithCapacity retains at most capacity send calls.
func NewWithCapacity(capacity int) *Driver {
	return &Driver{log: newRing(capacity)}
}

// WithOpenStatus makes the next Open report st.
func (d *Driver) WithOpenStatus(st transport.Status) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openStatus = st
	return d
}

// QueueSendStatus primes the results of the next Send calls, in order.
// Calls beyond the queue report StatusOK.
func (d *Driver) QueueSendStatus(st ...transport.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queued = append(d.queued, st...)
}

func (d *Driver) Open() transport.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	return d.openStatus
}

func (d *Driver) Send(length int, b0, b1, b2 byte) transport.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sends++
	d.log.push(Call{Len: length, B0: b0, B1: b1, B2: b2})

	st := transport.StatusOK
	if len(d.queued) > 0 {
		st = d.queued[0]
		d.queued = d.queued[1:]
	}
	log.Debug().
		Int("len", length).
		Hex("bytes", []byte{b0, b1, b2}[:clampLen(length)]).
		Int("status", int(st)).
		Msg("transport.stub send")
	return st
}

func (d *Driver) Close() transport.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	return transport.StatusOK
}

// Calls returns the retained send calls, oldest first.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.log.snapshot()
}

// SendCount is the total number of Send calls, including ones evicted from the ring.
func (d *Driver) SendCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sends
}

func (d *Driver) OpenCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

func (d *Driver) CloseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

// Reset drops recorded calls and counters.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = newRing(len(d.log.buf))
	d.queued = nil
	d.sends = 0
}

func clampLen(n int) int {
	switch {
	case n < 0:
		return 0
	case n > 3:
		return 3
	default:
		return n
	}
}

// DefaultCapacity is the number of send calls retained by New.
const DefaultCapacity = 1 << 16

type ring struct {
	buf        []Call
	head, tail int // head = oldest, tail = next push
	count      int
}

func newRing(capacity int) ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return ring{buf: make([]Call, capacity)}
}

func (rb *ring) push(c Call) {
	capacity := len(rb.buf)
	if rb.count == capacity {
		// Overwrite the oldest to keep memory bounded.
		rb.head = (rb.head + 1) % capacity
		rb.count--
	}
	rb.buf[rb.tail] = c
	rb.tail = (rb.tail + 1) % capacity
	rb.count++
}

func (rb *ring) snapshot() []Call {
	out := make([]Call, rb.count)
	i := rb.head
	for n := 0; n < rb.count; n++ {
		out[n] = rb.buf[i]
		i = (i + 1) % len(rb.buf)
	}
	return out
}
