// Package transport owns the boundary to the infrared driver.
//
// A Driver is the raw open/send/close surface returning driver status codes.
// A Channel is the owned handle the encoder talks to: it opens the driver once,
// turns non-zero status codes into *Error values, and records them.
package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danmuck/rcxctl/internal/observability"
	"github.com/danmuck/rcxctl/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

// Status is a driver-defined result code. Zero means success.
type Status int

const (
	StatusOK              Status = 0
	StatusProgramFailure  Status = -100
	StatusDeviceNotFound  Status = -101
	StatusDeviceReadOnly  Status = -102
	StatusDeviceNoLIRC    Status = -103
	StatusDeviceNotOpen   Status = -104
	StatusDeviceIsOpen    Status = -105
	StatusDeviceError     Status = -106
	StatusRecvNothing     Status = -107
	StatusRecvError       Status = -108
	StatusInvalidArgument Status = -109
)

var statusText = map[Status]string{
	StatusOK:              "ok",
	StatusProgramFailure:  "program failure",
	StatusDeviceNotFound:  "device not found",
	StatusDeviceReadOnly:  "device read-only",
	StatusDeviceNoLIRC:    "device is not an ir driver",
	StatusDeviceNotOpen:   "device not open",
	StatusDeviceIsOpen:    "device already open",
	StatusDeviceError:     "device error",
	StatusRecvNothing:     "nothing received",
	StatusRecvError:       "receive error",
	StatusInvalidArgument: "invalid argument",
}

func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return fmt.Sprintf("status %d", int(s))
}

// Driver is the raw infrared driver call surface.
type Driver interface {
	Open() Status
	Send(length int, b0, b1, b2 byte) Status
	Close() Status
}

// Operation names carried by Error.
const (
	OpOpen  = "open"
	OpSend  = "send"
	OpClose = "close"
)

var ErrChannelClosed = errors.New("transport: channel closed")

// Error reports a non-zero driver status.
type Error struct {
	Op     string
	Status Status
	Frame  frame.Frame
}

func (e *Error) Error() string {
	if e.Op == OpSend {
		return fmt.Sprintf("transport: %s %s: %s (%d)", e.Op, e.Frame, e.Status, int(e.Status))
	}
	return fmt.Sprintf("transport: %s: %s (%d)", e.Op, e.Status, int(e.Status))
}

// Channel is the process-wide handle over one Driver.
type Channel struct {
	mu     sync.Mutex
	driver Driver
	open   bool
	closed bool
	status Status
}

// Open initializes driver once and returns the owned channel. The channel is
// returned even when the driver reports a failure; the error is for logging.
func Open(driver Driver) (*Channel, error) {
	ch := &Channel{driver: driver}
	st := driver.Open()
	ch.status = st
	if st != StatusOK {
		observability.RecordTransportError(OpOpen, int(st))
		err := &Error{Op: OpOpen, Status: st}
		log.Warn().Err(err).Msg("transport.Open driver open failed")
		return ch, err
	}
	ch.open = true
	log.Info().Msg("transport.Open driver ready")
	return ch, nil
}

// Send transmits one frame and waits for the driver to return.
func (c *Channel) Send(f frame.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}

	start := time.Now()
	st := c.driver.Send(f.Len, f.Bytes[0], f.Bytes[1], f.Bytes[2])
	observability.RecordFrame(f.Opcode(), st == StatusOK, time.Since(start))
	if st != StatusOK {
		observability.RecordTransportError(OpSend, int(st))
		err := &Error{Op: OpSend, Status: st, Frame: f}
		log.Warn().Err(err).Msg("transport.Channel.Send failed")
		return err
	}
	log.Trace().Stringer("frame", f).Msg("transport.Channel.Send ok")
	return nil
}

// Close releases the driver. Later calls are no-ops.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.open = false
	st := c.driver.Close()
	if st != StatusOK {
		observability.RecordTransportError(OpClose, int(st))
		return &Error{Op: OpClose, Status: st}
	}
	log.Info().Msg("transport.Channel.Close driver released")
	return nil
}

// Ready reports whether the driver opened successfully and is not closed.
func (c *Channel) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// OpenStatus returns the status the driver reported at open.
func (c *Channel) OpenStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}
