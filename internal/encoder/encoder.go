// Package encoder translates command codes into RCX motor frames and sends
// them, in order, over a transport channel.
package encoder

import (
	"errors"

	"github.com/danmuck/rcxctl/internal/command"
	"github.com/danmuck/rcxctl/internal/observability"
	"github.com/danmuck/rcxctl/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

// Sender is the transmit side of a transport channel.
type Sender interface {
	Send(f frame.Frame) error
}

// Reporter receives diagnostics about command bytes outside the command set.
type Reporter interface {
	Unrecognized(code command.Code)
}

// LogReporter reports unrecognized codes through the process logger.
type LogReporter struct{}

func (LogReporter) Unrecognized(code command.Code) {
	log.Warn().
		Stringer("code", code).
		Msg("encoder.Encoder.Encode unrecognized command, sending stop")
}

// Encoder holds no state between calls.
type Encoder struct {
	out      Sender
	reporter Reporter
}

func New(out Sender, reporter Reporter) *Encoder {
	if reporter == nil {
		reporter = LogReporter{}
	}
	return &Encoder{out: out, reporter: reporter}
}

// motion is the per-motor selector pair for one motor command.
type motion struct {
	left  byte
	right byte
}

var motions = map[command.Code]motion{
	command.Stop:     {left: frame.MotionStop, right: frame.MotionStop},
	command.Forward:  {left: frame.MotionForward, right: frame.MotionForward},
	command.Backward: {left: frame.MotionBackward, right: frame.MotionBackward},
	command.Left:     {left: frame.MotionStop, right: frame.MotionForward},
	command.Right:    {left: frame.MotionForward, right: frame.MotionStop},
}

// Plan returns the frames for code in transmission order. Unrecognized codes
// map to the stop sequence.
func Plan(code command.Code) []frame.Frame {
	if code == command.Alive {
		return []frame.Frame{frame.Alive()}
	}
	m, ok := motions[code]
	if !ok {
		m = motions[command.Stop]
	}
	first := frame.Motor(frame.MotorLeft, m.left)
	second := first.WithSelector(frame.MotorRight | m.right)
	return []frame.Frame{first, second}
}

// Encode sends every frame planned for code, waiting for each send to return.
// A failed send is not retried and does not stop later frames; all failures
// are returned joined.
func (e *Encoder) Encode(code command.Code) error {
	if !code.Recognized() {
		e.reporter.Unrecognized(code)
	}
	observability.RecordCommand(code.Name())

	var errs []error
	for _, f := range Plan(code) {
		if err := e.out.Send(f); err != nil {
			errs = append(errs, err)
		}
	}
	log.Debug().Stringer("code", code).Int("failed_frames", len(errs)).Msg("encoder.Encoder.Encode")
	return errors.Join(errs...)
}
