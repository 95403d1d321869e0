package frame

import (
	"errors"
	"fmt"
)

// Opcodes carried in byte 0.
const (
	OpAlive      byte = 0x10
	OpMotorPower byte = 0x13
	OpMotorOnOff byte = 0x21
)

// Motor selectors for byte 1.
const (
	MotorLeft  byte = 0x00
	MotorRight byte = 0x20
)

// Motion selectors for byte 1, or'ed with a motor selector.
const (
	MotionBackward byte = 0x00
	MotionStop     byte = 0x04
	MotionForward  byte = 0x08
)

const (
	MinLen = 1
	MaxLen = 3
)

var ErrInvalidLength = errors.New("frame: invalid length")

// Frame is one transport transmission. Bytes beyond Len are always zero.
type Frame struct {
	Len   int
	Bytes [MaxLen]byte
}

// Alive builds the single-byte keepalive ping.
func Alive() Frame {
	return Frame{Len: 1, Bytes: [MaxLen]byte{OpAlive}}
}

// Motor builds a two-byte MOTOR_ONOFF frame for one motor.
func Motor(motor, motion byte) Frame {
	return Frame{Len: 2, Bytes: [MaxLen]byte{OpMotorOnOff, motor | motion}}
}

// WithSelector returns a copy of f with only byte 1 replaced.
func (f Frame) WithSelector(sel byte) Frame {
	f.Bytes[1] = sel
	return f
}

func (f Frame) Opcode() byte {
	return f.Bytes[0]
}

func (f Frame) Selector() byte {
	return f.Bytes[1]
}

// Data returns the transmitted bytes.
func (f Frame) Data() []byte {
	out := make([]byte, f.Len)
	copy(out, f.Bytes[:f.Len])
	return out
}

func (f Frame) Validate() error {
	if f.Len < MinLen || f.Len > MaxLen {
		return fmt.Errorf("%w: %d", ErrInvalidLength, f.Len)
	}
	return nil
}

func (f Frame) String() string {
	return fmt.Sprintf("len=%d [%02x %02x %02x]", f.Len, f.Bytes[0], f.Bytes[1], f.Bytes[2])
}
