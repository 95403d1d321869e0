// Package command defines the single-byte command codes sent by controller clients.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownCommand = errors.New("command: unknown command")

// Code is one command byte as received on the wire.
type Code byte

const (
	Alive    Code = 0x10
	Forward  Code = 0x21
	Left     Code = 0x23
	Stop     Code = 0x24
	Right    Code = 0x25
	Backward Code = 0x27
)

// NameUnrecognized is the label used for bytes outside the command set.
const NameUnrecognized = "unrecognized"

var names = map[Code]string{
	Stop:     "stop",
	Forward:  "forward",
	Backward: "backward",
	Left:     "left",
	Right:    "right",
	Alive:    "alive",
}

// All returns the recognized codes in wire-value order.
func All() []Code {
	return []Code{Alive, Forward, Left, Stop, Right, Backward}
}

func (c Code) Recognized() bool {
	_, ok := names[c]
	return ok
}

// Name returns the lower-case command name, or "unrecognized".
func (c Code) Name() string {
	if name, ok := names[c]; ok {
		return name
	}
	return NameUnrecognized
}

func (c Code) String() string {
	return fmt.Sprintf("%s(0x%02x)", c.Name(), byte(c))
}

// Parse resolves a command name ("forward") or a byte literal ("0x21", "33").
// Byte literals are accepted even when unrecognized so clients can exercise
// the fail-safe path.
func Parse(raw string) (Code, error) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnknownCommand)
	}
	for code, name := range names {
		if name == token {
			return code, nil
		}
	}
	v, err := strconv.ParseUint(token, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, raw)
	}
	return Code(v), nil
}
