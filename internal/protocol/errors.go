package protocol

import "errors"

var (
	ErrNotRCX         = errors.New("protocol: not an rcx packet")
	ErrBufferTooSmall = errors.New("protocol: buffer too small")
	ErrTruncated      = errors.New("protocol: truncated data")
)
