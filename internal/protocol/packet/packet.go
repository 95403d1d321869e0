// Package packet wraps data bytes in the RCX infrared packet format:
// a 55 ff 00 header, each data byte followed by its complement, then the
// 8-bit sum of the data bytes followed by its complement.
package packet

import (
	"fmt"

	"github.com/danmuck/rcxctl/internal/protocol"
)

var header = [3]byte{0x55, 0xff, 0x00}

const overhead = len(header) + 2

// EncodedLen is the packet size for n data bytes.
func EncodedLen(n int) int {
	return 2*n + overhead
}

// Encode returns the RCX packet carrying data.
func Encode(data []byte) []byte {
	out := make([]byte, 0, EncodedLen(len(data)))
	out = append(out, header[:]...)
	var sum byte
	for _, b := range data {
		out = append(out, b, ^b)
		sum += b
	}
	return append(out, sum, ^sum)
}

// Decode validates an RCX packet and returns its data bytes. maxData bounds
// the number of data bytes accepted; zero means no bound.
func Decode(pkt []byte, maxData int) ([]byte, error) {
	if len(pkt) < overhead {
		return nil, fmt.Errorf("%w: %d bytes", protocol.ErrTruncated, len(pkt))
	}
	if (len(pkt)-overhead)%2 != 0 {
		return nil, fmt.Errorf("%w: odd body length %d", protocol.ErrNotRCX, len(pkt))
	}
	for i, b := range header {
		if pkt[i] != b {
			return nil, fmt.Errorf("%w: bad header", protocol.ErrNotRCX)
		}
	}

	n := (len(pkt) - overhead) / 2
	if maxData > 0 && n > maxData {
		return nil, fmt.Errorf("%w: %d data bytes, limit %d", protocol.ErrBufferTooSmall, n, maxData)
	}

	data := make([]byte, 0, n)
	var sum byte
	body := pkt[len(header) : len(pkt)-2]
	for i := 0; i < len(body); i += 2 {
		if body[i] != ^body[i+1] {
			return nil, fmt.Errorf("%w: bad complement at data byte %d", protocol.ErrNotRCX, i/2)
		}
		data = append(data, body[i])
		sum += body[i]
	}

	check := pkt[len(pkt)-2:]
	if check[0] != sum {
		return nil, fmt.Errorf("%w: checksum 0x%02x, want 0x%02x", protocol.ErrNotRCX, check[0], sum)
	}
	if check[0] != ^check[1] {
		return nil, fmt.Errorf("%w: bad checksum complement", protocol.ErrNotRCX)
	}
	return data, nil
}
