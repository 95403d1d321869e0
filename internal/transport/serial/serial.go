// Package serial drives a LEGO infrared tower attached to a serial port.
// Every frame is written as one RCX packet.
package serial

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"sync"

	goserial "github.com/jacobsa/go-serial/serial"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/rcxctl/internal/protocol/frame"
	"github.com/danmuck/rcxctl/internal/protocol/packet"
	"github.com/danmuck/rcxctl/internal/transport"
)

// The tower link runs at 2400 baud, 8 data bits, odd parity, 1 stop bit.
const (
	DefaultBaudRate = 2400
	dataBits        = 8
	stopBits        = 1
)

// Config selects the serial device.
type Config struct {
	PortName string
	BaudRate uint
}

// OpenFunc opens the underlying port. Tests substitute an in-memory port.
type OpenFunc func(goserial.OpenOptions) (io.ReadWriteCloser, error)

// Driver implements transport.Driver over a serial IR tower.
type Driver struct {
	mu   sync.Mutex
	cfg  Config
	open OpenFunc
	port io.ReadWriteCloser
}

var _ transport.Driver = (*Driver)(nil)

func New(cfg Config) *Driver {
	return NewWithOpener(cfg, goserial.Open)
}

func NewWithOpener(cfg Config, open OpenFunc) *Driver {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	return &Driver{cfg: cfg, open: open}
}

// Options returns the port options used by Open.
func (d *Driver) Options() goserial.OpenOptions {
	return goserial.OpenOptions{
		PortName:        d.cfg.PortName,
		BaudRate:        d.cfg.BaudRate,
		DataBits:        dataBits,
		StopBits:        stopBits,
		ParityMode:      goserial.PARITY_ODD,
		MinimumReadSize: 1,
	}
}

func (d *Driver) Open() transport.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.port != nil {
		return transport.StatusDeviceIsOpen
	}
	if strings.TrimSpace(d.cfg.PortName) == "" {
		return transport.StatusDeviceNotFound
	}
	port, err := d.open(d.Options())
	if err != nil {
		st := openStatus(err)
		log.Error().Err(err).Str("port", d.cfg.PortName).Int("status", int(st)).Msg("transport.serial open failed")
		return st
	}
	d.port = port
	log.Info().Str("port", d.cfg.PortName).Uint("baud", d.cfg.BaudRate).Msg("transport.serial open")
	return transport.StatusOK
}

func (d *Driver) Send(length int, b0, b1, b2 byte) transport.Status {
	if length < frame.MinLen || length > frame.MaxLen {
		return transport.StatusInvalidArgument
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.port == nil {
		return transport.StatusDeviceNotOpen
	}
	data := []byte{b0, b1, b2}[:length]
	if _, err := d.port.Write(packet.Encode(data)); err != nil {
		log.Error().Err(err).Str("port", d.cfg.PortName).Msg("transport.serial write failed")
		return transport.StatusDeviceError
	}
	return transport.StatusOK
}

func (d *Driver) Close() transport.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.port == nil {
		return transport.StatusOK
	}
	err := d.port.Close()
	d.port = nil
	if err != nil {
		log.Warn().Err(err).Str("port", d.cfg.PortName).Msg("transport.serial close failed")
		return transport.StatusDeviceError
	}
	return transport.StatusOK
}

func openStatus(err error) transport.Status {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return transport.StatusDeviceNotFound
	case errors.Is(err, fs.ErrPermission):
		return transport.StatusDeviceReadOnly
	default:
		return transport.StatusDeviceError
	}
}
