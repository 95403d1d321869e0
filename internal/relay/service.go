package relay

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/danmuck/rcxctl/internal/encoder"
	"github.com/danmuck/rcxctl/internal/listener"
	"github.com/danmuck/rcxctl/internal/transport"
	"github.com/danmuck/rcxctl/internal/transport/serial"
	"github.com/danmuck/rcxctl/internal/transport/stub"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownDriver     = errors.New("relay: unknown transport driver")
	ErrListenAddrMissing = errors.New("relay: listen address required")
)

// DriverKind selects the transport driver behind the channel.
type DriverKind string

const (
	DriverSerial DriverKind = "serial"
	DriverStub   DriverKind = "stub"
)

// ServiceConfig configures one relay process.
type ServiceConfig struct {
	ListenAddr          string
	Driver              DriverKind
	SerialPort          string
	SerialBaud          uint
	AdminListenAddr     string
	ExitAfterDisconnect bool
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ListenAddr:          ":2222",
		Driver:              DriverSerial,
		SerialPort:          "/dev/ttyUSB0",
		SerialBaud:          serial.DefaultBaudRate,
		AdminListenAddr:     "",
		ExitAfterDisconnect: true,
	}
}

// Service runs the relay path: listener -> encoder -> transport channel.
type Service struct {
	cfg       ServiceConfig
	listener  *listener.Listener
	newDriver func(ServiceConfig) (transport.Driver, error)
	started   time.Time

	mu        sync.RWMutex
	channel   *transport.Channel
	adminAddr string
}

func NewService() *Service {
	return NewServiceWithConfig(DefaultServiceConfig())
}

func NewServiceWithConfig(cfg ServiceConfig) *Service {
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.AdminListenAddr = strings.TrimSpace(cfg.AdminListenAddr)
	if strings.TrimSpace(string(cfg.Driver)) == "" {
		cfg.Driver = DriverSerial
	}
	if cfg.SerialBaud == 0 {
		cfg.SerialBaud = serial.DefaultBaudRate
	}
	return &Service{
		cfg:       cfg,
		listener:  listener.New(),
		newDriver: buildDriver,
		started:   time.Now(),
	}
}

func (s *Service) Config() ServiceConfig {
	return s.cfg
}

// Listener exposes the command listener for status reads.
func (s *Service) Listener() *listener.Listener {
	return s.listener
}

// Run blocks until the client session ends or the process is signalled.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.RunContext(ctx)
}

// RunContext is Run with caller-owned cancellation. Setup failures (unknown
// driver, admin or relay bind, accept) are returned; a finished session and
// cancellation return nil.
func (s *Service) RunContext(ctx context.Context) error {
	if s.cfg.ListenAddr == "" {
		return ErrListenAddrMissing
	}
	driver, err := s.newDriver(s.cfg)
	if err != nil {
		return err
	}

	ch, err := transport.Open(driver)
	if err != nil {
		log.Warn().Err(err).Str("driver", string(s.cfg.Driver)).Msg("relay.Service.RunContext transport unavailable, continuing")
	}
	s.mu.Lock()
	s.channel = ch
	s.mu.Unlock()
	defer func() {
		if err := ch.Close(); err != nil {
			log.Warn().Err(err).Msg("relay.Service.RunContext transport close failed")
		}
	}()

	enc := encoder.New(ch, nil)

	if s.cfg.AdminListenAddr != "" {
		shutdown, err := s.startAdmin(s.cfg.AdminListenAddr)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	if err := s.listener.Start(s.cfg.ListenAddr); err != nil {
		return err
	}
	stopWatch := context.AfterFunc(ctx, func() {
		log.Info().Msg("relay.Service.RunContext shutdown requested")
		_ = s.listener.Close()
	})
	defer stopWatch()
	defer s.listener.Close()

	if err := s.listener.AcceptOne(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	processed := s.listener.ReadLoop(enc)
	log.Info().
		Uint64("commands", processed).
		Bool("exit_after_disconnect", s.cfg.ExitAfterDisconnect).
		Msg("relay.Service.RunContext session ended")

	if ctx.Err() != nil || s.cfg.ExitAfterDisconnect {
		return nil
	}
	<-ctx.Done()
	log.Info().Msg("relay.Service.RunContext shutdown")
	return nil
}

// Status is the admin view of the relay.
type Status struct {
	Listener        listener.Status `json:"listener"`
	Driver          DriverKind      `json:"driver"`
	TransportReady  bool            `json:"transport_ready"`
	TransportStatus string          `json:"transport_status"`
	Uptime          string          `json:"uptime"`
}

func (s *Service) Status() Status {
	s.mu.RLock()
	ch := s.channel
	s.mu.RUnlock()

	out := Status{
		Listener:        s.listener.Status(),
		Driver:          s.cfg.Driver,
		TransportStatus: "uninitialized",
		Uptime:          time.Since(s.started).String(),
	}
	if ch != nil {
		out.TransportReady = ch.Ready()
		out.TransportStatus = ch.OpenStatus().String()
	}
	return out
}

func buildDriver(cfg ServiceConfig) (transport.Driver, error) {
	switch cfg.Driver {
	case DriverStub:
		return stub.New(), nil
	case DriverSerial:
		return serial.New(serial.Config{PortName: cfg.SerialPort, BaudRate: cfg.SerialBaud}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
