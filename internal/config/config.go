// Package config loads and renders the rcxctl TOML file.
//
// Every key is optional; a key that is absent keeps its value from
// relay.DefaultServiceConfig. Unknown keys are rejected.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/rcxctl/internal/relay"
)

var ErrInvalidConfig = errors.New("config: invalid value")

// File is the on-disk shape of rcxctl.toml.
type File struct {
	ListenAddr          string `toml:"listen_addr"`
	Driver              string `toml:"driver"`
	SerialPort          string `toml:"serial_port"`
	SerialBaud          int64  `toml:"serial_baud"`
	AdminListenAddr     string `toml:"admin_listen_addr"`
	ExitAfterDisconnect bool   `toml:"exit_after_disconnect"`
}

// FromService renders cfg in file form.
func FromService(cfg relay.ServiceConfig) File {
	return File{
		ListenAddr:          cfg.ListenAddr,
		Driver:              string(cfg.Driver),
		SerialPort:          cfg.SerialPort,
		SerialBaud:          int64(cfg.SerialBaud),
		AdminListenAddr:     cfg.AdminListenAddr,
		ExitAfterDisconnect: cfg.ExitAfterDisconnect,
	}
}

func Load(path string) (relay.ServiceConfig, error) {
	cfg := relay.DefaultServiceConfig()

	var raw File
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return relay.ServiceConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return relay.ServiceConfig{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}

	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}

	if meta.IsDefined("driver") {
		cfg.Driver = relay.DriverKind(strings.ToLower(strings.TrimSpace(raw.Driver)))
	}

	if meta.IsDefined("serial_port") {
		cfg.SerialPort = strings.TrimSpace(raw.SerialPort)
	}

	if meta.IsDefined("serial_baud") {
		if raw.SerialBaud <= 0 {
			return relay.ServiceConfig{}, fmt.Errorf("%w: serial_baud must be positive, got %d", ErrInvalidConfig, raw.SerialBaud)
		}
		cfg.SerialBaud = uint(raw.SerialBaud)
	}

	if meta.IsDefined("admin_listen_addr") {
		cfg.AdminListenAddr = strings.TrimSpace(raw.AdminListenAddr)
	}

	if meta.IsDefined("exit_after_disconnect") {
		cfg.ExitAfterDisconnect = raw.ExitAfterDisconnect
	}

	if err := Validate(cfg); err != nil {
		return relay.ServiceConfig{}, fmt.Errorf("%w (%s)", err, path)
	}
	return cfg, nil
}

func Validate(cfg relay.ServiceConfig) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, relay.ErrListenAddrMissing)
	}
	switch cfg.Driver {
	case relay.DriverSerial:
		if strings.TrimSpace(cfg.SerialPort) == "" {
			return fmt.Errorf("%w: serial_port required for driver %q", ErrInvalidConfig, cfg.Driver)
		}
	case relay.DriverStub:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, relay.ErrUnknownDriver, cfg.Driver)
	}
	return nil
}
