package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/rcxctl/internal/relay"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rcxctl.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "cmd", "rcxctl", "ex.config.toml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddr != ":2222" {
		t.Fatalf("unexpected listen addr: %q", cfg.ListenAddr)
	}
	if cfg.Driver != relay.DriverSerial {
		t.Fatalf("unexpected driver: %q", cfg.Driver)
	}
	if cfg.SerialPort != "/dev/ttyUSB0" || cfg.SerialBaud != 2400 {
		t.Fatalf("unexpected serial settings: %q %d", cfg.SerialPort, cfg.SerialBaud)
	}
	if cfg.AdminListenAddr != "127.0.0.1:7020" {
		t.Fatalf("unexpected admin listen: %q", cfg.AdminListenAddr)
	}
	if !cfg.ExitAfterDisconnect {
		t.Fatalf("expected exit after disconnect")
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, "driver = \"stub\"\n"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := relay.DefaultServiceConfig()
	want.Driver = relay.DriverStub
	if cfg != want {
		t.Fatalf("unexpected config:\n got %+v\nwant %+v", cfg, want)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
listen_addr = " 127.0.0.1:4000 "
driver = "STUB"
serial_port = "/dev/ttyS1"
serial_baud = 4800
admin_listen_addr = ""
exit_after_disconnect = false
`))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:4000" {
		t.Fatalf("unexpected listen addr: %q", cfg.ListenAddr)
	}
	if cfg.Driver != relay.DriverStub {
		t.Fatalf("unexpected driver: %q", cfg.Driver)
	}
	if cfg.SerialPort != "/dev/ttyS1" || cfg.SerialBaud != 4800 {
		t.Fatalf("unexpected serial settings: %q %d", cfg.SerialPort, cfg.SerialBaud)
	}
	if cfg.AdminListenAddr != "" {
		t.Fatalf("expected admin disabled, got %q", cfg.AdminListenAddr)
	}
	if cfg.ExitAfterDisconnect {
		t.Fatalf("expected exit after disconnect disabled")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"driver":      "driver = \"lirc\"\n",
		"baud":        "serial_baud = 0\n",
		"listen_addr": "listen_addr = \"\"\n",
		"serial_port": "driver = \"serial\"\nserial_port = \" \"\n",
		"unknown key": "listen_port = 2222\n",
		"syntax":      "listen_addr = \n",
		"type":        "exit_after_disconnect = \"yes\"\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	_, err := Load(writeConfig(t, "driver = \"lirc\"\n"))
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, relay.ErrUnknownDriver) {
		t.Fatalf("expected ErrInvalidConfig wrapping ErrUnknownDriver, got %v", err)
	}
	_, err = Load(writeConfig(t, "listen_addr = \"\"\n"))
	if !errors.Is(err, relay.ErrListenAddrMissing) {
		t.Fatalf("expected ErrListenAddrMissing, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestTemplateLoadsAsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rcxctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg != relay.DefaultServiceConfig() {
		t.Fatalf("template does not round-trip defaults: %+v", cfg)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if !strings.HasPrefix(string(raw), "# rcxctl config") || !strings.Contains(string(raw), "listen_addr") {
		t.Fatalf("unexpected template:\n%s", raw)
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	path := writeConfig(t, "driver = \"stub\"\n")
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected existing config to be kept")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("load overwritten template: %v", err)
	}
}
