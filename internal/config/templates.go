package config

import (
	"fmt"
	"os"

	"github.com/danmuck/rcxctl/internal/relay"
	gotoml "github.com/pelletier/go-toml/v2"
)

const templateHeader = `# rcxctl config. Every key is optional.
# driver: "serial" drives a LEGO IR tower, "stub" records frames in memory.
# admin_listen_addr: empty disables /health, /status and /metrics.

`

// Template renders the built-in defaults as a config file.
func Template() (string, error) {
	body, err := gotoml.Marshal(FromService(relay.DefaultServiceConfig()))
	if err != nil {
		return "", fmt.Errorf("config template render failed: %w", err)
	}
	return templateHeader + string(body), nil
}

func WriteTemplate(path string, overwrite bool) error {
	template, err := Template()
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}
