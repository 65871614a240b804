// Package botconfig loads the configuration file shape used by status
// bots built on top of this library: a notification token, a server
// address to poll, and the command prefix the bot listens for. It only
// loads and validates the file; dispatching to any particular chat
// platform is left to the caller.
package botconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk TOML shape: a bot token, the Minecraft server
// address to poll, and the command name players type to trigger a status
// check.
type Config struct {
	Token   string `toml:"token"`
	Address string `toml:"address"`
	Command string `toml:"command"`
}

// Load reads and validates a config.toml file at path.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load bot config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every required field of Config is present.
func (c Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("bot config: token is required")
	}
	if c.Address == "" {
		return fmt.Errorf("bot config: address is required")
	}
	if c.Command == "" {
		return fmt.Errorf("bot config: command is required")
	}
	return nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
