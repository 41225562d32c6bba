package book

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/prosegen/narrate/pkg/errors"
)

// Config carries the book's front matter. All fields are optional; anything
// left empty falls back to the embedded defaults.
type Config struct {
	Title       string `toml:"title"`
	Author      string `toml:"author"`
	LicenseFile string `toml:"license_file"`
	PrefaceFile string `toml:"preface_file"`
}

// DefaultConfig returns the configuration used when no book.toml is given.
func DefaultConfig() Config {
	return Config{
		Title:  "The Program Which Is Described By This Book",
		Author: "narrate",
	}
}

// LoadConfig reads a TOML configuration file and fills unset fields with
// defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to read config: %s", path)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to parse config: %s", path)
	}
	defaults := DefaultConfig()
	if cfg.Title == "" {
		cfg.Title = defaults.Title
	}
	if cfg.Author == "" {
		cfg.Author = defaults.Author
	}
	return cfg, nil
}

// license returns the license text for the book, reading the configured
// file or falling back to the embedded notice.
func (c Config) license() (string, error) {
	if c.LicenseFile == "" {
		return defaultLicense, nil
	}
	data, err := os.ReadFile(c.LicenseFile)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "license file not found: %s", c.LicenseFile)
	}
	return string(data), nil
}

// preface returns the preface text, reading the configured file or falling
// back to the embedded default.
func (c Config) preface() (string, error) {
	if c.PrefaceFile == "" {
		return defaultPreface, nil
	}
	data, err := os.ReadFile(c.PrefaceFile)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "preface file not found: %s", c.PrefaceFile)
	}
	return string(data), nil
}
