package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/byxorna/stickies/pkg/db"
	"github.com/byxorna/stickies/pkg/runtime"
	"github.com/go-playground/validator"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when no --config is given
	DefaultPath = "~/.stickies.yaml"
)

var (
	// Default is the configuration used when there is no config file, and the
	// base every config file is laid over
	Default = Config{
		Directory:     "~/.stickies.d",
		Backend:       db.TypeFS,
		AutosaveDelay: Duration(400 * time.Millisecond),
		Notifications: true,
		Sidebar:       true,
		LogLevel:      "info",
	}
)

type Config struct {
	Directory string  `yaml:"directory" toml:"directory" validate:"required"`
	Backend   db.Type `yaml:"backend" toml:"backend" validate:"required,oneof=fs sqlite memory"`
	// Database is the sqlite file; defaults to stickies.db under the XDG data home
	Database string `yaml:"database,omitempty" toml:"database,omitempty" validate:""`
	// Remote is the address of a `stickies serve`; when set, the local backend is not opened
	Remote        string   `yaml:"remote,omitempty" toml:"remote,omitempty" validate:""`
	AutosaveDelay Duration `yaml:"autosaveDelay" toml:"autosaveDelay" validate:"min=0"`
	Notifications bool     `yaml:"notifications" toml:"notifications" validate:""`
	LogFile       string   `yaml:"logFile,omitempty" toml:"logFile,omitempty" validate:""`
	LogLevel      string   `yaml:"logLevel" toml:"logLevel" validate:"oneof=debug info warn error"`
	Sidebar       bool     `yaml:"sidebar" toml:"sidebar" validate:""`
}

// Duration is a time.Duration written as "400ms" in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func NewFromReader(r io.Reader) (*Config, error) {
	return decode(r, yaml.Unmarshal)
}

func NewFromTOMLReader(r io.Reader) (*Config, error) {
	return decode(r, toml.Unmarshal)
}

func decode(r io.Reader, unmarshal func([]byte, interface{}) error) (*Config, error) {
	c := Default

	bytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read Config: %w", err)
	}
	err = unmarshal(bytes, &c)
	if err != nil {
		return nil, fmt.Errorf("unable to unmarshal Config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(*c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	return nil
}

// Load reads the config file at path, choosing TOML for .toml files and YAML
// otherwise. A missing file yields Default.
func Load(path string) (*Config, error) {
	expandedPath, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(expandedPath)
	if errors.Is(err, os.ErrNotExist) {
		c := Default
		return &c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open config %s: %w", expandedPath, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(expandedPath), ".toml") {
		return NewFromTOMLReader(f)
	}
	return NewFromReader(f)
}

// DatabasePath resolves where the sqlite backend keeps its file.
func (c *Config) DatabasePath() (string, error) {
	if c.Database != "" {
		return homedir.Expand(c.Database)
	}
	return runtime.DataFile("stickies.db")
}

// LogPath resolves where the TUI writes its log.
func (c *Config) LogPath() (string, error) {
	if c.LogFile != "" {
		return homedir.Expand(c.LogFile)
	}
	return runtime.LogFile()
}
