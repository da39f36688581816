// Package config reads the settings file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/fs"
	"github.com/akeil/coursedoc/internal/logging"
)

// Config holds all settings. Credentials are never stored here,
// they come from the environment.
type Config struct {
	// OutputDir is where exported documents are written.
	OutputDir string `toml:"output_dir"`
	// ProjectDir holds the project files.
	ProjectDir string `toml:"project_dir"`
	// CacheDir keeps downscaled images. Caching is off if empty.
	CacheDir string  `toml:"cache_dir"`
	LogLevel string  `toml:"log_level"`
	Fonts    Fonts   `toml:"fonts"`
	Export   Export  `toml:"export"`
	Server   Server  `toml:"server"`
	Publish  Publish `toml:"publish"`
	Summary  Summary `toml:"summary"`
}

// Fonts are TrueType files for UTF-8 text in PDFs.
type Fonts struct {
	Regular string `toml:"regular"`
	Bold    string `toml:"bold"`
}

// Export settings.
type Export struct {
	MaxImageSide  int    `toml:"max_image_side"`
	Concurrency   int    `toml:"concurrency"`
	DecodeTimeout string `toml:"decode_timeout"`
	// OnError is "skip" or "abort".
	OnError      string `toml:"on_error"`
	FooterFormat string `toml:"footer_format"`
	Verify       bool   `toml:"verify"`
}

// Server settings.
type Server struct {
	Listen string `toml:"listen"`
	// MaxBodyMB limits the size of a request body.
	MaxBodyMB int `toml:"max_body_mb"`
}

// Publish settings. Documents are uploaded to the bucket if one is set.
type Publish struct {
	Bucket string `toml:"bucket"`
	Prefix string `toml:"prefix"`
}

// Summary settings.
type Summary struct {
	// Provider is "azure", "openai" or "gemini".
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	MaxRetries int    `toml:"max_retries"`
	EnvFile    string `toml:"env_file"`
}

// Default returns the settings used when there is no config file.
func Default() *Config {
	return &Config{
		OutputDir:  ".",
		ProjectDir: filepath.Join(DataDir(), "projects"),
		CacheDir:   CacheDir(),
		LogLevel:   "warning",
		Export: Export{
			MaxImageSide:  2480,
			Concurrency:   4,
			DecodeTimeout: "10s",
			OnError:       "skip",
			FooterFormat:  "Page %d of %d",
			Verify:        true,
		},
		Server: Server{
			Listen:    "localhost:8080",
			MaxBodyMB: 64,
		},
		Summary: Summary{
			Provider:   "azure",
			MaxRetries: 3,
			EnvFile:    ".env",
		},
	}
}

// Path is the default location of the config file.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path, or at the default location if path
// is empty. Values missing from the file keep their defaults; a missing
// file results in the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug("No config file at %q, using defaults", path)
		return cfg, nil
	} else if err != nil {
		return nil, err
	}

	err = toml.Unmarshal(data, cfg)
	if err != nil {
		return nil, coursedoc.NewConfigurationError("invalid config file %q: %v", path, err)
	}

	for _, p := range []*string{&cfg.OutputDir, &cfg.ProjectDir, &cfg.CacheDir, &cfg.Fonts.Regular, &cfg.Fonts.Bold, &cfg.Summary.EnvFile} {
		*p, err = ExpandPath(*p)
		if err != nil {
			return nil, err
		}
	}

	logging.Debug("Loaded config from %q", path)
	return cfg, cfg.Validate()
}

// Save writes the config file.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return fs.WriteFile(path, data, 0o644)
}

// Validate checks values that cannot be checked by the TOML decoder.
func (c *Config) Validate() error {
	_, err := c.DecodeTimeout()
	if err != nil {
		return err
	}
	switch c.Export.OnError {
	case "skip", "abort":
	default:
		return coursedoc.NewConfigurationError("export.on_error must be \"skip\" or \"abort\", found %q", c.Export.OnError)
	}
	if c.Export.Concurrency < 1 {
		return coursedoc.NewConfigurationError("export.concurrency must be positive")
	}
	return nil
}

// DecodeTimeout parses the image decode timeout.
func (c *Config) DecodeTimeout() (time.Duration, error) {
	if c.Export.DecodeTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Export.DecodeTimeout)
	if err != nil {
		return 0, coursedoc.NewConfigurationError("invalid export.decode_timeout %q", c.Export.DecodeTimeout)
	}
	return d, nil
}

// ExpandPath replaces a leading "~" with the home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}

	return path, nil
}
