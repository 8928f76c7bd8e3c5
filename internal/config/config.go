package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for icut.
type Config struct {
	LibraryID  string           `toml:"library_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Database   DatabaseConfig   `toml:"database"`
	Snapshots  []SnapshotConfig `toml:"snapshots"`
	Encryption EncryptionConfig `toml:"encryption"`
	Filesystem FilesystemConfig `toml:"filesystem"`
	Project    ProjectConfig    `toml:"project"`
	Timeline   TimelineConfig   `toml:"timeline"`
	Media      MediaConfig      `toml:"media"`
}

// DatabaseConfig selects the library backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// SnapshotConfig describes a store that receives library snapshots.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type SnapshotConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", or "s3"
	Name string `toml:"name"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"` // S3-compatible services; enables path-style addressing
	// Static credentials. When empty the default AWS credential chain is used.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used to encrypt snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age", or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// ProjectConfig holds the settings given to projects created without them.
type ProjectConfig struct {
	FrameRate int64 `toml:"frame_rate"`
	Width     int64 `toml:"width"`
	Height    int64 `toml:"height"`
}

// TimelineConfig holds timeline placement settings.
type TimelineConfig struct {
	StillDurationMs int64 `toml:"still_duration_ms"`
}

// MediaConfig controls media probing.
type MediaConfig struct {
	FFprobePath  string   `toml:"ffprobe_path"` // empty means look up "ffprobe" on PATH
	ProbeTimeout Duration `toml:"probe_timeout"`
}

// Duration is a time.Duration written as a string such as "10s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Defaults used by NewConfig and ApplyDefaults.
const (
	DefaultFrameRate       = 30
	DefaultWidth           = 1920
	DefaultHeight          = 1080
	DefaultStillDurationMs = 5000
	DefaultProbeTimeout    = 10 * time.Second
)

// NewConfig creates a new Config with the provided values and default paths
// under baseDir.
func NewConfig(libraryID, baseDir string) *Config {
	cfg := &Config{
		LibraryID: libraryID,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Snapshots: []SnapshotConfig{
			{Type: "filesystem", Name: "local", FSRoot: filepath.Join(baseDir, "snapshots")},
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "icut.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "icut.key"),
		},
		Filesystem: FilesystemConfig{
			Ignore: []string{".DS_Store", "*.tmp"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued settings, so config files written by
// older versions keep working.
func (c *Config) ApplyDefaults() {
	if c.Project.FrameRate == 0 {
		c.Project.FrameRate = DefaultFrameRate
	}
	if c.Project.Width == 0 || c.Project.Height == 0 {
		c.Project.Width = DefaultWidth
		c.Project.Height = DefaultHeight
	}
	if c.Timeline.StillDurationMs == 0 {
		c.Timeline.StillDurationMs = DefaultStillDurationMs
	}
	if c.Media.ProbeTimeout.Duration == 0 {
		c.Media.ProbeTimeout.Duration = DefaultProbeTimeout
	}
	if c.Encryption.Type == "" {
		c.Encryption.Type = "none"
	}
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.LibraryID == "" {
		return fmt.Errorf("library_id must be set")
	}
	if c.Project.FrameRate < 0 || c.Project.Width < 0 || c.Project.Height < 0 {
		return fmt.Errorf("project defaults must be positive")
	}
	if c.Timeline.StillDurationMs < 0 {
		return fmt.Errorf("timeline.still_duration_ms must be positive, got %d", c.Timeline.StillDurationMs)
	}
	names := make(map[string]bool, len(c.Snapshots))
	for _, s := range c.Snapshots {
		if s.Name == "" {
			return fmt.Errorf("snapshot store of type %q has no name", s.Type)
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate snapshot store name %q", s.Name)
		}
		names[s.Name] = true
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader and fills defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path, creating parent
// directories.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes a new config file at path. It refuses to overwrite an
// existing one.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
