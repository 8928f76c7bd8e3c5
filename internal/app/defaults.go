package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths are the locations icut uses when the config does not say otherwise.
type Paths struct {
	ConfigPath string // ICUT_CONFIG_PATH, or ~/.config/icut.toml
	BaseDir    string // ICUT_HOME, or ~/.local/share/icut
	LogDir     string
}

// DefaultPaths resolves Paths from the environment and the home directory.
func DefaultPaths() (Paths, error) {
	configPath, err := fromEnvOrHome("ICUT_CONFIG_PATH", ".config", "icut.toml")
	if err != nil {
		return Paths{}, err
	}
	baseDir, err := fromEnvOrHome("ICUT_HOME", ".local", "share", "icut")
	if err != nil {
		return Paths{}, err
	}
	return Paths{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

func fromEnvOrHome(env string, rel ...string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory (set %s): %w", env, err)
	}
	return filepath.Join(append([]string{home}, rel...)...), nil
}

// LogLevel reads ICUT_LOG_LEVEL (debug, info, warn, error). Unset or
// unparsable values mean info.
func LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("ICUT_LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return level
}
