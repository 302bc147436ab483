package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avenal/go-llm2pdf/internal/fileutil"
	"github.com/avenal/go-llm2pdf/internal/yamlutil"
)

// Config errors.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config file")
)

// configDirName is the subdirectory under the user config dir searched for
// named configs.
const configDirName = "llm2pdf"

// Config holds file-based defaults. Command-line flags take precedence over
// config values.
type Config struct {
	Output         string `yaml:"output"`
	Workers        int    `yaml:"workers"`
	Timeout        string `yaml:"timeout"`
	RenderEndpoint string `yaml:"render_endpoint"`
	RenderWait     string `yaml:"render_wait"`
	KeepImages     bool   `yaml:"keep_images"`
}

// loadConfig reads and parses the config given as a bare name or a path.
// A bare name is resolved against the working directory, then the user
// config directory. An empty argument returns an empty config.
func loadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return &Config{}, nil
	}

	path, err := resolveConfigPath(nameOrPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigNotFound, path, err)
	}

	cfg := &Config{}
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return cfg, nil
}

// resolveConfigPath turns a name or path into an existing file path.
func resolveConfigPath(nameOrPath string) (string, error) {
	if fileutil.IsFilePath(nameOrPath) {
		if fileutil.FileExists(nameOrPath) {
			return nameOrPath, nil
		}
		return "", fmt.Errorf("%w: %s", ErrConfigNotFound, nameOrPath)
	}

	for _, candidate := range configCandidates(nameOrPath) {
		if fileutil.FileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfigNotFound, nameOrPath)
}

// configCandidates lists search locations for a bare config name, in order.
func configCandidates(name string) []string {
	candidates := []string{name, name + ".yaml", name + ".yml"}

	if userDir, err := os.UserConfigDir(); err == nil {
		base := filepath.Join(userDir, configDirName)
		candidates = append(candidates,
			filepath.Join(base, name),
			filepath.Join(base, name+".yaml"),
			filepath.Join(base, name+".yml"),
		)
	}
	return candidates
}

// mergeConfig overlays config defaults onto flags. Explicitly set flags win;
// only zero-valued flags inherit from the config.
func mergeConfig(flags *cliFlags, cfg *Config) {
	if flags.output == "" {
		flags.output = cfg.Output
	}
	if flags.workers == 0 {
		flags.workers = cfg.Workers
	}
	if flags.timeout == "" {
		flags.timeout = cfg.Timeout
	}
	if flags.renderEndpoint == "" {
		flags.renderEndpoint = cfg.RenderEndpoint
	}
	if flags.renderWait == "" {
		flags.renderWait = cfg.RenderWait
	}
	if cfg.KeepImages {
		flags.keepImages = true
	}
}
