// internal/config/config.go
//
// This package handles configuration and the .partials directory structure.
// Every project that inspects partials documents gets a .partials/ folder
// created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// PartialsDir is the name of the directory we create in each project
	PartialsDir = ".partials"

	// EnvLogLevel overrides log.level when set.
	EnvLogLevel = "PARTIALS_LOG_LEVEL"

	defaultDocumentsDir = "documents"
	defaultWorkers      = 4
	defaultSumTolerance = 1e-6
)

const defaultProjectConfigYAML = `# partials project configuration
version: 1

log:
  # debug, info, warn or error
  level: info
  # text or json
  format: text
  # also append to .partials/logs/partials.log
  file: true

documents:
  # relative to the .partials directory
  dir: documents
  # how many files are decoded in parallel when scanning a directory
  workers: 4

report:
  # vectors whose sum is further than this from 1 are flagged (never rejected)
  sum_tolerance: 0.000001
`

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   bool   `yaml:"file"`
}

// DocumentsConfig controls where documents are discovered.
type DocumentsConfig struct {
	Dir     string `yaml:"dir"`
	Workers int    `yaml:"workers"`
}

// ReportConfig tunes the summary output.
type ReportConfig struct {
	SumTolerance float64 `yaml:"sum_tolerance"`
}

// ProjectConfig models .partials/config.yaml.
type ProjectConfig struct {
	Version   int             `yaml:"version"`
	Log       LogConfig       `yaml:"log"`
	Documents DocumentsConfig `yaml:"documents"`
	Report    ReportConfig    `yaml:"report"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory the CLI was pointed at
	ProjectDir string

	// PartialsProjectDir is ProjectDir/.partials
	PartialsProjectDir string

	Project ProjectConfig
}

// InitDir creates the .partials directory structure in the given project
// directory and writes a default config.yaml if none exists.
//
// Structure created:
// .partials/
// ├── config.yaml
// ├── logs/        <- partials.log
// └── documents/   <- default document scan location
func InitDir(projectDir string) error {
	root := filepath.Join(projectDir, PartialsDir)
	dirs := []string{
		filepath.Join(root, "logs"),
		filepath.Join(root, defaultDocumentsDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: ensure %s: %w", dir, err)
		}
	}
	if err := ensureProjectConfig(filepath.Join(root, "config.yaml")); err != nil {
		return fmt.Errorf("config: write default config: %w", err)
	}
	return nil
}

// NewConfig creates a new Config instance populated with project settings.
// A missing config file yields the defaults.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:         projectDir,
		PartialsProjectDir: filepath.Join(projectDir, PartialsDir),
		Project:            defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.Project.Log.Level = strings.ToLower(level)
		if err := cfg.Project.validate(); err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvLogLevel, err)
		}
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.PartialsProjectDir, "logs")
}

// LogFilePath returns the path of the append-only log file.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.LogsDir(), "partials.log")
}

// DocumentsDir returns the resolved document scan directory.
func (c *Config) DocumentsDir() string {
	return c.Project.Documents.Dir
}

// Workers returns the parallel decode limit for directory scans.
func (c *Config) Workers() int {
	return c.Project.Documents.Workers
}

// SumTolerance returns the report tolerance for vector sums.
func (c *Config) SumTolerance() float64 {
	return c.Project.Report.SumTolerance
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.PartialsProjectDir, "config.yaml")
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Project.normalize(c.PartialsProjectDir)
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.PartialsProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   true,
		},
		Documents: DocumentsConfig{
			Dir:     defaultDocumentsDir,
			Workers: defaultWorkers,
		},
		Report: ReportConfig{
			SumTolerance: defaultSumTolerance,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Documents.Workers <= 0 {
		pc.Documents.Workers = defaultWorkers
	}
	if pc.Report.SumTolerance <= 0 {
		pc.Report.SumTolerance = defaultSumTolerance
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
	if pc.Log.Level == "" {
		pc.Log.Level = "info"
	}
	pc.Log.Format = strings.ToLower(strings.TrimSpace(pc.Log.Format))
	if pc.Log.Format == "" {
		pc.Log.Format = "text"
	}
	if strings.TrimSpace(pc.Documents.Dir) == "" {
		pc.Documents.Dir = defaultDocumentsDir
	}
	pc.Documents.Dir = resolvePath(base, pc.Documents.Dir)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", pc.Log.Level)
	}
	switch pc.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json' (got %q)", pc.Log.Format)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}
