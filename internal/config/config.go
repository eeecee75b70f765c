package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Dir is the per-workspace state directory.
const Dir = ".pandaskit"

// Config holds all pandaskit configuration.
//
// Profiles are layered: Default first, then Community or Commercial
// depending on the detected edition, then Override.
type Config struct {
	Default    Profile `yaml:"default"`
	Community  Profile `yaml:"community"`
	Commercial Profile `yaml:"commercial"`
	Override   Profile `yaml:"override"`

	Logging LoggingConfig `yaml:"logging"`

	secrets map[string]string
}

// Profile is one layer of per-project settings. Empty fields do not
// override lower layers.
type Profile struct {
	SourceDir  string `yaml:"source_dir,omitempty"`
	ConfDir    string `yaml:"conf_dir,omitempty"`
	TableDir   string `yaml:"table_dir,omitempty"`
	Language   string `yaml:"language,omitempty"`   // zh-cn, zh-tw; empty = ask
	Maintainer string `yaml:"maintainer,omitempty"` // nickname written into generated comments
	CheckGit   *bool  `yaml:"check_git,omitempty"`
}

// Settings is a fully resolved profile.
type Settings struct {
	SourceDir  string
	ConfDir    string
	TableDir   string
	Language   string
	Maintainer string
	CheckGit   bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	checkGit := true
	return &Config{
		Default: Profile{
			SourceDir:  "src",
			ConfDir:    "conf",
			TableDir:   filepath.Join("tools", "python", "db"),
			Maintainer: "Maintainer",
			CheckGit:   &checkGit,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Path returns the config file location for a workspace root.
func Path(root string) string {
	return filepath.Join(root, Dir, "config.yml")
}

// SecretsPath returns the secrets file location for a workspace root.
func SecretsPath(root string) string {
	return filepath.Join(root, Dir, ".secret.env")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	secretsPath := filepath.Join(filepath.Dir(path), ".secret.env")
	if err := cfg.LoadSecrets(secretsPath); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadForWorkspace loads <root>/.pandaskit/config.yml.
func LoadForWorkspace(root string) (*Config, error) {
	return Load(Path(root))
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadSecrets reads KEY=VALUE pairs from a dotenv file. A missing file is
// not an error.
func (c *Config) LoadSecrets(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read secrets: %w", err)
	}
	c.secrets = values
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PANDASKIT_LANGUAGE"); v != "" {
		c.Override.Language = v
	}
	if v := os.Getenv("PANDASKIT_MAINTAINER"); v != "" {
		c.Override.Maintainer = v
	}
	if v := os.Getenv("PANDASKIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PANDASKIT_DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		c.Logging.DebugMode = true
	}
}

// Resolve layers the profiles for the given edition and expands
// $SECRET{'NAME'} references.
func (c *Config) Resolve(commercial bool) Settings {
	p := Profile{}
	p.merge(c.Default)
	if commercial {
		p.merge(c.Commercial)
	} else {
		p.merge(c.Community)
	}
	p.merge(c.Override)

	s := Settings{
		SourceDir:  c.expand(p.SourceDir),
		ConfDir:    c.expand(p.ConfDir),
		TableDir:   c.expand(p.TableDir),
		Language:   c.expand(p.Language),
		Maintainer: c.expand(p.Maintainer),
	}
	if p.CheckGit != nil {
		s.CheckGit = *p.CheckGit
	}
	return s
}

func (p *Profile) merge(o Profile) {
	if o.SourceDir != "" {
		p.SourceDir = o.SourceDir
	}
	if o.ConfDir != "" {
		p.ConfDir = o.ConfDir
	}
	if o.TableDir != "" {
		p.TableDir = o.TableDir
	}
	if o.Language != "" {
		p.Language = o.Language
	}
	if o.Maintainer != "" {
		p.Maintainer = o.Maintainer
	}
	if o.CheckGit != nil {
		p.CheckGit = o.CheckGit
	}
}

var secretRef = regexp.MustCompile(`(?i)^\$SECRET\{'(.*?)'\}`)

// expand resolves a $SECRET{'NAME'} value from the secrets file, then the
// process environment. An unset secret resolves to "".
func (c *Config) expand(value string) string {
	m := secretRef.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	if v, ok := c.secrets[m[1]]; ok {
		return v
	}
	if v, ok := os.LookupEnv(m[1]); ok {
		return v
	}
	return ""
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for name, p := range map[string]Profile{
		"default":    c.Default,
		"community":  c.Community,
		"commercial": c.Commercial,
		"override":   c.Override,
	} {
		switch p.Language {
		case "", "zh-cn", "zh-tw":
		default:
			return fmt.Errorf("%s.language: unsupported language %q", name, p.Language)
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported level %q", c.Logging.Level)
	}
	return nil
}

// FindWorkspaceRoot walks up from start looking for the project root: a
// directory holding .pandaskit/ or src/config/pandas.hpp. It returns start
// when neither is found.
func FindWorkspaceRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	original := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, Dir)); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "src", "config", "pandas.hpp")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return original, nil
}
