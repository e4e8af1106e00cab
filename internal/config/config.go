// Package config loads gh-next-release configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ryo246912/gh-next-release/internal/models"
)

// EnvPrefix prefixes every environment variable override
const EnvPrefix = "GH_NEXT_RELEASE"

// Config represents the extension configuration.
type Config struct {
	Log      LogConfig       `mapstructure:"log"`
	Output   OutputConfig    `mapstructure:"output"`
	BotLogin string          `mapstructure:"bot_login"`
	HTTP     HTTPConfig      `mapstructure:"http"`
	GitHub   GitHubConfig    `mapstructure:"github"`
	GitLab   GitLabConfig    `mapstructure:"gitlab"`
	Projects []ProjectConfig `mapstructure:"projects"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// HTTPConfig holds API client settings.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// GitHubConfig overrides what gh would resolve on its own.
type GitHubConfig struct {
	Host  string `mapstructure:"host"`
	Token string `mapstructure:"token"`
}

// GitLabConfig holds GitLab API settings.
type GitLabConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// ProjectConfig describes one project whose next release can be resolved.
type ProjectConfig struct {
	Name         string `mapstructure:"name"`
	Repository   string `mapstructure:"repository"`
	Platform     string `mapstructure:"platform"`
	StableBranch string `mapstructure:"stable_branch"`
	BranchRule   string `mapstructure:"branch_rule"`
}

// Project converts the entry into a validated project.
func (p ProjectConfig) Project() (models.Project, error) {
	repo, err := models.ParseRepository(p.Repository)
	if err != nil {
		return models.Project{}, err
	}
	platform, err := models.ParsePlatform(p.Platform)
	if err != nil {
		return models.Project{}, err
	}
	rule, err := models.ParseBranchRule(p.BranchRule, p.StableBranch)
	if err != nil {
		return models.Project{}, err
	}
	return models.Project{
		Repository:   repo,
		StableBranch: p.StableBranch,
		BranchRule:   rule,
		Platform:     platform,
	}, nil
}

// DisplayName returns the name, falling back to the repository.
func (p ProjectConfig) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Repository
}

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultPath returns the config file looked up when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gh-next-release", "config.yml")
}

// LoadEnvFile copies variables from a .env file into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	envMap, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	for k, v := range envMap {
		if _, exists := os.LookupEnv(k); !exists {
			_ = os.Setenv(k, v)
		}
	}
	return nil
}

// Load reads the config file at path, or the default path when empty, and
// applies environment overrides. A missing default file yields defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	var file string
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else {
			file = path
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = file

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("output.format", FormatText)
	v.SetDefault("bot_login", "github-actions[bot]")
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("gitlab.base_url", "https://gitlab.com/api/v4")
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"log.level",
		"output.format",
		"bot_login",
		"http.timeout",
		"github.host",
		"github.token",
		"gitlab.base_url",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	_ = v.BindEnv("gitlab.token", EnvPrefix+"_GITLAB_TOKEN", "GITLAB_TOKEN")
}

// Validate checks the configuration for values the CLI cannot work with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if err := ValidateFormat(c.Output.Format); err != nil {
		return err
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("invalid http.timeout %s", c.HTTP.Timeout)
	}

	seen := make(map[string]struct{}, len(c.Projects))
	for i, p := range c.Projects {
		if _, err := p.Project(); err != nil {
			return fmt.Errorf("invalid projects[%d]: %w", i, err)
		}
		name := p.DisplayName()
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate project %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// ValidateFormat checks an output format name.
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("invalid output format %q: want text, json or yaml", format)
	}
}

// FindProject returns the configured project with the given name or repository.
func (c *Config) FindProject(nameOrRepo string) (ProjectConfig, bool) {
	for _, p := range c.Projects {
		if p.Name == nameOrRepo || p.Repository == nameOrRepo {
			return p, true
		}
	}
	return ProjectConfig{}, false
}
