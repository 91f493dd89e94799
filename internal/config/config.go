package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the effective settings for one updater run. It is resolved
// once at process start and treated as immutable afterwards.
type Config struct {
	// Owner is the account owning the release catalog repository.
	Owner string `yaml:"owner"`
	// Repo is the repository whose releases are installed.
	Repo string `yaml:"repo"`
	// Target is the live installation directory.
	Target string `yaml:"target"`
	// Suffix filters release assets by filename suffix.
	Suffix string `yaml:"suffix"`
	// APIBaseURL optionally points the catalog client at a mirror or
	// enterprise endpoint. Empty means the public GitHub API.
	APIBaseURL string `yaml:"api_url"`
}

const (
	// DefaultConfigFilename is the default filename for updater settings.
	DefaultConfigFilename = "brave-updater-settings.yaml"

	// DefaultOwner is the account publishing browser releases.
	DefaultOwner = "brave"

	// DefaultRepo is the repository publishing browser releases.
	DefaultRepo = "brave-browser"

	// DefaultSuffix selects the Linux amd64 zip asset.
	DefaultSuffix = "-linux-amd64.zip"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errOwnerRequired is returned when the catalog owner is missing.
	errOwnerRequired = errors.New("catalog owner must be provided")
	// errRepoRequired is returned when the catalog repository is missing.
	errRepoRequired = errors.New("catalog repository must be provided")
	// errTargetRequired is returned when the installation directory is missing.
	errTargetRequired = errors.New("target directory must be provided")
	// errSuffixRequired is returned when the asset suffix filter is missing.
	errSuffixRequired = errors.New("asset suffix must be provided")
)

// DefaultTarget derives the default installation directory
// from the invoking user's home directory.
func DefaultTarget() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	return filepath.Join(home, "usr", "brave")
}

// defaults returns a configuration populated with built-in values.
func defaults() *Config {
	return &Config{
		Owner:  DefaultOwner,
		Repo:   DefaultRepo,
		Target: DefaultTarget(),
		Suffix: DefaultSuffix,
	}
}

// Resolve builds the effective configuration: built-in defaults, then the
// optional YAML file, then flag overrides, validated at the end. It runs
// once per invocation so components never consult ambient state.
func Resolve(path, targetOverride, suffixOverride string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		contents, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}

		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	if targetOverride != "" {
		cfg.Target = targetOverride
	}

	if suffixOverride != "" {
		cfg.Suffix = suffixOverride
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	return Resolve(path, "", "")
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Owner == "" {
		return errOwnerRequired
	}

	if cfg.Repo == "" {
		return errRepoRequired
	}

	if cfg.Target == "" {
		return errTargetRequired
	}

	if cfg.Suffix == "" {
		return errSuffixRequired
	}

	if cfg.APIBaseURL == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return fmt.Errorf("invalid catalog URL: %w", err)
	}

	return nil
}
