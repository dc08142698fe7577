package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds user-overridable generator settings.
// Loaded from .manifestrc in the project root.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
}

// GeneratorConfig holds the generator-specific settings.
type GeneratorConfig struct {
	// ServiceDirs are project-relative directories whose modules are
	// scanned for service classes. Default: ["src/services"].
	ServiceDirs []string `yaml:"service_dirs"`

	// Marker is the sentinel base class a service class must directly
	// extend. Default: "RemoteService".
	Marker *string `yaml:"marker"`

	// ResultType is the name of the fallible wrapper inside Promise<...>.
	// Default: "Result".
	ResultType *string `yaml:"result_type"`

	// Out is the project-relative manifest output path.
	// Default: "src/generated/rpc-manifest.json".
	Out *string `yaml:"out"`

	// PackageJSON is the project-relative path of the metadata file the
	// version string is read from. Default: "package.json".
	PackageJSON *string `yaml:"package_json"`
}

// DefaultConfig returns the default generator configuration.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads .manifestrc from the given directory.
// Returns default config if the file doesn't exist.
func LoadConfig(dir string) *Config {
	cfg := DefaultConfig()

	path := filepath.Join(dir, ".manifestrc")
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // file not found or unreadable — use defaults
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig() // invalid YAML — use defaults
	}

	return cfg
}

// EffectiveServiceDirs returns the configured service directories,
// or the default if not set.
func (c *Config) EffectiveServiceDirs() []string {
	if len(c.Generator.ServiceDirs) > 0 {
		return c.Generator.ServiceDirs
	}
	return []string{"src/services"}
}

// EffectiveMarker returns the configured sentinel class name,
// or the default ("RemoteService") if not set.
func (c *Config) EffectiveMarker() string {
	if c.Generator.Marker != nil {
		return *c.Generator.Marker
	}
	return "RemoteService"
}

// EffectiveResultType returns the configured fallible-wrapper name,
// or the default ("Result") if not set.
func (c *Config) EffectiveResultType() string {
	if c.Generator.ResultType != nil {
		return *c.Generator.ResultType
	}
	return "Result"
}

// EffectiveOut returns the configured output path, or the default.
func (c *Config) EffectiveOut() string {
	if c.Generator.Out != nil {
		return *c.Generator.Out
	}
	return filepath.Join("src", "generated", "rpc-manifest.json")
}

// EffectivePackageJSON returns the configured metadata path, or the default.
func (c *Config) EffectivePackageJSON() string {
	if c.Generator.PackageJSON != nil {
		return *c.Generator.PackageJSON
	}
	return "package.json"
}

// IsServiceModule reports whether a module at relPath falls under one of
// the configured service directories.
func (c *Config) IsServiceModule(relPath string) bool {
	rel := filepath.ToSlash(relPath)
	for _, dir := range c.EffectiveServiceDirs() {
		prefix := strings.TrimSuffix(filepath.ToSlash(dir), "/") + "/"
		if strings.HasPrefix(rel, prefix) {
			return true
		}
	}
	return false
}
