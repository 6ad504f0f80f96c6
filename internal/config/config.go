// Package config loads optional application configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/avetisov/repoflat/internal/ignore"
)

const (
	// ConfigFileName is the per-project configuration file discovered in the
	// working directory.
	ConfigFileName = ".repoflat.yaml"
	// globalConfigRelativePath locates the user-wide configuration below the
	// home directory.
	globalConfigRelativePath = ".config/repoflat/config.yaml"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
}

// ApplicationConfiguration holds run defaults that flags can override.
type ApplicationConfiguration struct {
	OutputDirectory string             `mapstructure:"output_dir"`
	Exclude         []string           `mapstructure:"exclude"`
	UseGitignore    *bool              `mapstructure:"use_gitignore"`
	Tokens          TokenConfiguration `mapstructure:"tokens"`
	Clipboard       *bool              `mapstructure:"clipboard"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadApplicationConfiguration loads configuration from the global and local
// files. Absent files contribute nothing; the local file overlays the global
// one.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalConfiguration, loadError := loadConfigurationFromPath(filepath.Join(homeDirectory, globalConfigRelativePath))
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localConfiguration, loadError := loadConfigurationFromPath(filepath.Join(workingDirectory, ConfigFileName))
	if loadError != nil {
		return ApplicationConfiguration{}, loadError
	}
	merged = merged.Merge(localConfiguration)

	merged.Exclude = canonicalizedExcludeTokens(merged.Exclude)

	return merged, nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	fileInformation, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if fileInformation.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var configuration ApplicationConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	if override.OutputDirectory != "" {
		result.OutputDirectory = override.OutputDirectory
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, override.Exclude...)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.Tokens.Enabled != nil {
		result.Tokens.Enabled = cloneBool(override.Tokens.Enabled)
	}
	if override.Tokens.Model != "" {
		result.Tokens.Model = override.Tokens.Model
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

// canonicalizedExcludeTokens deduplicates configured exclusions in canonical form.
func canonicalizedExcludeTokens(rawTokens []string) []string {
	seenTokens := make(map[string]struct{})
	var canonicalTokens []string
	for _, rawToken := range rawTokens {
		canonicalToken := ignore.Canonicalize(rawToken)
		if canonicalToken == "" {
			continue
		}
		if _, exists := seenTokens[canonicalToken]; exists {
			continue
		}
		seenTokens[canonicalToken] = struct{}{}
		canonicalTokens = append(canonicalTokens, canonicalToken)
	}
	return canonicalTokens
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
