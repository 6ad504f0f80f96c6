package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// TestLoadApplicationConfigurationMissingFiles verifies absent configuration
// files contribute nothing and cause no error.
func TestLoadApplicationConfigurationMissingFiles(testingHandle *testing.T) {
	configuration, loadError := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: testingHandle.TempDir()})
	if loadError != nil {
		testingHandle.Fatalf("LoadApplicationConfiguration failed: %v", loadError)
	}
	if configuration.OutputDirectory != "" || len(configuration.Exclude) != 0 {
		testingHandle.Fatalf("expected empty configuration, got %+v", configuration)
	}
}

// TestLoadApplicationConfigurationLocalFile verifies the working-directory
// file is read and its exclusions are canonicalized and deduplicated.
func TestLoadApplicationConfigurationLocalFile(testingHandle *testing.T) {
	workingDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(workingDirectory, ConfigFileName), "output_dir: reports\nexclude:\n  - /vendor/\n  - vendor\n  - dist\nuse_gitignore: false\n")

	configuration, loadError := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingHandle.Fatalf("LoadApplicationConfiguration failed: %v", loadError)
	}

	if configuration.OutputDirectory != "reports" {
		testingHandle.Fatalf("unexpected output directory: %q", configuration.OutputDirectory)
	}
	expectedExclusions := []string{"vendor", "dist"}
	if !reflect.DeepEqual(configuration.Exclude, expectedExclusions) {
		testingHandle.Fatalf("unexpected exclusions: got %v want %v", configuration.Exclude, expectedExclusions)
	}
	if configuration.UseGitignore == nil || *configuration.UseGitignore {
		testingHandle.Fatalf("use_gitignore not decoded: %+v", configuration.UseGitignore)
	}
}

// TestMergeOverlaysOverride verifies the override wins for every set field.
func TestMergeOverlaysOverride(testingHandle *testing.T) {
	baseGitignore := true
	overrideGitignore := false
	base := ApplicationConfiguration{
		OutputDirectory: "base",
		Exclude:         []string{"vendor"},
		UseGitignore:    &baseGitignore,
		Tokens:          TokenConfiguration{Model: "gpt-4o"},
	}
	override := ApplicationConfiguration{
		OutputDirectory: "override",
		Exclude:         []string{"dist"},
		UseGitignore:    &overrideGitignore,
		Tokens:          TokenConfiguration{Model: "o200k"},
	}

	merged := base.Merge(override)
	if merged.OutputDirectory != "override" {
		testingHandle.Fatalf("output directory not overridden: %q", merged.OutputDirectory)
	}
	if !reflect.DeepEqual(merged.Exclude, []string{"dist"}) {
		testingHandle.Fatalf("exclusions not overridden: %v", merged.Exclude)
	}
	if merged.UseGitignore == nil || *merged.UseGitignore {
		testingHandle.Fatalf("use_gitignore not overridden")
	}
	if merged.Tokens.Model != "o200k" {
		testingHandle.Fatalf("token model not overridden: %q", merged.Tokens.Model)
	}
}

// TestMergeKeepsBaseForUnsetOverride verifies unset override fields keep the
// base values.
func TestMergeKeepsBaseForUnsetOverride(testingHandle *testing.T) {
	baseGitignore := false
	base := ApplicationConfiguration{
		OutputDirectory: "base",
		Exclude:         []string{"vendor"},
		UseGitignore:    &baseGitignore,
	}

	merged := base.Merge(ApplicationConfiguration{})
	if merged.OutputDirectory != "base" {
		testingHandle.Fatalf("output directory lost: %q", merged.OutputDirectory)
	}
	if !reflect.DeepEqual(merged.Exclude, []string{"vendor"}) {
		testingHandle.Fatalf("exclusions lost: %v", merged.Exclude)
	}
	if merged.UseGitignore == nil || *merged.UseGitignore {
		testingHandle.Fatalf("use_gitignore lost")
	}
}
