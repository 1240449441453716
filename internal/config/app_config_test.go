package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/temirov/lctx/internal/utils"
)

// writeConfigurationFile writes YAML configuration content at the given path.
func writeConfigurationFile(testingHandle *testing.T, path string, content string) {
	testingHandle.Helper()
	if makeDirError := os.MkdirAll(filepath.Dir(path), 0o755); makeDirError != nil {
		testingHandle.Fatalf("failed to create configuration directory: %v", makeDirError)
	}
	if writeError := os.WriteFile(path, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write configuration file: %v", writeError)
	}
}

// isolateHomeDirectory points the user home at an empty directory so real
// global configuration cannot leak into the test.
func isolateHomeDirectory(testingHandle *testing.T) string {
	testingHandle.Helper()
	homeDirectory := testingHandle.TempDir()
	testingHandle.Setenv("HOME", homeDirectory)
	testingHandle.Setenv("USERPROFILE", homeDirectory)
	return homeDirectory
}

// TestLoadApplicationConfigurationMissingFilesYieldsEmpty verifies missing
// configuration files contribute nothing.
func TestLoadApplicationConfigurationMissingFilesYieldsEmpty(testingHandle *testing.T) {
	isolateHomeDirectory(testingHandle)
	workingDirectory := testingHandle.TempDir()

	loaded, loadError := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingHandle.Fatalf("LoadApplicationConfiguration failed: %v", loadError)
	}
	if len(loaded.Ignore.Patterns) != 0 || loaded.Ignore.UseGitignore != nil {
		testingHandle.Fatalf("expected empty ignore configuration, got %#v", loaded.Ignore)
	}
	if loaded.Generate.Clipboard != nil || loaded.Generate.Tokens.Enabled != nil || loaded.Generate.Tokens.Model != "" {
		testingHandle.Fatalf("expected empty generate configuration, got %#v", loaded.Generate)
	}
}

// TestLoadApplicationConfigurationReadsLocalFile verifies the local file is decoded.
func TestLoadApplicationConfigurationReadsLocalFile(testingHandle *testing.T) {
	isolateHomeDirectory(testingHandle)
	workingDirectory := testingHandle.TempDir()
	writeConfigurationFile(testingHandle, filepath.Join(workingDirectory, utils.ConfigFileName),
		"ignore:\n  patterns:\n    - '*.log'\n    - node_modules\n  use_gitignore: false\ngenerate:\n  clipboard: true\n  tokens:\n    enabled: true\n    model: gpt-4o\n")

	loaded, loadError := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingHandle.Fatalf("LoadApplicationConfiguration failed: %v", loadError)
	}
	if !reflect.DeepEqual(loaded.Ignore.Patterns, []string{"*.log", "node_modules"}) {
		testingHandle.Fatalf("unexpected ignore patterns: %#v", loaded.Ignore.Patterns)
	}
	if loaded.Ignore.UseGitignore == nil || *loaded.Ignore.UseGitignore {
		testingHandle.Fatalf("expected use_gitignore to decode as false")
	}
	if loaded.Generate.Clipboard == nil || !*loaded.Generate.Clipboard {
		testingHandle.Fatalf("expected clipboard to decode as true")
	}
	if loaded.Generate.Tokens.Enabled == nil || !*loaded.Generate.Tokens.Enabled {
		testingHandle.Fatalf("expected tokens.enabled to decode as true")
	}
	if loaded.Generate.Tokens.Model != "gpt-4o" {
		testingHandle.Fatalf("unexpected token model: %s", loaded.Generate.Tokens.Model)
	}
}

// TestLoadApplicationConfigurationLocalOverridesGlobal verifies precedence.
func TestLoadApplicationConfigurationLocalOverridesGlobal(testingHandle *testing.T) {
	homeDirectory := isolateHomeDirectory(testingHandle)
	writeConfigurationFile(testingHandle,
		filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName),
		"ignore:\n  patterns:\n    - '*.tmp'\n  use_gitignore: true\ngenerate:\n  tokens:\n    model: gpt-4\n")

	workingDirectory := testingHandle.TempDir()
	writeConfigurationFile(testingHandle, filepath.Join(workingDirectory, utils.ConfigFileName),
		"ignore:\n  patterns:\n    - '*.log'\n")

	loaded, loadError := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingHandle.Fatalf("LoadApplicationConfiguration failed: %v", loadError)
	}
	if !reflect.DeepEqual(loaded.Ignore.Patterns, []string{"*.log"}) {
		testingHandle.Fatalf("expected local patterns to replace global ones, got %#v", loaded.Ignore.Patterns)
	}
	if loaded.Ignore.UseGitignore == nil || !*loaded.Ignore.UseGitignore {
		testingHandle.Fatalf("expected global use_gitignore to survive the merge")
	}
	if loaded.Generate.Tokens.Model != "gpt-4" {
		testingHandle.Fatalf("expected global token model to survive the merge, got %s", loaded.Generate.Tokens.Model)
	}
}

// TestLoadApplicationConfigurationExplicitFile verifies an explicit path wins
// over the default local file name.
func TestLoadApplicationConfigurationExplicitFile(testingHandle *testing.T) {
	isolateHomeDirectory(testingHandle)
	workingDirectory := testingHandle.TempDir()
	writeConfigurationFile(testingHandle, filepath.Join(workingDirectory, utils.ConfigFileName),
		"generate:\n  tokens:\n    model: default-model\n")
	writeConfigurationFile(testingHandle, filepath.Join(workingDirectory, "alternate.yaml"),
		"generate:\n  tokens:\n    model: explicit-model\n")

	loaded, loadError := LoadApplicationConfiguration(LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: "alternate.yaml",
	})
	if loadError != nil {
		testingHandle.Fatalf("LoadApplicationConfiguration failed: %v", loadError)
	}
	if loaded.Generate.Tokens.Model != "explicit-model" {
		testingHandle.Fatalf("expected explicit configuration to be used, got %s", loaded.Generate.Tokens.Model)
	}
}

// TestMergeDeduplicatesPatterns verifies merge drops repeated patterns.
func TestMergeDeduplicatesPatterns(testingHandle *testing.T) {
	base := ApplicationConfiguration{}
	override := ApplicationConfiguration{
		Ignore: IgnoreConfiguration{Patterns: []string{"*.log", "*.log", "build"}},
	}
	merged := base.Merge(override)
	if !reflect.DeepEqual(merged.Ignore.Patterns, []string{"*.log", "build"}) {
		testingHandle.Fatalf("unexpected merged patterns: %#v", merged.Ignore.Patterns)
	}
}

// TestLoadApplicationConfigurationRejectsMalformedFile verifies yaml errors surface.
func TestLoadApplicationConfigurationRejectsMalformedFile(testingHandle *testing.T) {
	isolateHomeDirectory(testingHandle)
	workingDirectory := testingHandle.TempDir()
	writeConfigurationFile(testingHandle, filepath.Join(workingDirectory, utils.ConfigFileName),
		"ignore: [unclosed\n")

	if _, loadError := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory}); loadError == nil {
		testingHandle.Fatalf("expected malformed configuration to fail")
	}
}
