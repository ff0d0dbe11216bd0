package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const manifestName = "buildpulse.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config manifestConfig
}

type manifestConfig struct {
	Profile profileSection `toml:"profile"`
	Report  reportSection  `toml:"report"`
}

type profileSection struct {
	SlowThresholdMS int64  `toml:"slow_threshold_ms"`
	ProgressEvery   int    `toml:"progress_every"`
	DepRoot         string `toml:"dep_root"`
	SourceLabel     string `toml:"source_label"`
	TopN            int    `toml:"top_n"`
}

type reportSection struct {
	Save string `toml:"save"`
}

// findManifest walks up from startDir looking for buildpulse.toml.
func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest resolves and parses the nearest manifest. Absent
// manifest is not an error: every setting has a default.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadManifestConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadManifestConfig(path string) (manifestConfig, error) {
	var cfg manifestConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return manifestConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Profile.SlowThresholdMS < 0 {
		return manifestConfig{}, fmt.Errorf("%s: [profile].slow_threshold_ms must not be negative", path)
	}
	if cfg.Profile.ProgressEvery < 0 {
		return manifestConfig{}, fmt.Errorf("%s: [profile].progress_every must not be negative", path)
	}
	if cfg.Profile.TopN < 0 {
		return manifestConfig{}, fmt.Errorf("%s: [profile].top_n must not be negative", path)
	}
	return cfg, nil
}
