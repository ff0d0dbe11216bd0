package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, manifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "packages", "app", "src")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}
	want := writeManifest(t, root, "[profile]\nslow_threshold_ms = 150\n")

	got, ok, err := findManifest(nested)
	if err != nil {
		t.Fatalf("findManifest returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected manifest to be found")
	}
	if got != want {
		t.Fatalf("found %q, want %q", got, want)
	}
}

func TestFindManifestAbsent(t *testing.T) {
	_, ok, err := findManifest(t.TempDir())
	if err != nil {
		t.Fatalf("findManifest returned error: %v", err)
	}
	if ok {
		t.Fatal("expected no manifest in an empty tree")
	}
}

func TestLoadManifestConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[profile]
slow_threshold_ms = 350
progress_every = 25
dep_root = "vendor"
source_label = "app code"
top_n = 5

[report]
save = "out/report.mp"
`)

	cfg, err := loadManifestConfig(path)
	if err != nil {
		t.Fatalf("loadManifestConfig returned error: %v", err)
	}
	if cfg.Profile.SlowThresholdMS != 350 {
		t.Errorf("slow_threshold_ms = %d, want 350", cfg.Profile.SlowThresholdMS)
	}
	if cfg.Profile.ProgressEvery != 25 {
		t.Errorf("progress_every = %d, want 25", cfg.Profile.ProgressEvery)
	}
	if cfg.Profile.DepRoot != "vendor" {
		t.Errorf("dep_root = %q, want vendor", cfg.Profile.DepRoot)
	}
	if cfg.Profile.SourceLabel != "app code" {
		t.Errorf("source_label = %q, want app code", cfg.Profile.SourceLabel)
	}
	if cfg.Profile.TopN != 5 {
		t.Errorf("top_n = %d, want 5", cfg.Profile.TopN)
	}
	if cfg.Report.Save != "out/report.mp" {
		t.Errorf("report.save = %q, want out/report.mp", cfg.Report.Save)
	}
}

func TestLoadManifestConfigRejectsNegatives(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"threshold", "[profile]\nslow_threshold_ms = -1\n"},
		{"every", "[profile]\nprogress_every = -5\n"},
		{"top", "[profile]\ntop_n = -2\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tc.content)
			if _, err := loadManifestConfig(path); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestLoadProjectManifestAbsentIsNotError(t *testing.T) {
	manifest, ok, err := loadProjectManifest(t.TempDir())
	if err != nil {
		t.Fatalf("loadProjectManifest returned error: %v", err)
	}
	if ok || manifest != nil {
		t.Fatal("expected nil manifest when none exists")
	}
}
