package main

import (
	"os"
	"path/filepath"
	"testing"
)

func silenceCIEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_REPOSITORY", "")
	t.Setenv("GITHUB_SHA", "")
	t.Setenv("GITHUB_REF_NAME", "")
	t.Setenv("GITHUB_RUN_ID", "")
	t.Setenv("GITHUB_OUTPUT", "")
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestRunCheckGreenWarnMode(t *testing.T) {
	silenceCIEnv(t)
	root := t.TempDir()
	writeFile(t, root, "EVIDENCE.json", "{}")

	code := runCheck([]string{"--root", root, "--json"})
	if code != exitOK {
		t.Fatalf("unexpected exit code: %d", code)
	}
	entries, err := os.ReadDir(filepath.Join(root, ".crovia"))
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	names := map[string]bool{}
	for _, entry := range entries {
		names[entry.Name()] = true
	}
	if !names["badge.svg"] || !names["badge_metadata.json"] {
		t.Fatalf("expected badge artifacts, got: %v", names)
	}
	if !names["verdicts"] {
		t.Fatalf("expected verdicts directory, got: %v", names)
	}
}

func TestRunCheckRedWarnModeStillOK(t *testing.T) {
	silenceCIEnv(t)
	root := t.TempDir()
	if code := runCheck([]string{"--root", root, "--json"}); code != exitOK {
		t.Fatalf("warn mode must not fail on RED, got: %d", code)
	}
}

func TestRunCheckRedFailMode(t *testing.T) {
	silenceCIEnv(t)
	root := t.TempDir()
	if code := runCheck([]string{"--root", root, "--mode", "fail", "--json"}); code != exitRedVerdict {
		t.Fatalf("fail mode must exit non-zero on RED")
	}
}

func TestRunCheckFailModeFromConfig(t *testing.T) {
	silenceCIEnv(t)
	root := t.TempDir()
	writeFile(t, root, ".crovia/config.yaml", "mode: fail\n")
	if code := runCheck([]string{"--root", root, "--json"}); code != exitRedVerdict {
		t.Fatalf("config fail mode must exit non-zero on RED")
	}
}

func TestRunCheckInvalidMode(t *testing.T) {
	silenceCIEnv(t)
	root := t.TempDir()
	if code := runCheck([]string{"--root", root, "--mode", "explode"}); code != exitInvalidInput {
		t.Fatalf("expected invalid input exit code")
	}
}

func TestRunCheckNoPointerSkipsPointerFile(t *testing.T) {
	silenceCIEnv(t)
	root := t.TempDir()
	writeFile(t, root, "EVIDENCE.json", "{}")
	if code := runCheck([]string{"--root", root, "--no-pointer", "--no-badge", "--json"}); code != exitOK {
		t.Fatalf("unexpected exit code")
	}
	entries, err := os.ReadDir(filepath.Join(root, ".crovia"))
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".json" && entry.Name() != "badge_metadata.json" {
			t.Fatalf("unexpected artifact: %s", entry.Name())
		}
		if entry.Name() == "badge.svg" {
			t.Fatalf("badge must be skipped")
		}
	}
}

func TestRunCheckMissingExplicitConfig(t *testing.T) {
	silenceCIEnv(t)
	root := t.TempDir()
	code := runCheck([]string{"--root", root, "--config", filepath.Join(root, "nope.yaml")})
	if code != exitInvalidInput {
		t.Fatalf("expected invalid input for missing explicit config, got: %d", code)
	}
}

func TestRunCheckMissingPrivateKeyFile(t *testing.T) {
	silenceCIEnv(t)
	root := t.TempDir()
	writeFile(t, root, "EVIDENCE.json", "{}")
	code := runCheck([]string{"--root", root, "--private-key", filepath.Join(root, "missing.key")})
	if code == exitOK {
		t.Fatalf("expected failure for missing key file")
	}
}
