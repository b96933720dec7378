package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunProducesHealedNotificationAndFinalState(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--datadir", dir, "--log-level", "warn"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("run failed: code=%d stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "healed to 50") {
		t.Fatalf("expected healed notification, got: %s", out.String())
	}
	if !strings.Contains(out.String(), "final hp=100 level=5") {
		t.Fatalf("expected final reservoir state, got: %s", out.String())
	}
}

func TestRunRejectsBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--datadir", dir, "--log-level", "not-a-level"}, &out, &errOut)
	if code != 2 {
		t.Fatalf("expected exit code 2 for bad log level, got %d", code)
	}
}

func TestRunReusesAssetCacheAcrossInvocations(t *testing.T) {
	dir := t.TempDir()
	var out1, errOut bytes.Buffer
	if code := run([]string{"--datadir", dir}, &out1, &errOut); code != 0 {
		t.Fatalf("first run failed: %s", errOut.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "assets.db")); err != nil {
		t.Fatalf("expected asset cache database to exist: %v", err)
	}

	var out2 bytes.Buffer
	if code := run([]string{"--datadir", dir}, &out2, &errOut); code != 0 {
		t.Fatalf("second run failed: %s", errOut.String())
	}
	if out1.String() != out2.String() {
		t.Fatalf("expected identical output across runs, got %q vs %q", out1.String(), out2.String())
	}
}
