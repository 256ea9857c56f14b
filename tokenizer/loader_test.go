package tokenizer

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadRanksFromLocalDir(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	for i, tok := range []string{"a", "b", "ab", " ab"} {
		fmt.Fprintf(&sb, "%s %d\n", base64.StdEncoding.EncodeToString([]byte(tok)), i)
	}
	if err := os.WriteFile(filepath.Join(dir, "cl100k_base.tiktoken"), []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(envEncBase, dir)

	ranks, err := LoadRanks("cl100k_base")
	if err != nil {
		t.Fatalf("LoadRanks: %v", err)
	}
	if len(ranks) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(ranks))
	}
	if got := ranks[" ab"]; got != 3 {
		t.Fatalf("rank for %q = %d want 3", " ab", got)
	}
}

func TestLoadRanksRejectsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cl100k_base.tiktoken"), []byte("notbase64!!! 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(envEncBase, dir)

	if _, err := LoadRanks("cl100k_base"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadRanksUnknownVocabulary(t *testing.T) {
	if _, err := LoadRanks("no_such_base"); err == nil {
		t.Fatalf("expected error for unregistered vocabulary")
	}
}

func TestLoadRanksOfflineMissingCacheFailsFast(t *testing.T) {
	t.Setenv(envOffline, "1")
	t.Setenv(envCacheDir, t.TempDir())
	t.Setenv(envEncBase, "")

	_, err := LoadRanks("o200k_base")
	if err == nil {
		t.Fatalf("expected error when offline cache is missing")
	}
	if !strings.Contains(err.Error(), "TIKTOKEN_OFFLINE") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoaderDownloadTimeout(t *testing.T) {
	t.Setenv(envHTTPTimeout, "1")

	dest := filepath.Join(t.TempDir(), "out")
	start := time.Now()
	if _, err := downloadToFile("http://10.255.255.1:81", dest); err == nil {
		t.Fatalf("expected timeout error")
	} else if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("download exceeded expected timeout: %v", elapsed)
	}
}
