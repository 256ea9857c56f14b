package tokenizer

import (
	"bufio"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// Published vocabulary snapshots live here.
	defaultBaseURL = "https://openaipublic.blob.core.windows.net/encodings/"
	envEncBase     = "TIKTOKEN_ENCODINGS_BASE"
	envCacheDir    = "TIKTOKEN_GO_CACHE_DIR"
	envOffline     = "TIKTOKEN_OFFLINE"
	envHTTPTimeout = "TIKTOKEN_HTTP_TIMEOUT" // seconds
)

// vocabFile names a downloadable vocabulary snapshot and its checksum.
type vocabFile struct {
	file   string
	sha256 string
}

var vocabFiles = map[string]vocabFile{
	"r50k_base":   {"r50k_base.tiktoken", "306cd27f03c1a714eca7108e03d66b7dc042abe8c258b44c199a7ed9838dd930"},
	"p50k_base":   {"p50k_base.tiktoken", "94b5ca7dff4d00767bc256fdd1b27e5b17361d7b8a5f968547f9f23eb70d2069"},
	"cl100k_base": {"cl100k_base.tiktoken", "223921b76ee99bde995b7ff738513eef100fb51d18c93f86f5a3d78cbcd97251"},
	"o200k_base":  {"o200k_base.tiktoken", "446a9538cb6c348e3516120d7c08b09f57c36495e2acfffe59a5bf8b0cfb1a2d"},
}

// resolveCacheDir respects the cache override or falls back to a predictable
// temp directory.
func resolveCacheDir() (string, error) {
	if d := os.Getenv(envCacheDir); d != "" {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return "", err
		}
		return d, nil
	}
	primary := filepath.Join(os.TempDir(), "tiktoken-go-cache")
	if err := os.MkdirAll(primary, 0o755); err != nil {
		return "", err
	}
	return primary, nil
}

func baseURL() string {
	base := os.Getenv(envEncBase)
	if base == "" {
		return defaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

func downloadToFile(url, dest string) (string, error) {
	// Bounded HTTP client to avoid indefinite hangs in restricted environments.
	timeout := 30 * time.Second
	if v := os.Getenv(envHTTPTimeout); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			timeout = time.Duration(s) * time.Second
		}
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	mw := io.MultiWriter(f, h)
	if _, err := io.Copy(mw, resp.Body); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// LoadRanks reads or downloads the named vocabulary (for example
// "cl100k_base") and returns its rank table. Each line of the file is a
// base64-encoded byte sequence, a space, and a decimal rank.
func LoadRanks(name string) (map[string]Rank, error) {
	vf, ok := vocabFiles[name]
	if !ok {
		return nil, fmt.Errorf("no vocabulary file registered for %q", name)
	}

	var path string
	if b := os.Getenv(envEncBase); b != "" {
		// treat as local directory
		path = filepath.Join(b, vf.file)
	} else {
		cacheDir, err := resolveCacheDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(cacheDir, vf.file)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if os.Getenv(envOffline) == "1" {
				return nil, fmt.Errorf("%s missing and TIKTOKEN_OFFLINE=1; set %s to a local dir containing it or unset offline", vf.file, envEncBase)
			}
			url := baseURL() + vf.file
			slog.Debug("downloading vocabulary", "name", name, "url", url, "dest", path)
			sum, err := downloadToFile(url, path)
			if err != nil {
				return nil, err
			}
			if !strings.EqualFold(sum, vf.sha256) {
				return nil, fmt.Errorf("hash mismatch for %s: got %s want %s", vf.file, sum, vf.sha256)
			}
		}
	}
	slog.Debug("loading vocabulary", "name", name, "path", path)
	return parseRanksFile(path)
}

func parseRanksFile(path string) (map[string]Rank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	ranks := make(map[string]Rank)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		sp := strings.IndexByte(line, ' ')
		if sp <= 0 {
			return nil, fmt.Errorf("invalid vocab at line %d", lineNo)
		}
		tok, err := base64.StdEncoding.DecodeString(line[:sp])
		if err != nil {
			return nil, fmt.Errorf("b64 decode line %d: %w", lineNo, err)
		}
		rank, err := strconv.ParseUint(line[sp+1:], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("rank parse line %d: %w", lineNo, err)
		}
		ranks[string(tok)] = Rank(rank)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ranks, nil
}
