package changelog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/etfsave/internal/jsonfile"
)

// Remote changelog sync settings.
const (
	RemoteURLEnv       = "CHANGELOG_REMOTE_URL"
	AllowStaleEnv      = "ALLOW_STALE_CHANGELOG"
	SyncUserAgent      = "etfsave-life-sync-server-changelog/1.0"
	DefaultSyncTimeout = 15 * time.Second
)

// DefaultRemoteURLs are tried after any explicitly configured URL.
var DefaultRemoteURLs = []string{
	"https://etfsave.life/changelog.json",
	"https://www.etfsave.life/changelog.json",
}

// ErrNoRemoteURL is returned when no candidate URL is configured.
var ErrNoRemoteURL = errors.New("no candidate URL configured")

// Stager stages a file after it is written.
type Stager interface {
	Add(ctx context.Context, path string) error
}

// CandidateURLs merges explicit URLs, the environment URL and the defaults,
// dropping blanks and duplicates while keeping first-seen order.
func CandidateURLs(explicit []string, env string, defaults []string) []string {
	all := make([]string, 0, len(explicit)+1+len(defaults))
	all = append(all, explicit...)
	all = append(all, env)
	all = append(all, defaults...)

	seen := make(map[string]struct{}, len(all))
	urls := make([]string, 0, len(all))
	for _, u := range all {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}

// Syncer replaces the local changelog with the copy served by production.
type Syncer struct {
	URLs       []string
	Path       string
	HTTPClient *http.Client
	Stager     Stager // nil disables staging
	Logger     *slog.Logger
}

// NewSyncer creates a syncer with an HTTP client bounded by timeout.
func NewSyncer(path string, urls []string, timeout time.Duration) *Syncer {
	if timeout <= 0 {
		timeout = DefaultSyncTimeout
	}
	return &Syncer{
		URLs:       urls,
		Path:       path,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     slog.Default(),
	}
}

// SyncResult describes a successful sync.
type SyncResult struct {
	URL     string
	Changed bool
	Batches int
}

// Sync downloads the first valid remote changelog and writes it locally when
// its serialized form differs from the file on disk.
func (s *Syncer) Sync(ctx context.Context) (*SyncResult, error) {
	if len(s.URLs) == 0 {
		return nil, ErrNoRemoteURL
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		data    []byte
		batches int
		active  string
		lastErr error
	)
	for _, u := range s.URLs {
		payload, n, err := s.fetch(ctx, u)
		if err != nil {
			logger.Debug("Remote changelog unavailable", "url", u, "error", err)
			lastErr = err
			continue
		}
		data, batches, active = payload, n, u
		break
	}
	if data == nil {
		return nil, fmt.Errorf("unable to download remote changelog: %w", lastErr)
	}

	changed, err := writeIfChanged(s.Path, data)
	if err != nil {
		return nil, err
	}

	if s.Stager != nil {
		if err := s.Stager.Add(ctx, s.Path); err != nil {
			return nil, fmt.Errorf("failed to stage %s: %w", s.Path, err)
		}
	}

	return &SyncResult{URL: active, Changed: changed, Batches: batches}, nil
}

func (s *Syncer) fetch(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", SyncUserAgent)

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultSyncTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("unexpected HTTP status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	data, n, err := jsonfile.ReindentArray(body, jsonfile.ChangelogIndent)
	if err != nil {
		return nil, 0, fmt.Errorf("remote changelog.json is not a list: %w", err)
	}
	return data, n, nil
}

func writeIfChanged(path string, data []byte) (bool, error) {
	current, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(current, data) {
			return false, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := jsonfile.WriteAtomic(path, data); err != nil {
		return false, err
	}
	return true, nil
}

// AllowStaleFromEnv reports whether the environment opts into tolerating a
// failed sync.
func AllowStaleFromEnv() bool {
	return os.Getenv(AllowStaleEnv) == "1"
}
