package cmip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/carbonscope/co2-diagnostics/internal/common"
	"github.com/carbonscope/co2-diagnostics/internal/diag"
)

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// RemoteSource fetches model files listed in a JSON catalog served next to
// them. A circuit breaker guards the archive; a failed request is reported
// to the caller as-is, never retried.
type RemoteSource struct {
	baseURL  string
	cacheDir string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
	log      *slog.Logger
}

func NewRemoteSource(baseURL, cacheDir string, client *http.Client, log *slog.Logger) *RemoteSource {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "cmip-archive",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &RemoteSource{
		baseURL:  strings.TrimRight(baseURL, "/"),
		cacheDir: cacheDir,
		client:   client,
		circuit:  cb,
		log:      log,
	}
}

func (s *RemoteSource) Name() string { return "remote" }

// catalogEntry mirrors one entry of the archive's catalog.json.
type catalogEntry struct {
	Model string `json:"model"`
	File  string `json:"file"`
}

func (s *RemoteSource) catalog(ctx context.Context) ([]catalogEntry, error) {
	resp, err := s.get(ctx, s.baseURL+"/catalog.json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var entries []catalogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return entries, nil
}

// Models lists the models the archive advertises, sorted and de-duplicated.
func (s *RemoteSource) Models(ctx context.Context) ([]string, error) {
	entries, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	models := make([]string, 0, len(entries))
	for _, e := range entries {
		models = append(models, e.Model)
	}
	sort.Strings(models)
	return common.Dedup(models), nil
}

// Load downloads the model's file into the cache directory (unless a
// previous run already did) and decodes it.
func (s *RemoteSource) Load(ctx context.Context, model string) (*Dataset, error) {
	entries, err := s.catalog(ctx)
	if err != nil {
		return nil, diag.NewModelSourceError(model, s.Name(), err)
	}
	var entry *catalogEntry
	for i := range entries {
		if strings.EqualFold(entries[i].Model, model) {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return nil, diag.NewModelSourceError(model, s.Name(), nil)
	}
	path, err := s.fetchFile(ctx, entry.File)
	if err != nil {
		return nil, diag.NewModelSourceError(model, s.Name(), err)
	}
	d, err := readModelFile(path)
	if err != nil {
		return nil, diag.NewModelSourceError(model, s.Name(), err)
	}
	d.Model = entry.Model
	d.Source = s.Name()
	return d, nil
}

func (s *RemoteSource) fetchFile(ctx context.Context, name string) (string, error) {
	dest := filepath.Join(s.cacheDir, filepath.Base(name))
	if _, err := os.Stat(dest); err == nil {
		s.log.Debug("model file already cached", "file", dest)
		return dest, nil
	}
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return "", err
	}

	resp, err := s.get(ctx, s.baseURL+"/"+name)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(s.cacheDir, "download-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	s.log.Debug("downloaded model file", "file", dest)
	return dest, nil
}

// get performs one request through the circuit breaker.
func (s *RemoteSource) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	result, err := s.circuit.Execute(func() (interface{}, error) {
		resp, execErr := s.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, errServerError
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}
	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}
