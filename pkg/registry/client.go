// Package registry looks up the latest published release of apv so the CLI
// can print an upgrade notice.
package registry

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/mod/module"
)

// Release describes the newest published version of a package.
type Release struct {
	Version     string
	PublishDate time.Time
}

// Client interface
type Client interface {
	LatestVersion(ctx context.Context, name string) (*Release, error)
}

// Cache entry
type cacheEntry struct {
	release *Release
	expiry  time.Time
}

type cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*cacheEntry
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, entries: make(map[string]*cacheEntry)}
}

func (c *cache) get(key string) (*Release, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || !time.Now().Before(entry.expiry) {
		return nil, false
	}
	return entry.release, true
}

func (c *cache) put(key string, r *Release) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{release: r, expiry: time.Now().Add(c.ttl)}
}

func defaultHTTPClient() *http.Client {
	// Secure HTTP client with timeout and TLS verification
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// GoClient queries the Go module proxy
type GoClient struct {
	baseURL string
	cache   *cache
	fetcher HTTPFetcher
}

// NewGoClient creates a GoClient with real HTTP for production use
func NewGoClient(ttl time.Duration) Client {
	return NewGoClientWithFetcher(ttl, NewRealHTTPFetcher(defaultHTTPClient()))
}

// NewGoClientWithFetcher creates a GoClient with injectable HTTP for testing
func NewGoClientWithFetcher(ttl time.Duration, fetcher HTTPFetcher) *GoClient {
	return &GoClient{
		baseURL: "https://proxy.golang.org",
		cache:   newCache(ttl),
		fetcher: fetcher,
	}
}

// LatestVersion asks the proxy's @latest endpoint for the newest release of
// the module path name.
func (c *GoClient) LatestVersion(ctx context.Context, name string) (*Release, error) {
	if r, ok := c.cache.get(name); ok {
		return r, nil
	}

	escaped, err := module.EscapePath(name)
	if err != nil {
		return nil, fmt.Errorf("invalid module path %q: %w", name, err)
	}

	var info struct {
		Version string    `json:"Version"`
		Time    time.Time `json:"Time"`
	}
	if err := getJSON(ctx, c.fetcher, fmt.Sprintf("%s/%s/@latest", c.baseURL, escaped), &info); err != nil {
		return nil, err
	}
	if info.Version == "" {
		return nil, fmt.Errorf("module proxy returned no version for %s", name)
	}

	r := &Release{Version: info.Version, PublishDate: info.Time}
	c.cache.put(name, r)
	return r, nil
}

// NPMClient implements Client for the npm registry
type NPMClient struct {
	baseURL string
	cache   *cache
	fetcher HTTPFetcher
}

// NewNPMClient creates an NPMClient with real HTTP for production use
func NewNPMClient(ttl time.Duration) Client {
	return NewNPMClientWithFetcher(ttl, NewRealHTTPFetcher(defaultHTTPClient()))
}

// NewNPMClientWithFetcher creates an NPMClient with injectable HTTP for testing
func NewNPMClientWithFetcher(ttl time.Duration, fetcher HTTPFetcher) *NPMClient {
	return &NPMClient{
		baseURL: "https://registry.npmjs.org",
		cache:   newCache(ttl),
		fetcher: fetcher,
	}
}

// LatestVersion reads the "latest" dist-tag of package name.
func (c *NPMClient) LatestVersion(ctx context.Context, name string) (*Release, error) {
	if r, ok := c.cache.get(name); ok {
		return r, nil
	}

	// URL escape the package name for scoped packages
	var pkg struct {
		Version string `json:"version"`
	}
	if err := getJSON(ctx, c.fetcher, fmt.Sprintf("%s/%s/latest", c.baseURL, url.PathEscape(name)), &pkg); err != nil {
		return nil, err
	}
	if pkg.Version == "" {
		return nil, fmt.Errorf("npm registry returned no version for %s", name)
	}

	r := &Release{Version: pkg.Version}
	c.cache.put(name, r)
	return r, nil
}

func getJSON(ctx context.Context, fetcher HTTPFetcher, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := fetcher.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry returned status %d for %s", resp.StatusCode, rawURL)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawURL, err)
	}
	return nil
}

// NewClient creates a registry client for the named source
func NewClient(source string, ttl time.Duration) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", "go", "goproxy":
		return NewGoClient(ttl), nil
	case "npm":
		return NewNPMClient(ttl), nil
	default:
		return nil, fmt.Errorf("unknown registry source %q (expected go or npm)", source)
	}
}
