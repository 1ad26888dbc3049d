package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoClientLatestVersion(t *testing.T) {
	mock := NewMockHTTPFetcher()
	url := "https://proxy.golang.org/github.com/fulmenhq/appversion/@latest"
	mock.AddResponse(url, 200, `{"Version":"v1.4.0","Time":"2025-06-01T10:00:00Z"}`)

	client := NewGoClientWithFetcher(time.Hour, mock)
	release, err := client.LatestVersion(context.Background(), "github.com/fulmenhq/appversion")
	require.NoError(t, err)
	assert.Equal(t, "v1.4.0", release.Version)
	assert.Equal(t, 2025, release.PublishDate.Year())

	// second lookup is served from the cache
	_, err = client.LatestVersion(context.Background(), "github.com/fulmenhq/appversion")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Calls(url))
}

func TestGoClientEscapesUppercase(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse("https://proxy.golang.org/github.com/!burnt!sushi/toml/@latest", 200, `{"Version":"v1.5.0"}`)

	release, err := NewGoClientWithFetcher(time.Hour, mock).LatestVersion(context.Background(), "github.com/BurntSushi/toml")
	require.NoError(t, err)
	assert.Equal(t, "v1.5.0", release.Version)
}

func TestGoClientErrors(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddError("https://proxy.golang.org/example.com/down/@latest", errors.New("connection refused"))
	mock.AddResponse("https://proxy.golang.org/example.com/empty/@latest", 200, `{}`)
	mock.AddResponse("https://proxy.golang.org/example.com/garbage/@latest", 200, `not json`)
	client := NewGoClientWithFetcher(time.Hour, mock)

	for _, name := range []string{"example.com/down", "example.com/empty", "example.com/garbage", "example.com/missing", "bad path//x"} {
		_, err := client.LatestVersion(context.Background(), name)
		assert.Error(t, err, name)
	}
}

func TestNPMClientLatestVersion(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse("https://registry.npmjs.org/appversion/latest", 200, `{"name":"appversion","version":"1.7.1"}`)
	mock.AddResponse("https://registry.npmjs.org/@scope%2Fpkg/latest", 200, `{"version":"0.2.0"}`)
	client := NewNPMClientWithFetcher(time.Hour, mock)

	release, err := client.LatestVersion(context.Background(), "appversion")
	require.NoError(t, err)
	assert.Equal(t, "1.7.1", release.Version)

	release, err = client.LatestVersion(context.Background(), "@scope/pkg")
	require.NoError(t, err)
	assert.Equal(t, "0.2.0", release.Version)
}

func TestCancelledContext(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse("https://registry.npmjs.org/appversion/latest", 200, `{"version":"1.7.1"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNPMClientWithFetcher(time.Hour, mock).LatestVersion(ctx, "appversion")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient(t *testing.T) {
	for _, source := range []string{"", "go", "GoProxy", "npm"} {
		c, err := NewClient(source, time.Minute)
		require.NoError(t, err, source)
		assert.NotNil(t, c)
	}
	_, err := NewClient("pypi", time.Minute)
	assert.Error(t, err)
}
