package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckForUpdate(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse("https://registry.npmjs.org/appversion/latest", 200, `{"version":"2.1.0"}`)
	client := NewNPMClientWithFetcher(time.Hour, mock)

	notice := CheckForUpdate(context.Background(), client, "appversion", "2.0.3", time.Second)
	require.NotNil(t, notice)
	assert.Equal(t, "2.0.3", notice.Current)
	assert.Equal(t, "2.1.0", notice.Latest)

	assert.Nil(t, CheckForUpdate(context.Background(), client, "appversion", "2.1.0", time.Second))
	assert.Nil(t, CheckForUpdate(context.Background(), client, "appversion", "3.0.0", 0))
}

func TestCheckForUpdateIsBestEffort(t *testing.T) {
	mock := NewMockHTTPFetcher()
	client := NewNPMClientWithFetcher(time.Hour, mock)

	assert.Nil(t, CheckForUpdate(context.Background(), client, "missing", "1.0.0", time.Second))
	assert.Nil(t, CheckForUpdate(context.Background(), client, "appversion", "dev", time.Second))
	assert.Nil(t, CheckForUpdate(context.Background(), nil, "appversion", "1.0.0", time.Second))
	assert.Nil(t, CheckForUpdate(context.Background(), client, "", "1.0.0", time.Second))
}
