package summary

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akeil/coursedoc"
)

func TestFromEnvMissing(t *testing.T) {
	t.Setenv(EnvAzureKey, "key")
	t.Setenv(EnvAzureEndpoint, "")
	t.Setenv(EnvAzureDeployment, "")

	_, err := FromEnv(Azure)
	require.Error(t, err)
	assert.True(t, coursedoc.IsConfigurationError(err))
	assert.Contains(t, err.Error(), EnvAzureEndpoint)
	assert.Contains(t, err.Error(), EnvAzureDeployment)
	assert.NotContains(t, err.Error(), EnvAzureKey+",")
}

func TestFromEnvAzure(t *testing.T) {
	t.Setenv(EnvAzureKey, "key")
	t.Setenv(EnvAzureEndpoint, "https://example.openai.azure.com/")
	t.Setenv(EnvAzureDeployment, "lessons")

	c, err := FromEnv(Azure)
	require.NoError(t, err)
	assert.Equal(t, "https://example.openai.azure.com", c.Endpoint)
	assert.Equal(t, "lessons", c.Deployment)
	assert.Equal(t, "lessons", c.Model)

	s, err := New(context.Background(), c)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestFromEnvUnknown(t *testing.T) {
	_, err := FromEnv("other")
	assert.True(t, coursedoc.IsConfigurationError(err))
}

func TestNewWithoutKey(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: OpenAI})
	assert.True(t, coursedoc.IsConfigurationError(err))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("COURSEDOC_TEST_VALUE=from-file\n"), 0644))
	t.Setenv("COURSEDOC_TEST_VALUE", "")
	os.Unsetenv("COURSEDOC_TEST_VALUE")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("COURSEDOC_TEST_VALUE"))
}
