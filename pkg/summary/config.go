package summary

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/logging"
)

// Provider names a summarization backend.
type Provider string

const (
	Azure  Provider = "azure"
	OpenAI Provider = "openai"
	Gemini Provider = "gemini"
)

// Environment variables holding credentials.
const (
	EnvAzureKey        = "AZURE_OPENAI_KEY"
	EnvAzureEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAzureDeployment = "AZURE_OPENAI_DEPLOYMENT_NAME"
	EnvOpenAIKey       = "OPENAI_API_KEY"
	EnvGeminiKey       = "GEMINI_API_KEY"
)

// Default models and API versions.
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-1.5-flash"
	AzureAPIVersion    = "2023-12-01-preview"
)

// Config holds the settings for a summarization client.
type Config struct {
	Provider Provider
	APIKey   string
	// Endpoint and Deployment are used with Azure only.
	Endpoint   string
	Deployment string
	Model      string
	MaxRetries uint64
}

// LoadDotEnv reads variables from the given .env files, or from ".env" in
// the working directory if none are given. Missing files are ignored and
// variables already set in the environment are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, fs.ErrNotExist) {
			logging.Debug("No env file at %q", f)
			continue
		} else if err != nil {
			return coursedoc.Wrap(err, "load env file %q", f)
		}
		logging.Debug("Loaded env file %q", f)
	}
	return nil
}

// FromEnv builds the configuration for p from the environment.
//
// Fails with a ConfigurationError that names every missing variable.
func FromEnv(p Provider) (Config, error) {
	c := Config{Provider: p, MaxRetries: 3}

	var required []string
	switch p {
	case Azure:
		c.APIKey = os.Getenv(EnvAzureKey)
		c.Endpoint = strings.TrimRight(os.Getenv(EnvAzureEndpoint), "/")
		c.Deployment = os.Getenv(EnvAzureDeployment)
		c.Model = c.Deployment
		required = []string{EnvAzureKey, EnvAzureEndpoint, EnvAzureDeployment}
	case OpenAI:
		c.APIKey = os.Getenv(EnvOpenAIKey)
		c.Model = DefaultOpenAIModel
		required = []string{EnvOpenAIKey}
	case Gemini:
		c.APIKey = os.Getenv(EnvGeminiKey)
		c.Model = DefaultGeminiModel
		required = []string{EnvGeminiKey}
	default:
		return c, coursedoc.NewConfigurationError("unknown summary provider %q", p)
	}

	var missing []string
	for _, name := range required {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return c, coursedoc.NewConfigurationError("missing %s configuration: set %s", p, strings.Join(missing, ", "))
	}

	return c, nil
}
