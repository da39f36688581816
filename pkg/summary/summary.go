// Package summary turns source texts into structured lessons with the help
// of a language model.
package summary

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/logging"
)

// Request parameters.
const (
	MaxInputLength   = 4000
	TruncationMarker = "\n[Text truncated to stay within limits...]"
	Temperature      = 0.4
	MaxTokens        = 2000
	MaxScriptTokens  = 1000
)

// Client creates chat completions. It is implemented by *openai.Client
// and by the Gemini adapter.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Request is the input for a lesson summary.
type Request struct {
	Text string
	// Images are encoded images passed to the model along with the text.
	Images [][]byte
}

// Summarizer asks a language model for structured lessons.
type Summarizer struct {
	client Client
	model  string
	// Backoff creates the retry policy for a single request.
	Backoff func() backoff.BackOff
	closer  func() error
}

// New creates a Summarizer for the configured provider.
func New(ctx context.Context, c Config) (*Summarizer, error) {
	if c.APIKey == "" {
		return nil, coursedoc.NewConfigurationError("no API key for provider %q", c.Provider)
	}

	var s *Summarizer
	switch c.Provider {
	case Azure:
		cfg := openai.DefaultAzureConfig(c.APIKey, c.Endpoint)
		cfg.APIVersion = AzureAPIVersion
		deployment := c.Deployment
		cfg.AzureModelMapperFunc = func(model string) string {
			return deployment
		}
		s = NewWithClient(openai.NewClientWithConfig(cfg), c.Deployment)
	case OpenAI:
		s = NewWithClient(openai.NewClient(c.APIKey), c.Model)
	case Gemini:
		gc, err := genai.NewClient(ctx, option.WithAPIKey(c.APIKey))
		if err != nil {
			return nil, coursedoc.NewConfigurationError("create gemini client: %v", err)
		}
		s = NewWithClient(NewGeminiClient(gc), c.Model)
		s.closer = gc.Close
	default:
		return nil, coursedoc.NewConfigurationError("unknown summary provider %q", c.Provider)
	}

	retries := c.MaxRetries
	s.Backoff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries)
	}
	logging.Debug("Summarizer for %s with model %q", c.Provider, s.model)
	return s, nil
}

// NewWithClient creates a Summarizer with the given client and model.
func NewWithClient(c Client, model string) *Summarizer {
	return &Summarizer{
		client: c,
		model:  model,
		Backoff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
		},
	}
}

// Close releases the underlying client.
func (s *Summarizer) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

// Summarize creates a lesson from the request text.
//
// Fails with a ValidationError if the text is empty. Failures of the
// model service are reported as UpstreamErrors; responses that do not
// have the lesson structure are rejected as UpstreamMalformed.
func (s *Summarizer) Summarize(ctx context.Context, r Request) (*Lesson, error) {
	text := Truncate(r.Text, MaxInputLength)
	if text == "" {
		return nil, coursedoc.NewValidationError("the text to summarize is empty")
	}

	req := s.request(lessonPrompt, text, r.Images, MaxTokens)
	return backoff.RetryWithData(func() (*Lesson, error) {
		content, err := s.complete(ctx, req)
		if err != nil {
			return nil, err
		}
		l, err := ParseLesson(content)
		if err != nil {
			return nil, backoff.Permanent(coursedoc.NewUpstreamError(coursedoc.UpstreamMalformed, err))
		}
		return l, nil
	}, backoff.WithContext(s.Backoff(), ctx))
}

// SummarizeScript creates a single lesson part from a video script.
func (s *Summarizer) SummarizeScript(ctx context.Context, script string) (*Concept, error) {
	text := Truncate(script, MaxInputLength)
	if text == "" {
		return nil, coursedoc.NewValidationError("the script is empty")
	}

	req := s.request(scriptPrompt, text, nil, MaxScriptTokens)
	return backoff.RetryWithData(func() (*Concept, error) {
		content, err := s.complete(ctx, req)
		if err != nil {
			return nil, err
		}
		c, err := ParseConcept(content)
		if err != nil {
			return nil, backoff.Permanent(coursedoc.NewUpstreamError(coursedoc.UpstreamMalformed, err))
		}
		return c, nil
	}, backoff.WithContext(s.Backoff(), ctx))
}

func (s *Summarizer) request(system, text string, images [][]byte, maxTokens int) openai.ChatCompletionRequest {
	user := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	}
	if len(images) > 0 {
		parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: text}}
		for _, img := range images {
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: coursedoc.EncodeDataURL(http.DetectContentType(img), img)},
			})
		}
		user.Content = ""
		user.MultiContent = parts
	}

	return openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			user,
		},
		Temperature:    Temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}
}

// complete sends a single request. Only rate limit and server errors
// may be retried.
func (s *Summarizer) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		kind := Classify(err)
		logging.Warning("Summary request failed (%v): %v", kind, err)
		uerr := coursedoc.NewUpstreamError(kind, err)
		if ctx.Err() != nil || (kind != coursedoc.UpstreamRateLimit && kind != coursedoc.UpstreamServer) {
			return "", backoff.Permanent(uerr)
		}
		return "", uerr
	}
	logging.Debug("Summary request took %v", time.Since(start))

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", backoff.Permanent(coursedoc.NewUpstreamError(coursedoc.UpstreamMalformed, errors.New("empty response")))
	}
	return resp.Choices[0].Message.Content, nil
}

// Classify maps a client error to an upstream error kind
// based on the HTTP status.
func Classify(err error) coursedoc.UpstreamKind {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var gErr *googleapi.Error
	var coded interface{ HTTPCode() int }

	status := 0
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	case errors.As(err, &gErr):
		status = gErr.Code
	case errors.As(err, &coded):
		status = coded.HTTPCode()
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return coursedoc.UpstreamAuth
	case status == http.StatusTooManyRequests:
		return coursedoc.UpstreamRateLimit
	case status >= 500:
		return coursedoc.UpstreamServer
	default:
		return coursedoc.UpstreamOther
	}
}

// Truncate shortens text to at most limit characters and appends a marker
// if anything was cut.
func Truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + TruncationMarker
}

const lessonPrompt = `You are an expert teacher. Turn the following content into a structured, detailed lesson.

GUIDELINES:
1. Depth: every part has at least five to ten lines. Explain each concept in detail with examples. Avoid terse summaries.
2. Structure: the introduction presents context and goals. The body develops every concept. The conclusion sums up the key points.
3. Detail: explain why and how, give concrete examples and connect the parts.
4. Style: engaging and educational, consistent level of detail, keep the technical vocabulary.

The answer MUST be a valid JSON object with exactly this structure:
{
  "title": "string",
  "introduction": "string",
  "mainConcepts": [
    {
      "title": "string",
      "content": "string",
      "keyPoints": ["string"]
    }
  ],
  "conclusion": "string"
}`

const scriptPrompt = `You are an expert teacher. Turn the following video script into a detailed part of a lesson.

GUIDELINES:
1. Depth: the content has at least five to ten lines. Explain each concept in detail. Avoid terse summaries.
2. Structure: start with the context, develop the main concepts and close with a synthesis.
3. Detail: explain why and how, give concrete examples and connect the ideas.
4. Style: engaging and educational, keep the technical vocabulary.

The answer MUST be a valid JSON object with exactly this structure:
{
  "title": "string",
  "content": "string",
  "keyPoints": ["string"]
}`
