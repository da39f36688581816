package summary

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"

	"github.com/akeil/coursedoc"
)

type geminiClient struct {
	client *genai.Client
}

// NewGeminiClient adapts a Gemini client to the chat completion interface.
func NewGeminiClient(c *genai.Client) Client {
	return &geminiClient{client: c}
}

func (g *geminiClient) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if len(request.Messages) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("no messages in request")
	}

	model := g.client.GenerativeModel(request.Model)
	model.SetTemperature(request.Temperature)
	if request.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(request.MaxTokens))
	}

	var parts []genai.Part
	for _, m := range request.Messages {
		p, err := toGeminiParts(m)
		if err != nil {
			return openai.ChatCompletionResponse{}, err
		}
		parts = append(parts, p...)
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return openai.ChatCompletionResponse{}, errors.New("no response from model")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}

	return openai.ChatCompletionResponse{
		Model: request.Model,
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: sb.String(),
				},
			},
		},
	}, nil
}

// toGeminiParts converts a chat message. System messages are sent as
// text with a prefix.
func toGeminiParts(m openai.ChatCompletionMessage) ([]genai.Part, error) {
	prefix := ""
	if m.Role == openai.ChatMessageRoleSystem {
		prefix = "System: "
	}

	if m.MultiContent == nil {
		return []genai.Part{genai.Text(prefix + m.Content)}, nil
	}

	var parts []genai.Part
	for _, c := range m.MultiContent {
		switch c.Type {
		case openai.ChatMessagePartTypeImageURL:
			data, mime, err := coursedoc.DecodeDataURL(c.ImageURL.URL)
			if err != nil {
				return nil, err
			}
			parts = append(parts, genai.Blob{MIMEType: mime, Data: data})
		default:
			parts = append(parts, genai.Text(prefix+c.Text))
		}
	}
	return parts, nil
}
