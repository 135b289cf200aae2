package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/locvowork/performpulse/internal/domain"
)

const openAIDefaultModel = "gpt-4o-mini"

// OpenAIGenerator generates JSON answers with an OpenAI-compatible chat API.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, model, baseURL string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIGenerator{client: openai.NewClient(opts...), model: model}, nil
}

func (g *OpenAIGenerator) Name() string {
	return "openai"
}

// Generate asks for a JSON object. The expected fields are listed in the
// prompt because the JSON object mode carries no schema.
func (g *OpenAIGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	model := firstNonEmpty(g.model, req.Model, openAIDefaultModel)
	// the shipped prompt file names a Gemini model
	if strings.HasPrefix(model, "gemini") {
		model = openAIDefaultModel
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(outputInstructions(req.Output)),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(float64(req.Temperature)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", &domain.TransportError{Op: "openai generate", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &domain.TransportError{Op: "openai generate", Err: errors.New("no choices in response")}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &domain.TransportError{Op: "openai generate", Err: errors.New("empty response")}
	}
	return text, nil
}

func outputInstructions(fields []domain.SchemaField) string {
	var sb strings.Builder
	sb.WriteString("Answer with a single JSON object containing exactly these fields:")
	for _, f := range fields {
		kind := "string"
		if f.Type == domain.SchemaTypeStringArray {
			kind = "array of strings"
		}
		fmt.Fprintf(&sb, "\n- %s (%s): %s", f.Name, kind, f.Description)
	}
	return sb.String()
}
