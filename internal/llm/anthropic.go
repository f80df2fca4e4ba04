package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"
)

const defaultMaxTokens = 8192

// AnthropicConfig contains configuration for the Anthropic provider.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY.
	APIKey string
	// UseAWSBedrock routes requests through AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g. "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
	// Models maps a complexity hint to the model that serves it.
	// Missing entries fall back to the medium model, then to Sonnet.
	Models map[Complexity]anthropic.Model
}

// AnthropicProvider serves completions via the Anthropic Messages API,
// optionally through AWS Bedrock.
type AnthropicProvider struct {
	client  anthropic.Client
	models  map[Complexity]anthropic.Model
	bedrock bool
}

// NewAnthropicProvider creates an Anthropic-backed provider.
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	models := map[Complexity]anthropic.Model{
		ComplexitySimple:  anthropic.ModelClaude3_5Haiku20241022,
		ComplexityMedium:  anthropic.ModelClaudeSonnet4_20250514,
		ComplexityComplex: anthropic.ModelClaudeSonnet4_5_20250929,
	}
	for hint, model := range cfg.Models {
		models[hint] = model
	}

	return &AnthropicProvider{
		client:  anthropic.NewClient(opts...),
		models:  models,
		bedrock: cfg.UseAWSBedrock,
	}, nil
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete implements Provider.
func (p *AnthropicProvider) Complete(ctx context.Context, req Request, hint Complexity) (*Response, error) {
	params := p.buildParams(req, hint)

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic complete: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}

	return &Response{
		Content:  text.String(),
		Model:    string(resp.Model),
		Provider: p.Name(),
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}

// Stream implements Provider. Text deltas are emitted as they arrive;
// the returned channel closes after a final chunk with Done set.
func (p *AnthropicProvider) Stream(ctx context.Context, req Request, hint Complexity) (<-chan Chunk, error) {
	params := p.buildParams(req, hint)

	stream := p.client.Messages.NewStreaming(ctx, params)

	out := make(chan Chunk, 64)
	go func() {
		defer close(out)

		var acc anthropic.Message
		for stream.Next() {
			event := stream.Current()
			_ = acc.Accumulate(event)

			if variant, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
				if delta, ok := variant.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
					select {
					case out <- Chunk{Delta: delta.Text}:
					case <-ctx.Done():
						return
					}
				}
			}
		}

		final := Chunk{Done: true}
		if stream.Err() == nil {
			final.Usage = Usage{
				InputTokens:  acc.Usage.InputTokens,
				OutputTokens: acc.Usage.OutputTokens,
			}
		}
		select {
		case out <- final:
		case <-ctx.Done():
		}
	}()

	return out, nil
}

// buildParams translates a provider-agnostic request into Messages API
// parameters. System messages are concatenated into the system prompt.
func (p *AnthropicProvider) buildParams(req Request, hint Complexity) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     p.modelFor(hint),
		MaxTokens: maxTokens,
		System:    system,
		Messages:  messages,
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	return params
}

// modelFor picks the model for a complexity hint, translating to a
// Bedrock inference profile when running through Bedrock.
func (p *AnthropicProvider) modelFor(hint Complexity) anthropic.Model {
	model, ok := p.models[hint]
	if !ok {
		model = p.models[ComplexityMedium]
	}
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	if p.bedrock {
		model = translateModelForBedrock(model)
	}
	return model
}

// translateModelForBedrock converts standard Anthropic model names to
// Bedrock cross-region inference profile format.
func translateModelForBedrock(model anthropic.Model) anthropic.Model {
	bedrockModels := map[anthropic.Model]string{
		anthropic.ModelClaudeSonnet4_20250514:   "us.anthropic.claude-sonnet-4-20250514-v1:0",
		anthropic.ModelClaudeSonnet4_5_20250929: "us.anthropic.claude-sonnet-4-5-20250929-v1:0",
		anthropic.ModelClaudeHaiku4_5_20251001:  "us.anthropic.claude-haiku-4-5-20251001-v1:0",
		anthropic.ModelClaudeOpus4_1_20250805:   "us.anthropic.claude-opus-4-1-20250805-v1:0",
		anthropic.ModelClaude3_5Haiku20241022:   "us.anthropic.claude-3-5-haiku-20241022-v1:0",
	}

	if bedrockModel, ok := bedrockModels[model]; ok {
		return anthropic.Model(bedrockModel)
	}
	return model
}
