package veo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
)

// ProviderKindVeo is the kind this adapter registers under.
const ProviderKindVeo generation.ProviderKind = "veo"

// defaultModel is used when the payload does not name a model.
const defaultModel = "veo-2.0-generate-001"

// ErrInvalidConfig is returned when the provider cannot be constructed.
var ErrInvalidConfig = errors.New("invalid veo configuration")

// Config holds the Veo adapter settings.
type Config struct {
	// APIKey authenticates against the Gemini API.
	APIKey string

	// Model overrides the default Veo model for payloads that do not name
	// one themselves.
	Model string
}

// Payload is the provider-specific request payload this adapter accepts.
// A bare string payload is also accepted and treated as the prompt.
type Payload struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// videoOperations is the narrow slice of the genai client this adapter
// uses, extracted so tests can substitute a fake.
type videoOperations interface {
	generate(ctx context.Context, model, prompt string) (*genai.GenerateVideosOperation, error)
	get(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

// genaiOperations adapts the real genai client to videoOperations.
type genaiOperations struct {
	client *genai.Client
}

func (g *genaiOperations) generate(ctx context.Context, model, prompt string) (*genai.GenerateVideosOperation, error) {
	return g.client.Models.GenerateVideos(ctx, model, prompt, nil, nil)
}

func (g *genaiOperations) get(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return g.client.Operations.GetVideosOperation(ctx, op, nil)
}

// Provider is a stateless generation.ProviderClient backed by Veo.
type Provider struct {
	ops    videoOperations
	model  string
	logger *slog.Logger
}

// NewProvider creates a Veo provider from the given configuration.
func NewProvider(ctx context.Context, cfg Config, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create genai client: %v", ErrInvalidConfig, err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Provider{
		ops:    &genaiOperations{client: client},
		model:  model,
		logger: logger.With("component", "veo_provider"),
	}, nil
}

// Kind implements generation.ProviderClient.
func (p *Provider) Kind() generation.ProviderKind {
	return ProviderKindVeo
}

// Submit implements generation.ProviderClient. The returned task ID is the
// long-running operation name.
func (p *Provider) Submit(ctx context.Context, payload any) (string, error) {
	prompt, model, err := p.resolvePayload(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrSubmissionFailed, err)
	}

	op, err := p.ops.generate(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrSubmissionFailed, err)
	}
	if op == nil || op.Name == "" {
		return "", fmt.Errorf("%w: operation has no name", generation.ErrSubmissionFailed)
	}

	p.logger.Debug("video generation started", "operation", op.Name, "model", model)
	return op.Name, nil
}

// Poll implements generation.ProviderClient.
func (p *Provider) Poll(ctx context.Context, taskID string) (generation.PollResult, error) {
	op, err := p.ops.get(ctx, &genai.GenerateVideosOperation{Name: taskID})
	if err != nil {
		return generation.PollResult{}, fmt.Errorf("get operation: %w", err)
	}

	if op == nil || !op.Done {
		return generation.PollResult{
			Status:          generation.StatusProcessing,
			ProgressPercent: generation.ProgressUnknown,
		}, nil
	}

	if len(op.Error) > 0 {
		return generation.PollResult{
			Status:          generation.StatusFailed,
			ProgressPercent: generation.ProgressUnknown,
			FailureDetail:   operationErrorDetail(op.Error),
		}, nil
	}

	uri := firstVideoURI(op)
	if uri == "" {
		// Done with neither an error nor output is a provider-side
		// failure, not something to keep polling for.
		return generation.PollResult{
			Status:          generation.StatusFailed,
			ProgressPercent: generation.ProgressUnknown,
			FailureDetail:   "operation finished without generated video",
		}, nil
	}

	return generation.PollResult{
		Status:          generation.StatusCompleted,
		ProgressPercent: 100,
		Result:          uri,
	}, nil
}

// resolvePayload extracts prompt and model from the caller payload.
func (p *Provider) resolvePayload(payload any) (prompt, model string, err error) {
	model = p.model

	switch v := payload.(type) {
	case Payload:
		prompt = v.Prompt
		if v.Model != "" {
			model = v.Model
		}
	case *Payload:
		if v == nil {
			return "", "", errors.New("payload cannot be nil")
		}
		prompt = v.Prompt
		if v.Model != "" {
			model = v.Model
		}
	case string:
		prompt = v
	case map[string]any:
		if s, ok := v["prompt"].(string); ok {
			prompt = s
		}
		if s, ok := v["model"].(string); ok && s != "" {
			model = s
		}
	default:
		return "", "", fmt.Errorf("unsupported payload type %T", payload)
	}

	if prompt == "" {
		return "", "", errors.New("prompt cannot be empty")
	}
	return prompt, model, nil
}

func operationErrorDetail(opErr map[string]any) string {
	if msg, ok := opErr["message"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("%v", opErr)
}

func firstVideoURI(op *genai.GenerateVideosOperation) string {
	if op.Response == nil {
		return ""
	}
	for _, gv := range op.Response.GeneratedVideos {
		if gv != nil && gv.Video != nil && gv.Video.URI != "" {
			return gv.Video.URI
		}
	}
	return ""
}
