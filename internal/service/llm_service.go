package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"apexbox/pkg/config"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"
)

// systemInstruction frames every completion request. The provider is asked
// for a JSON object so the answer service can capture generated setups
// back into the store.
const systemInstruction = `You are an expert sim racing setup engineer. ` +
	`Given search results that may include setup guides or forum posts, extract detailed setup parameters for the car and track in question. ` +
	`These parameters include (but are not limited to): tire pressures, suspension stiffness, camber, toe, wing angles, gear ratios, brake bias, and any other relevant tuning values. ` +
	`If the search results do NOT contain any setup parameters, then provide a complete realistic setup for the specified car, track, and conditions based on your own expertise. ` +
	`Always output the setup parameters clearly and numerically if possible. ` +
	`Please output the setup parameters as a JSON object with keys such as:
{
  "tire_pressure_front": value,
  "tire_pressure_rear": value,
  "front_wing_angle": value,
  "rear_wing_angle": value,
  "suspension_front_stiffness": value,
  "suspension_rear_stiffness": value,
  "camber_front": value,
  "camber_rear": value,
  "toe_front": value,
  "toe_rear": value,
  "gear_ratios": [...],
  "brake_bias": value
}
If any value is unknown, estimate it realistically.`

// LLMService wraps the Together AI chat-completions endpoint. Together is
// OpenAI-compatible, so the OpenAI client with a custom base URL is the
// whole integration.
type LLMService struct {
	client openai.Client
	cfg    *config.CompletionConfig
	logger *zap.Logger
}

func NewLLMService(cfg *config.CompletionConfig, logger *zap.Logger) *LLMService {
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
		option.WithMaxRetries(0),
	)

	return &LLMService{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Complete issues one synchronous completion call. Any provider failure
// (auth, quota, network, timeout) comes back as an error; nothing is
// retried here.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(s.cfg.Temperature),
		MaxTokens:   openai.Int(int64(s.cfg.MaxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("completion provider: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion provider returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
