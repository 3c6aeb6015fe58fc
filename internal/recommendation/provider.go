package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elevohq/elevo-backend/internal/config"
	"google.golang.org/genai"
)

type Provider interface {
	Score(ctx context.Context, req *Request) (*Response, error)
}

type geminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context) (Provider, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiProvider{client: client}, nil
}

// UnavailableProvider stands in when the scoring client cannot be
// constructed: every request fails with the original error and the caller
// degrades to its fallback sample.
func UnavailableProvider(err error) Provider {
	return unavailableProvider{err: err}
}

type unavailableProvider struct {
	err error
}

func (p unavailableProvider) Score(ctx context.Context, req *Request) (*Response, error) {
	return nil, p.err
}

func (p *geminiProvider) Score(ctx context.Context, req *Request) (*Response, error) {
	log := config.WithContext(ctx)

	userPrompt, err := BuildScoringPrompt(req)
	if err != nil {
		return nil, err
	}
	prompt := systemPrompt + "\n\n" + userPrompt

	result, err := p.client.Models.GenerateContent(
		ctx,
		"gemini-2.0-flash",
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		log.WithError(err).Error("Scoring service call failed")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	raw := result.Text()
	log.Debugf("[RECOMMEND] Raw scoring response:\n%s", raw)

	if raw == "" {
		return nil, errors.New("empty response from model")
	}

	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.Trim(clean, "`")

	var resp Response
	if err := json.Unmarshal([]byte(clean), &resp); err != nil {
		log.WithError(err).Errorf("[RECOMMEND] Failed to decode JSON. Cleaned content:\n%s", clean)
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	log.Infof("[RECOMMEND] Scoring service returned %d recommendations", len(resp.Recommendations))
	return &resp, nil
}
