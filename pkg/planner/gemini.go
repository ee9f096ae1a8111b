package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/genai"
)

// callGeminiWithSDK calls the Gemini API using the official SDK and
// returns the raw completion text. The single outbound call per request
// is bounded by the planner's timeout; retries here cover transient
// failures only and stay inside that bound.
func (p *Planner) callGeminiWithSDK(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cacheKey := generatorCacheKey(p.geminiModel, systemPrompt, userPrompt)
	if p.cache != nil {
		if cached, found := p.cache.GetIfPresent(cacheKey); found && cached != "" {
			p.logger.Debug("Gemini cache hit", "response_length", len(cached))
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var config *genai.ClientConfig
	if p.geminiAPIKey != "" {
		// API keys work with the Gemini API backend, not Vertex AI.
		config = &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  p.geminiAPIKey,
		}
	} else {
		// Application Default Credentials go through Vertex AI.
		config = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  p.gcpProject,
			Location: "us-central1",
		}
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return "", fmt.Errorf("%w: creating genai client: %w", ErrGeneratorUnavailable, err)
	}

	modelName := strings.TrimPrefix(p.geminiModel, "models/")
	p.logger.Debug("calling Gemini", "model", modelName, "prompt_length", len(userPrompt))

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: userPrompt},
			},
		},
	}

	temperature := float32(0.7)
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		},
	}

	var resp *genai.GenerateContentResponse
	err = retry.Do(
		func() error {
			var genErr error
			resp, genErr = client.Models.GenerateContent(ctx, modelName, contents, genConfig)
			if genErr != nil {
				if strings.Contains(genErr.Error(), "context deadline exceeded") ||
					strings.Contains(genErr.Error(), "timeout") ||
					strings.Contains(genErr.Error(), "temporary failure") ||
					strings.Contains(genErr.Error(), "503") ||
					strings.Contains(genErr.Error(), "502") ||
					strings.Contains(genErr.Error(), "500") {
					p.logger.Warn("Gemini transient error, retrying", "error", genErr)
					return genErr
				}
				p.logger.Error("Gemini non-transient error", "error", genErr)
				return retry.Unrecoverable(genErr)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second*2),
		retry.MaxDelay(time.Second*10),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Debug("retrying Gemini call", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneratorUnavailable, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrGeneratorUnavailable)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidate content", ErrGeneratorUnavailable)
	}

	text := ""
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			text = part.Text
			break
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text in response", ErrGeneratorUnavailable)
	}

	if p.cache != nil {
		p.cache.Set(cacheKey, text)
		p.logger.Debug("cached Gemini response", "response_length", len(text))
	}

	return text, nil
}

// generatorCacheKey hashes model and both prompts so any preference
// change misses the cache.
func generatorCacheKey(model, systemPrompt, userPrompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(systemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(userPrompt))
	return hex.EncodeToString(h.Sum(nil))
}
