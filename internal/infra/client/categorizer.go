// Package client holds outbound clients for third-party APIs.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var tracer = otel.Tracer("client")

// GeminiCategorizer implements port.Categorizer against the Gemini API.
// Suggestions are advisory; a failed or garbled model response surfaces as an
// error and never touches stored data.
type GeminiCategorizer struct {
	client *genai.Client
	model  string
	cb     *gobreaker.CircuitBreaker
	cfg    resilience.Config
	logger *zap.Logger
}

// NewGeminiCategorizer builds the client. The API key is read by the genai
// SDK from GEMINI_API_KEY / GOOGLE_API_KEY unless set explicitly.
func NewGeminiCategorizer(ctx context.Context, apiKey, model string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) (*GeminiCategorizer, error) {
	clientCfg := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	}
	if apiKey != "" {
		clientCfg.APIKey = apiKey
	}

	c, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiCategorizer{
		client: c,
		model:  model,
		cb:     cb,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// DisabledCategorizer stands in when no API key is configured. Every call
// fails with an external-service error so the handler returns 502 instead of
// panicking on a nil client.
type DisabledCategorizer struct{}

// Suggest always fails.
func (DisabledCategorizer) Suggest(_ context.Context, _ []domain.Fund, _ []domain.CategorizeItem) ([]domain.CategorySuggestion, error) {
	return nil, &domain.ErrExternalService{Service: "gemini", Err: errors.New("categorizer not configured")}
}

// modelSuggestion is the shape we require the model to emit.
type modelSuggestion struct {
	Reference  string  `json:"reference"`
	FundName   string  `json:"fund_name"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Suggest asks the model to map each uncategorized item onto one of the
// church's funds. Unknown fund names and invalid types are filtered out
// rather than passed through.
func (g *GeminiCategorizer) Suggest(ctx context.Context, funds []domain.Fund, items []domain.CategorizeItem) ([]domain.CategorySuggestion, error) {
	ctx, span := tracer.Start(ctx, "Gemini.Suggest")
	defer span.End()
	span.SetAttributes(attribute.Int("items.count", len(items)))

	if len(items) == 0 {
		return []domain.CategorySuggestion{}, nil
	}

	prompt := buildPrompt(funds, items)

	var raw string
	_, err := g.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, g.cfg, func() error {
			contents := []*genai.Content{
				{
					Role:  "user",
					Parts: []*genai.Part{{Text: prompt}},
				},
			}
			resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
			if err != nil {
				return err
			}
			raw = resp.Text()
			if raw == "" {
				return fmt.Errorf("empty response from model")
			}
			return nil
		})
	})
	if err != nil {
		g.logger.Warn("categorizer: model call failed", zap.Error(err))
		return nil, &domain.ErrExternalService{Service: "gemini", Err: err}
	}

	clean := cleanModelJSON(raw)
	var parsed []modelSuggestion
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		g.logger.Warn("categorizer: invalid model JSON", zap.Error(err))
		return nil, &domain.ErrExternalService{
			Service: "gemini",
			Err:     fmt.Errorf("unmarshal model response: %w", err),
		}
	}

	fundNames := make(map[string]string, len(funds)) // lower(name) -> canonical name
	for _, f := range funds {
		fundNames[strings.ToLower(f.Name)] = f.Name
	}

	suggestions := make([]domain.CategorySuggestion, 0, len(parsed))
	for _, s := range parsed {
		canonical, ok := fundNames[strings.ToLower(s.FundName)]
		if !ok {
			g.logger.Debug("categorizer: dropping suggestion for unknown fund",
				zap.String("fund_name", s.FundName))
			continue
		}
		if s.Type != domain.TransactionIncome && s.Type != domain.TransactionExpense {
			continue
		}
		if s.Confidence < 0 {
			s.Confidence = 0
		}
		if s.Confidence > 1 {
			s.Confidence = 1
		}
		suggestions = append(suggestions, domain.CategorySuggestion{
			Reference:  s.Reference,
			FundName:   canonical,
			Type:       s.Type,
			Confidence: s.Confidence,
		})
	}

	return suggestions, nil
}

func buildPrompt(funds []domain.Fund, items []domain.CategorizeItem) string {
	var b strings.Builder

	b.WriteString("You are a bookkeeping assistant for a church finance system.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- For each entry below, pick the best-matching fund and decide whether it is income or an expense.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	b.WriteString("- Output a JSON array of objects.\n\n")
	b.WriteString("Each object must have these fields:\n")
	b.WriteString("- \"reference\": string, copied verbatim from the entry\n")
	b.WriteString("- \"fund_name\": string, exactly one of the fund names listed below\n")
	b.WriteString("- \"type\": string, \"income\" or \"expense\"\n")
	b.WriteString("- \"confidence\": number between 0 and 1\n\n")

	b.WriteString("Funds:\n")
	for _, f := range funds {
		fmt.Fprintf(&b, "- %q (%s)", f.Name, f.Type)
		if f.Description != "" {
			fmt.Fprintf(&b, ": %s", f.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nEntries:\n")
	for _, it := range items {
		fmt.Fprintf(&b, "- reference=%q description=%q", it.Reference, it.Description)
		if it.Amount != 0 {
			fmt.Fprintf(&b, " amount=%.2f", it.Amount)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nReturn ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Output must begin with \"[\" and end with \"]\".\n")

	return b.String()
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
