package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/call-auditor/clients"
)

type Entity string

const (
	EntityProfanity Entity = "profanity"
	EntityPrivacy   Entity = "privacy"
)

// Generator is the slice of clients.HTTP the LLM classifier needs.
type Generator interface {
	Generate(ctx context.Context, url, apiKey, model, prompt string) (*clients.GenerateResp, error)
}

// LLM classifies one text per request. A failed request yields label 0.
type LLM struct {
	gen    Generator
	url    string
	apiKey string
	model  string
	log    *logrus.Entry
}

func NewLLM(gen Generator, url, apiKey, model string, logger *logrus.Logger) (*LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm api key not set: %w", ErrMissingResource)
	}
	if url == "" {
		url = clients.DefaultLLMURL
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &LLM{gen: gen, url: url, apiKey: apiKey, model: model, log: logger.WithField("component", "llm")}, nil
}

// Classify returns one label per text. Errors are logged and mapped to 0,
// so an unavailable service under-reports instead of failing the run.
func (l *LLM) Classify(ctx context.Context, texts []string, entity Entity) []int {
	labels := make([]int, len(texts))
	for i, text := range texts {
		resp, err := l.gen.Generate(ctx, l.url, l.apiKey, l.model, prompt(entity, text))
		if err != nil {
			l.log.WithError(err).WithField("index", i).Warn("llm classification failed")
			continue
		}
		if strings.Contains(strings.TrimSpace(resp.Text()), "1") {
			labels[i] = 1
		}
	}
	return labels
}

func prompt(entity Entity, text string) string {
	if entity == EntityPrivacy {
		return fmt.Sprintf(privacyPrompt, text)
	}
	return fmt.Sprintf(profanityPrompt, text)
}

const privacyPrompt = `You are a strict compliance auditor.
Decide if this text contains **sensitive personal data** or **compliance violations**.

Flag ONLY if it contains:
- Credit card numbers
- SSN or government ID
- Bank details
- Addresses
- Emails
- Phone numbers
- Passwords
- Dates of birth
- HIPAA or medical details

Normal greetings, first names, or company names are SAFE and should NOT be flagged.

Text: %q

Respond ONLY with "1" if it contains sensitive data or violation, otherwise "0".`

const profanityPrompt = `You are a strict language filter.
Does this text contain profanity or offensive language?
Text: %q
Respond ONLY "1" if profanity present, else "0".`
