package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// DefaultLLMURL is the Gemini REST endpoint root.
const DefaultLLMURL = "https://generativelanguage.googleapis.com/v1beta"

// --- LLM (models/{model}:generateContent) ---
type Part struct {
	Text string `json:"text"`
}
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}
type GenerateReq struct {
	Contents []Content `json:"contents"`
}
type Candidate struct {
	Content Content `json:"content"`
}
type GenerateResp struct {
	Candidates []Candidate `json:"candidates"`
}

// Text concatenates the parts of the first candidate.
func (r *GenerateResp) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func (h *HTTP) Generate(ctx context.Context, url, apiKey, model, prompt string) (*GenerateResp, error) {
	b, _ := json.Marshal(GenerateReq{Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}}})
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", url, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("generate", resp)
	}

	var out GenerateResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("generate decode: %v: %w", err, ErrExternalService)
	}
	return &out, nil
}
