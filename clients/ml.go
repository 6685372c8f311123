package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// --- Text classifier (/predict) ---
type PredictReq struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}
type PredictResp struct {
	Predictions   []int     `json:"predictions"`
	Probabilities []float64 `json:"probabilities,omitempty"`
}

func (h *HTTP) Predict(ctx context.Context, url, model string, texts []string) (*PredictResp, error) {
	b, _ := json.Marshal(PredictReq{Model: model, Texts: texts})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/predict", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("predict", resp)
	}

	var out PredictResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("predict decode: %v: %w", err, ErrExternalService)
	}
	if len(out.Predictions) != len(texts) {
		return nil, fmt.Errorf("predict: %d predictions for %d texts: %w", len(out.Predictions), len(texts), ErrExternalService)
	}
	if out.Probabilities != nil && len(out.Probabilities) != len(texts) {
		out.Probabilities = nil
	}
	return &out, nil
}

// --- Training (/train) ---
type TrainResp struct {
	Model   string `json:"model"`
	Path    string `json:"path"`
	Samples int    `json:"samples"`
}

// Train uploads a labelled CSV (text,label columns) as multipart form data.
func (h *HTTP) Train(ctx context.Context, url, model, csvPath string) (*TrainResp, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	if err := w.WriteField("model", model); err != nil {
		return nil, err
	}
	fw, err := w.CreateFormFile("file", filepath.Base(csvPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/train", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("train", resp)
	}

	var out TrainResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("train decode: %v: %w", err, ErrExternalService)
	}
	return &out, nil
}
