package detect

import (
	"context"
	"fmt"

	"github.com/maastricht-university/call-auditor/clients"
)

// Classifier labels texts 0/1. Probabilities may be nil.
type Classifier interface {
	Predict(ctx context.Context, texts []string) (preds []int, probs []float64, err error)
}

// MLService is the trained text classifier reached over HTTP.
type MLService struct {
	http  *clients.HTTP
	url   string
	model string
}

// NewMLService returns ErrMissingResource when no service url is configured.
func NewMLService(h *clients.HTTP, url, model string) (*MLService, error) {
	if url == "" {
		return nil, fmt.Errorf("ml service url not configured: %w", ErrMissingResource)
	}
	if model == "" {
		model = "profanity_baseline"
	}
	return &MLService{http: h, url: url, model: model}, nil
}

func (m *MLService) Predict(ctx context.Context, texts []string) ([]int, []float64, error) {
	if len(texts) == 0 {
		return []int{}, nil, nil
	}
	out, err := m.http.Predict(ctx, m.url, m.model, texts)
	if err != nil {
		return nil, nil, err
	}
	return out.Predictions, out.Probabilities, nil
}

// Train submits a seed CSV to the service and returns the stored model path.
func (m *MLService) Train(ctx context.Context, csvPath string) (*clients.TrainResp, error) {
	return m.http.Train(ctx, m.url, m.model, csvPath)
}
