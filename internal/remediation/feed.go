package remediation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sentinelops/sentinel/internal/registry"
	"github.com/sentinelops/sentinel/pkg/models"
)

// AnomalyFeed supplies the controller with the active-anomaly snapshot. The
// in-process deployment uses the registry directly; a split deployment polls
// the detection engine's HTTP surface.
type AnomalyFeed interface {
	Fetch(ctx context.Context) ([]models.AnomalyPrediction, error)
}

type RegistryFeed struct {
	registry *registry.Registry
}

func NewRegistryFeed(reg *registry.Registry) *RegistryFeed {
	return &RegistryFeed{registry: reg}
}

func (f *RegistryFeed) Fetch(ctx context.Context) ([]models.AnomalyPrediction, error) {
	return f.registry.Current(), nil
}

// HTTPFeed fetches active anomalies from a remote detection engine.
type HTTPFeed struct {
	endpoint string
	client   *http.Client
}

func NewHTTPFeed(endpoint string, timeout time.Duration) *HTTPFeed {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &HTTPFeed{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFeed) Fetch(ctx context.Context) ([]models.AnomalyPrediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"/anomalies", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create anomaly feed request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anomaly feed unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anomaly feed returned status %d", resp.StatusCode)
	}

	var body struct {
		Anomalies []models.AnomalyPrediction `json:"anomalies"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode anomaly feed response: %w", err)
	}
	return body.Anomalies, nil
}
