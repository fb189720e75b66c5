package actuator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPActuator forwards actions to an orchestration sidecar over HTTP.
// The sidecar answers {"ok": bool, "message": string}.
type HTTPActuator struct {
	endpoint string
	client   *http.Client
}

type HTTPActuatorConfig struct {
	Endpoint string
	Timeout  time.Duration
}

func NewHTTPActuator(cfg HTTPActuatorConfig) *HTTPActuator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPActuator{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type actuatorRequest struct {
	Service  string `json:"service"`
	Replicas int    `json:"replicas,omitempty"`
	Message  string `json:"message,omitempty"`
}

type actuatorResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (a *HTTPActuator) Restart(ctx context.Context, service string) (string, error) {
	return a.post(ctx, "/restart", actuatorRequest{Service: service})
}

func (a *HTTPActuator) Scale(ctx context.Context, service string, replicas int) (string, error) {
	return a.post(ctx, "/scale", actuatorRequest{Service: service, Replicas: replicas})
}

func (a *HTTPActuator) Alert(ctx context.Context, service, message string) (string, error) {
	return a.post(ctx, "/alert", actuatorRequest{Service: service, Message: message})
}

func (a *HTTPActuator) post(ctx context.Context, path string, payload actuatorRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode actuator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create actuator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrActuatorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrActionRejected, resp.StatusCode)
	}

	var result actuatorResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode actuator response: %w", err)
	}

	if !result.OK {
		return result.Message, fmt.Errorf("%w: %s", ErrActionRejected, result.Message)
	}

	return result.Message, nil
}
