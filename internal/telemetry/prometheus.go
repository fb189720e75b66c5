package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sentinelops/sentinel/internal/logger"
)

// PrometheusQuerier evaluates instant queries against a Prometheus-compatible
// HTTP API.
type PrometheusQuerier struct {
	client   *http.Client
	endpoint string
}

type PrometheusConfig struct {
	Endpoint string
	Timeout  time.Duration
}

func NewPrometheusQuerier(cfg PrometheusConfig) *PrometheusQuerier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &PrometheusQuerier{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.Endpoint,
	}
}

// queryResponse matches the Prometheus instant-query API shape. The value
// pair is [unix_seconds, "stringified float"].
type queryResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string `json:"resultType"`
		Result     []struct {
			Metric map[string]string `json:"metric"`
			Value  []interface{}     `json:"value"`
		} `json:"result"`
	} `json:"data"`
}

func (q *PrometheusQuerier) Query(ctx context.Context, expr string) (Sample, error) {
	u := fmt.Sprintf("%s/api/v1/query?query=%s", q.endpoint, url.QueryEscape(expr))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: failed to create request: %v", ErrQueryFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Sample{}, ErrTimeout
		}
		return Sample{}, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Sample{}, fmt.Errorf("%w: unexpected status code %d", ErrQueryFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: failed to read response body: %v", ErrQueryFailed, err)
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if qr.Status != "success" || len(qr.Data.Result) == 0 {
		return Sample{}, ErrNoData
	}

	return parseSample(qr.Data.Result[0].Value)
}

func parseSample(pair []interface{}) (Sample, error) {
	if len(pair) != 2 {
		return Sample{}, fmt.Errorf("%w: malformed value pair", ErrInvalidResponse)
	}

	ts, ok := pair[0].(float64)
	if !ok {
		return Sample{}, fmt.Errorf("%w: malformed timestamp", ErrInvalidResponse)
	}

	raw, ok := pair[1].(string)
	if !ok {
		return Sample{}, fmt.Errorf("%w: malformed value", ErrInvalidResponse)
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: non-numeric value %q", ErrInvalidResponse, raw)
	}

	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return Sample{Value: value, Timestamp: time.Unix(sec, nsec)}, nil
}

func (q *PrometheusQuerier) HealthCheck(ctx context.Context) error {
	u := fmt.Sprintf("%s/-/healthy", q.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Debugf("Telemetry health check returned status %d", resp.StatusCode)
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

func (q *PrometheusQuerier) Close() error {
	q.client.CloseIdleConnections()
	return nil
}
