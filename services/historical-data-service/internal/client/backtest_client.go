package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// EngineError is a non-success answer from the backtest engine
type EngineError struct {
	StatusCode int
	Message    string
}

func (e *EngineError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backtest engine returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backtest engine returned status %d", e.StatusCode)
}

// Retryable reports whether the request may succeed when sent again
func (e *EngineError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// BacktestClient handles communication with the Backtesting Service
type BacktestClient struct {
	baseURL    string
	serviceKey string
	maxRetries uint64
	httpClient *http.Client
	newBackOff func() backoff.BackOff
	logger     *zap.Logger
}

// NewBacktestClient creates a new backtesting service client
func NewBacktestClient(baseURL, serviceKey string, timeout time.Duration, maxRetries uint64, logger *zap.Logger) *BacktestClient {
	return &BacktestClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		maxRetries: maxRetries,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
		logger: logger,
	}
}

// CompareStrategies runs a strategy comparison on the backtest engine and returns
// its result untouched. Network failures, 5xx and 429 answers are retried.
func (c *BacktestClient) CompareStrategies(ctx context.Context, request *model.EngineCompareRequest) (json.RawMessage, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal compare request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/backtest/compare", c.baseURL)

	var result json.RawMessage
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Service-Key", c.serviceKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			engineErr := &EngineError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
			if engineErr.Retryable() {
				return engineErr
			}
			return backoff.Permanent(engineErr)
		}

		if !json.Valid(body) {
			return backoff.Permanent(fmt.Errorf("backtest engine returned invalid JSON"))
		}
		result = body
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Retrying backtest compare request",
			zap.Error(err),
			zap.Duration("wait", wait))
	}

	c.logger.Info("Sending compare request",
		zap.String("url", url),
		zap.Int("strategies", len(request.Strategies)))

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		c.logger.Error("Failed to run strategy comparison", zap.Error(err))
		return nil, err
	}

	return result, nil
}

// CheckHealth checks if the backtesting service is healthy
func (c *BacktestClient) CheckHealth(ctx context.Context) (bool, error) {
	url := fmt.Sprintf("%s/health", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to send health check to backtesting service", zap.Error(err))
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// errorMessage pulls {"error": "..."} out of an error body when present
func errorMessage(body []byte) string {
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err != nil {
		return ""
	}
	return errorResp.Error
}
