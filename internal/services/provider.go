package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rahul4469/propmate/internal/models"
	"go.uber.org/zap"
)

// Per-call timeouts. Each call is attempted exactly once.
const (
	SearchTimeout     = 15 * time.Second
	ReplyTimeout      = 15 * time.Second
	ExtractionTimeout = 20 * time.Second
)

// providerClient is the request/response contract shared by every external API:
// JSON POST, bearer auth, fixed timeout, status code to error kind mapping.
type providerClient struct {
	name       string // human-readable, used in error messages
	httpClient *http.Client
	logger     *zap.Logger
}

func newProviderClient(name string, httpClient *http.Client, logger *zap.Logger) *providerClient {
	if httpClient == nil {
		// Deadlines come from the per-call context, not the client.
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &providerClient{
		name:       name,
		httpClient: httpClient,
		logger:     logger.With(zap.String("provider", name)),
	}
}

// postJSON sends payload to url and decodes a 2xx JSON body into out.
func (p *providerClient) postJSON(ctx context.Context, url, apiKey string, timeout time.Duration, payload, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return p.apiError(0, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return p.apiError(0, "failed to create request", err)
	}
	p.setHeaders(req, apiKey)

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			p.logger.Warn("request timed out", zap.String("url", url), zap.Duration("elapsed", time.Since(start)))
			return p.apiError(0, "request timed out", err)
		}
		p.logger.Warn("request failed", zap.String("url", url), zap.Error(err))
		return p.apiError(0, "request error", err)
	}
	defer resp.Body.Close()

	p.logger.Debug("response received",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := p.checkResponse(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return p.apiError(0, "request timed out", err)
		}
		return p.apiError(resp.StatusCode, "failed to decode response", err)
	}

	return nil
}

func (p *providerClient) setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// checkResponse maps non-2xx statuses onto the error taxonomy.
func (p *providerClient) checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	p.logger.Warn("provider returned error status",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", body),
	)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &models.ProviderError{
			Kind:       models.KindAuthentication,
			Provider:   p.name,
			StatusCode: resp.StatusCode,
			Message:    p.name + " authentication failed",
		}
	case http.StatusTooManyRequests:
		return &models.ProviderError{
			Kind:       models.KindRateLimit,
			Provider:   p.name,
			StatusCode: resp.StatusCode,
			Message:    p.name + " rate limit exceeded",
		}
	default:
		return p.apiError(resp.StatusCode, fmt.Sprintf("HTTP error: %d", resp.StatusCode), nil)
	}
}

func (p *providerClient) apiError(status int, msg string, cause error) *models.ProviderError {
	return &models.ProviderError{
		Kind:       models.KindAPI,
		Provider:   p.name,
		StatusCode: status,
		Message:    p.name + " " + msg,
		Err:        cause,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
