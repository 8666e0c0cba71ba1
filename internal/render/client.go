package render

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

	"github.com/sahilkadam/truesight/pkg/models"
)

// Sentinel errors for renderer client failures.
var (
	ErrRendererUnreachable = errors.New("renderer unreachable")
	ErrRenderFailed        = errors.New("render failed")
	ErrRenderTimeout       = errors.New("render timeout")
)

// Client is the interface for the PDF rendering service.
type Client interface {
	RenderPDF(ctx context.Context, report *models.Report) ([]byte, error)
	Ready(ctx context.Context) error
}

// HTTPClient implements Client against the renderer's HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new renderer HTTP client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// RenderPDF posts a report to the renderer and returns the PDF bytes.
func (c *HTTPClient) RenderPDF(ctx context.Context, report *models.Report) ([]byte, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}

	u := fmt.Sprintf("%s/render/pdf", c.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRenderFailed, resp.StatusCode)
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading renderer response: %w", err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrRenderFailed)
	}

	return pdf, nil
}

// Ready checks renderer liveness.
func (c *HTTPClient) Ready(ctx context.Context) error {
	u := fmt.Sprintf("%s/ready", c.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRendererUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: renderer not ready (status %d)", ErrRendererUnreachable, resp.StatusCode)
	}

	return nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrRenderTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrRenderTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrRendererUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrRendererUnreachable, err)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
