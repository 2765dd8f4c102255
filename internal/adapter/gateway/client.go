// Package gateway is the HTTP client for the external extraction job system
// that turns a stored Lorry Receipt into invoices.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lr-validation-backend/internal/infrastructure/retry"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

type Client interface {
	StartJob(ctx context.Context, documentID uint64) (*Job, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error)
	ListInvoices(ctx context.Context, documentID uint64) ([]Invoice, error)
	PushCustomData(ctx context.Context, invoiceID uint64, data map[string]string) error
	ValidateDocument(ctx context.Context, documentID uint64) error
}

// Job is the gateway's job descriptor.
type Job struct {
	ID         uuid.UUID `json:"job_id"`
	DocumentID uint64    `json:"document_id,omitempty"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	Error      string    `json:"error,omitempty"`
}

// Done reports whether the job reached a terminal status.
func (j *Job) Done() bool { return j.Status == JobCompleted || j.Status == JobFailed }

// Invoice is one extracted invoice as the gateway reports it.
type Invoice struct {
	InvoiceNumber      string            `json:"invoice_number"`
	RawExtractedFields map[string]any    `json:"raw_extracted_fields"`
	CustomData         map[string]string `json:"custom_data,omitempty"`
}

type invoiceList struct {
	Data []Invoice `json:"data"`
}

type customDataBody struct {
	CustomData map[string]string `json:"custom_data"`
}

type ack struct {
	Status string `json:"status"`
}

// APIError is returned when the gateway answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: HTTP %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

type Option func(*httpClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithTimeout bounds every single attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) { c.timeout = d }
}

func WithRetry(p retry.Policy) Option {
	return func(c *httpClient) { c.retry = p }
}

// WithRateLimit caps outgoing requests; perSec <= 0 disables limiting.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *httpClient) {
		if perSec <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	retry   retry.Policy
	limiter *rate.Limiter
}

func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: 15 * time.Second,
		retry:   retry.DefaultPolicy(),
		limiter: rate.NewLimiter(rate.Limit(10), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = retry.Logger("gateway", "request")
	}
	return c
}

func (c *httpClient) StartJob(ctx context.Context, documentID uint64) (*Job, error) {
	var job Job
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/jobs/document/%d", documentID), nil, &job); err != nil {
		return nil, eris.Wrapf(err, "gateway: start job for document %d", documentID)
	}
	if job.ID == uuid.Nil {
		return nil, eris.Errorf("gateway: start job for document %d: response has no job id", documentID)
	}
	return &job, nil
}

func (c *httpClient) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	var job Job
	if err := c.call(ctx, http.MethodGet, "/jobs/"+jobID.String(), nil, &job); err != nil {
		return nil, eris.Wrapf(err, "gateway: get job %s", jobID)
	}
	if job.ID == uuid.Nil {
		job.ID = jobID
	}
	return &job, nil
}

func (c *httpClient) ListInvoices(ctx context.Context, documentID uint64) ([]Invoice, error) {
	var out invoiceList
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/document/%d/invoices", documentID), nil, &out); err != nil {
		return nil, eris.Wrapf(err, "gateway: list invoices for document %d", documentID)
	}
	return out.Data, nil
}

func (c *httpClient) PushCustomData(ctx context.Context, invoiceID uint64, data map[string]string) error {
	var a ack
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/invoice/%d/validate", invoiceID), customDataBody{CustomData: data}, &a); err != nil {
		return eris.Wrapf(err, "gateway: push custom data for invoice %d", invoiceID)
	}
	return nil
}

func (c *httpClient) ValidateDocument(ctx context.Context, documentID uint64) error {
	var a ack
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/document/%d/validate", documentID), nil, &a); err != nil {
		return eris.Wrapf(err, "gateway: validate document %d", documentID)
	}
	return nil
}

// call runs one logical request with rate limiting and retries; only
// transient failures (network errors, 408, 429, 5xx) are retried.
func (c *httpClient) call(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "marshal request")
		}
		payload = b
	}

	return retry.Do(ctx, c.retry, func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return eris.Wrap(err, "rate limit wait")
			}
		}
		actx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		var rdr io.Reader
		if payload != nil {
			rdr = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(actx, method, c.baseURL+path, rdr)
		if err != nil {
			return eris.Wrap(err, "create request")
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.do(req, out)
	})
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		if retry.IsTransientStatus(resp.StatusCode) {
			return retry.Transient(apiErr, resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}
