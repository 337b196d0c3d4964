// Package client calls the review API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"alfredoptarigan/cv-reviewer/internal/models"
)

const DefaultTimeout = 3 * time.Minute

// APIError is a non-200 answer from the review API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error from backend: %d - %s", e.StatusCode, e.Body)
}

type ReviewClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewReviewClient returns a client for the review endpoint, e.g.
// http://localhost:8000/api/review. A nil httpClient uses DefaultTimeout.
func NewReviewClient(endpoint, token string, httpClient *http.Client) (*ReviewClient, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("backend API URL is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("API auth token is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &ReviewClient{endpoint: endpoint, token: token, httpClient: httpClient}, nil
}

// Review uploads the CV with the job description and decodes the report.
func (c *ReviewClient) Review(ctx context.Context, pdf []byte, filename, jobDescription string) (*models.ReviewResult, error) {
	body, contentType, err := reviewForm(pdf, filename, jobDescription)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call review API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var result models.ReviewResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode review: %w", err)
	}
	return &result, nil
}

func reviewForm(pdf []byte, filename, jobDescription string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="cv_file"; filename=%q`, filename))
	h.Set("Content-Type", "application/pdf")

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.WriteField("job_description", jobDescription); err != nil {
		return nil, "", fmt.Errorf("failed to write form field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
