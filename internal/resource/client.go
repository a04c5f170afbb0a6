// Package resource implements the client of the backend's REST/search API.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/search"
	"go.uber.org/zap"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
	chunkSize  int
	logger     *zap.SugaredLogger
}

func NewClient(httpClient *http.Client, baseURL, authToken string, chunkSize int, logger *zap.SugaredLogger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		authToken:  authToken,
		chunkSize:  chunkSize,
		logger:     logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, etag string, dst interface{}) error {
	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(js)
	}

	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	if etag != "" {
		req.Header.Set("If-Match", etag)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return model.ErrNoRecord
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, raw)
	}

	if dst != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// apiError wraps the backend's error envelope without interpreting it.
// A descriptive field is extracted for display when present.
func apiError(status int, body []byte) error {
	envelope := &struct {
		Message string `json:"_message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}{}
	_ = json.Unmarshal(body, envelope)

	message := envelope.Message
	if message == "" {
		message = envelope.Error.Message
	}

	return &model.APIError{
		StatusCode: status,
		Message:    message,
		Body:       body,
	}
}

func (c *Client) query(ctx context.Context, endpoint string, body search.Clause, page, maxResults int, dst interface{}) error {
	source, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal search body: %w", err)
	}

	c.logger.Debugw("search request", "endpoint", endpoint, "page", page, "max_results", maxResults)

	q := url.Values{}
	q.Set("source", string(source))
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if maxResults > 0 {
		q.Set("max_results", strconv.Itoa(maxResults))
	}

	if err := c.do(ctx, http.MethodGet, endpoint, q, nil, "", dst); err != nil {
		return fmt.Errorf("query %s: %w", endpoint, err)
	}

	return nil
}
