// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lovefi-matcher/internal/common/errors"
	"lovefi-matcher/internal/models"
)

const maxResponseBytes = 1 << 20

// Client calls a running matcher over its REST endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type errorBody struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Details string           `json:"details"`
}

// Calculate posts req to /match/calculate. Error responses are returned as
// *errors.StandardError carrying the server's code.
func (c *Client) Calculate(ctx context.Context, req models.MatchRequest) (*models.MatchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode match request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/match/calculate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call matcher: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Code != "" {
			return nil, &errors.StandardError{Code: eb.Code, Message: eb.Message, Details: eb.Details, Timestamp: time.Now()}
		}
		return nil, fmt.Errorf("matcher returned %s", resp.Status)
	}

	var out models.MatchResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &out, nil
}
