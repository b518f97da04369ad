package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MiniInfo is the reserved message asking the assistant to describe the
// current scene. It is never a user utterance.
const MiniInfo = "__mini_info__"

// Request is one assistant turn.
type Request struct {
	TourID       string `json:"tour_id"`
	CurrentScene string `json:"current_scene"`
	Message      string `json:"message"`
}

// IsAmbient reports whether the request asks for a scene description.
func (r Request) IsAmbient() bool { return r.Message == MiniInfo }

// Response is the assistant's reply. Text may be empty when the service
// answered without one.
type Response struct {
	Text string `json:"text"`
}

// Client sends requests to the assistant service.
type Client interface {
	Ask(ctx context.Context, req Request) (*Response, error)
}

// RequestError reports a transport, status or decoding failure on the
// assistant endpoint.
type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("assistant %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("assistant %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// HTTPClient implements Client against POST /api/assistant.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the service at baseURL. A nil client
// uses http.DefaultClient.
func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (c *HTTPClient) Ask(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &RequestError{Op: "encode", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/assistant", bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Op: "request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Op: "request", Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &RequestError{Op: "read", StatusCode: httpResp.StatusCode, Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &RequestError{
			Op:         "request",
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(respBody))),
		}
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &RequestError{Op: "decode", StatusCode: httpResp.StatusCode, Err: err}
	}
	return &resp, nil
}
