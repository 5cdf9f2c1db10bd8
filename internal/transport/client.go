package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/punchclock/internal/observability"
	"github.com/bytedance/sonic"
)

var codec = sonic.ConfigStd

// Request describes one backend call relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any // nil sends no body

	// SkipRefresh disables the single refresh-and-retry on 401. The auth
	// endpoints and the retried request itself set it.
	SkipRefresh bool
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// Client sends JSON requests to the backend. It knows nothing about tokens
// beyond the bearer value handed to Send.
type Client struct {
	baseURL  string
	http     *http.Client
	observer observability.CallObserver
}

// NewClient creates a Client for baseURL. httpClient should carry the
// cookie jar holding the refresh credential.
func NewClient(baseURL string, httpClient *http.Client, observer observability.CallObserver) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if observer == nil {
		observer = observability.NoopCallObserver{}
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     httpClient,
		observer: observer,
	}
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send performs req with an optional bearer token and decodes a 2xx body
// into out. A 204 response, or a nil out, skips decoding.
func (c *Client) Send(ctx context.Context, req *Request, bearer string, out any) error {
	start := time.Now()
	status, err := c.send(ctx, req, bearer, out)
	c.observer.OnCallComplete(observability.CallEvent{
		Method:     req.method(),
		Path:       req.Path,
		Status:     status,
		LatencyMs:  time.Since(start).Milliseconds(),
		Success:    err == nil,
		ErrorCode:  errorCode(err),
		WithBearer: bearer != "",
	})
	return err
}

func (c *Client) send(ctx context.Context, req *Request, bearer string, out any) (int, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := codec.Marshal(req.Body)
		if err != nil {
			return 0, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method(), target, body)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return httpResp.StatusCode, ctx.Err()
		}
		return httpResp.StatusCode, fmt.Errorf("%w: reading response: %v", ErrNetworkUnreachable, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return httpResp.StatusCode, decodeAPIError(httpResp.StatusCode, respBody)
	}

	if httpResp.StatusCode == http.StatusNoContent || out == nil {
		return httpResp.StatusCode, nil
	}
	if err := codec.Unmarshal(respBody, out); err != nil {
		return httpResp.StatusCode, fmt.Errorf("decoding %s response: %w", req.Path, err)
	}
	return httpResp.StatusCode, nil
}

type errorBody struct {
	Detail string `json:"detail"`
}

func decodeAPIError(status int, body []byte) *APIError {
	msg := fallbackMessage(status)
	var eb errorBody
	if err := codec.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		msg = eb.Detail
	}
	return &APIError{Status: status, Message: msg}
}
