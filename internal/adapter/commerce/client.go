package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the hosted commerce API this storefront ships against.
const DefaultBaseURL = "https://ecommerce.routemisr.com/api/v1"

// ErrUpstream wraps every non-success outcome from the commerce API. The
// cart synchronizer does not distinguish failure kinds beyond this.
var ErrUpstream = errors.New("commerce api request failed")

// Client is the REST client for the upstream commerce API. Authenticated
// calls carry the session token in a request header literally named
// "token".
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    hc,
	}
}

// envelope is the common response shape. Not every endpoint fills every
// field; auth endpoints report success through "message", everything else
// through "status".
type envelope struct {
	Status         string          `json:"status"`
	StatusMsg      string          `json:"statusMsg"`
	Message        string          `json:"message"`
	Token          string          `json:"token"`
	NumOfCartItems int             `json:"numOfCartItems"`
	Results        int             `json:"results"`
	Count          int             `json:"count"`
	Data           json.RawMessage `json:"data"`
	Session        *struct {
		URL string `json:"url"`
	} `json:"session"`
	User *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	Metadata *struct {
		CurrentPage   int `json:"currentPage"`
		Limit         int `json:"limit"`
		NumberOfPages int `json:"numberOfPages"`
	} `json:"metadata"`
}

// do issues a request and decodes the response envelope. HTTP status codes
// of 400 and above come back as ErrUpstream carrying the API's message.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body any) (*envelope, error) {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("token", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	var env envelope
	if decErr := json.NewDecoder(resp.Body).Decode(&env); decErr != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s %s returned %s", ErrUpstream, method, path, resp.Status)
		}
		return nil, fmt.Errorf("decode %s %s response: %w", method, path, decErr)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstream, msg)
	}
	return &env, nil
}

// succeeded reports whether the envelope's status field confirms the
// operation. The API is inconsistent about casing ("success" vs "Success").
func (env *envelope) succeeded() bool {
	return strings.EqualFold(env.Status, "success")
}

func (env *envelope) failure() error {
	msg := env.Message
	if msg == "" {
		msg = env.Status
	}
	return fmt.Errorf("%w: %s", ErrUpstream, msg)
}
