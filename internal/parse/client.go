package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoMasterKey is returned when an administrative call is attempted
// without a master key configured.
var ErrNoMasterKey = errors.New("master key not configured")

// AudienceAPI is the subset of the Parse API the filter store depends on.
// *Client implements it; tests substitute their own.
type AudienceAPI interface {
	QueryFilters(ctx context.Context, limit int) (FilterPage, error)
	CreateAudience(ctx context.Context, req CreateAudienceRequest) (CreateAudienceResponse, error)
	DeleteAudience(ctx context.Context, objectID string) error
}

// Ensure Client implements AudienceAPI at compile time.
var _ AudienceAPI = (*Client)(nil)

// Credentials identify the app and carry the elevated master key.
type Credentials struct {
	AppID     string
	MasterKey string
}

// Client talks to the Parse REST API with master-key access.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	creds     Credentials
	userAgent string
	newID     func() string
}

const (
	defaultServerURL = "http://127.0.0.1:1337/parse"
	defaultUserAgent = "pushboard/0.1"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 64 << 10
)

// Option adjusts a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the Parse server mounted at serverURL.
func NewClient(serverURL string, creds Credentials, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		creds:     creds,
		userAgent: defaultUserAgent,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// QueryFilters lists up to limit Filter records.
func (c *Client) QueryFilters(ctx context.Context, limit int) (FilterPage, error) {
	if c == nil {
		return FilterPage{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	values.Set("count", "1")
	rel := &url.URL{Path: "classes/" + FilterClass, RawQuery: values.Encode()}

	var payload queryResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return FilterPage{}, err
	}
	page := FilterPage{Results: payload.Results}
	if page.Results == nil {
		page.Results = []Filter{}
	}
	if payload.Count != nil {
		page.ShowMore = *payload.Count > len(page.Results)
	}
	return page, nil
}

// CreateAudience saves a new push audience.
func (c *Client) CreateAudience(ctx context.Context, req CreateAudienceRequest) (CreateAudienceResponse, error) {
	if c == nil {
		return CreateAudienceResponse{}, fmt.Errorf("client is nil")
	}
	var payload CreateAudienceResponse
	if err := c.doURL(ctx, http.MethodPost, &url.URL{Path: "push_audiences"}, req, &payload); err != nil {
		return CreateAudienceResponse{}, err
	}
	return payload, nil
}

// DeleteAudience removes the push audience with the given id.
func (c *Client) DeleteAudience(ctx context.Context, objectID string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	objectID = strings.TrimSpace(objectID)
	if objectID == "" || strings.Contains(objectID, "/") {
		return fmt.Errorf("invalid object id %q", objectID)
	}
	rel := &url.URL{Path: "push_audiences/" + objectID}
	return c.doURL(ctx, http.MethodDelete, rel, nil, nil)
}

// FetchAvailableDevices lists the device types with registered installations.
func (c *Client) FetchAvailableDevices(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload availableDevicesResponse
	if err := c.doURL(ctx, http.MethodGet, &url.URL{Path: "available_devices"}, nil, &payload); err != nil {
		return nil, err
	}
	return payload.AvailableDevices, nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body any, dest any) error {
	if strings.TrimSpace(c.creds.MasterKey) == "" {
		return ErrNoMasterKey
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Parse-Application-Id", c.creds.AppID)
	req.Header.Set("X-Parse-Master-Key", c.creds.MasterKey)
	req.Header.Set("X-Parse-Request-Id", c.newID())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Path: rel.Path}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if len(bytes.TrimSpace(raw)) > 0 {
			if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil {
				apiErr.Message = strings.TrimSpace(string(raw))
			}
		}
		return apiErr
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultServerURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server_url %q: %w", serverURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse server_url %q: missing host", serverURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
