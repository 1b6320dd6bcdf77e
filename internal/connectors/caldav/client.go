package caldav

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// maxErrorBody bounds how much of an error response is kept in APIError.
const maxErrorBody = 512

// Config locates a calendar collection.
type Config struct {
	// URL is the calendar collection URL.
	URL string
	// Username and Password are sent with HTTP basic auth when Username is set.
	Username string
	Password string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Client is a minimal CalDAV client bound to one calendar collection.
type Client struct {
	base     *url.URL
	username string
	password string
	http     *http.Client
}

// NewClient creates a client for the collection at cfg.URL.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: caldav url %q", domain.ErrInvalidInput, cfg.URL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{
		base:     u,
		username: cfg.Username,
		password: cfg.Password,
		http:     hc,
	}, nil
}

// URL returns the collection URL.
func (c *Client) URL() string {
	return c.base.String()
}

// DisplayName fetches the collection's display name.
func (c *Client) DisplayName(ctx context.Context) (string, error) {
	var ms multistatus
	if err := c.multistatus(ctx, "PROPFIND", c.base.String(), "0", propfindDisplayName, &ms); err != nil {
		return "", err
	}
	return ms.displayName(), nil
}

// Query returns the resources with a VEVENT overlapping [start, end).
func (c *Client) Query(ctx context.Context, start, end time.Time) ([]Object, error) {
	var ms multistatus
	if err := c.multistatus(ctx, "REPORT", c.base.String(), "1", calendarQuery(start, end), &ms); err != nil {
		return nil, err
	}
	return ms.objects(), nil
}

// Put creates a resource named name in the collection.
func (c *Client) Put(ctx context.Context, name, data string) error {
	target := c.base.ResolveReference(&url.URL{Path: name})
	req, err := c.newRequest(ctx, http.MethodPut, target.String(), strings.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/calendar; charset=utf-8")
	req.Header.Set("If-None-Match", "*")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("caldav: PUT %s: %w", target, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		return apiError(resp)
	}
}

// Delete removes the resource at href. A missing resource is not an error.
func (c *Client) Delete(ctx context.Context, href string) error {
	ref, err := url.Parse(href)
	if err != nil {
		return fmt.Errorf("%w: href %q", domain.ErrInvalidInput, href)
	}
	target := c.base.ResolveReference(ref)

	req, err := c.newRequest(ctx, http.MethodDelete, target.String(), http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("caldav: DELETE %s: %w", target, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return apiError(resp)
	}
}

func (c *Client) multistatus(ctx context.Context, method, target, depth, body string, out *multistatus) error {
	req, err := c.newRequest(ctx, method, target, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("Depth", depth)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("caldav: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMultiStatus {
		return apiError(resp)
	}
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("caldav: decode %s response: %w", method, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("caldav: create request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return req, nil
}

func apiError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(msg)),
	}
}
