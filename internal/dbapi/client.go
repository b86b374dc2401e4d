// Package dbapi is a typed client for the /db backend that stores tables and
// uploaded presentation files.
package dbapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to one backend instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the backend at baseURL. An empty baseURL
// produces root-relative paths, which only makes sense with a custom transport.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListTables fetches GET /db/tables.
func (c *Client) ListTables(ctx context.Context) ([]TableSummary, error) {
	var body struct {
		Tables []TableSummary `json:"tables"`
	}
	if err := c.get(ctx, "/db/tables", &body); err != nil {
		return nil, err
	}
	return body.Tables, nil
}

// TableRecords fetches GET /db/table/{name}. A response carrying an error
// field is returned as *APIError even when the status is 2xx.
func (c *Client) TableRecords(ctx context.Context, name string) (*TableRecords, error) {
	var body TableRecords
	if err := c.get(ctx, "/db/table/"+url.PathEscape(name), &body); err != nil {
		return nil, err
	}
	if body.Table == "" {
		body.Table = name
	}
	return &body, nil
}

// TableRecord fetches a single row by primary key.
func (c *Client) TableRecord(ctx context.Context, name string, id int64) (Record, error) {
	var body struct {
		Table  string `json:"table"`
		Record Record `json:"record"`
	}
	path := "/db/table/" + url.PathEscape(name) + "/record/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, path, &body); err != nil {
		return Record{}, err
	}
	return body.Record, nil
}

// ListFiles fetches GET /db/files.
func (c *Client) ListFiles(ctx context.Context) ([]FileRecord, error) {
	var body struct {
		Files []FileRecord `json:"files"`
	}
	if err := c.get(ctx, "/db/files", &body); err != nil {
		return nil, err
	}
	return body.Files, nil
}

// Upload sends one file as multipart field "file" to POST /db/upload.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, transportError("build upload", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, transportError("read "+filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, transportError("build upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/db/upload", &buf)
	if err != nil {
		return nil, transportError("build request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteFile removes an uploaded file and its slides via DELETE /db/files/{id}.
func (c *Client) DeleteFile(ctx context.Context, id int64) (*DeleteResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/db/files/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, transportError("build request", err)
	}
	var result DeleteResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Clear wipes all presentation data via POST /db/clear.
func (c *Client) Clear(ctx context.Context) (*ClearResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/db/clear", http.NoBody)
	if err != nil {
		return nil, transportError("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	var result ClearResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health fetches GET /api/health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/api/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return transportError("build request", err)
	}
	return c.do(req, out)
}

// do sends req and decodes a JSON body into out. Non-2xx responses and bodies
// with an "error" field become *APIError; everything else that goes wrong is
// wrapped in ErrTransport.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	op := req.Method + " " + req.URL.Path

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(op, err)
	}

	var eb errorBody
	jsonErr := json.Unmarshal(data, &eb)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := eb.Error
		if jsonErr != nil || msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if jsonErr != nil {
		return transportError(op, fmt.Errorf("decode response: %w", jsonErr))
	}
	if eb.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return transportError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
