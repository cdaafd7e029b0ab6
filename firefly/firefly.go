// Package firefly makes requests to the Firefly-III API
package firefly

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

	"github.com/rs/zerolog/log"
)

const (
	apiPrefix = "/api/v1/"

	// MaxPages bounds GetPaged.
	MaxPages = 99

	mediaTypeJSONAPI = "application/vnd.api+json"
	mediaTypeJSON    = "application/json"
)

type Firefly struct {
	client     *http.Client
	token, url string
	observer   Observer
	cache      Cache
}

// Observer is told about every request the client makes.
type Observer interface {
	ObserveRequest(method, path string, status int, elapsed time.Duration, err error)
}

type Option func(*Firefly)

func WithObserver(o Observer) Option {
	return func(f *Firefly) { f.observer = o }
}

func New(client *http.Client, token, url string, opts ...Option) *Firefly {
	f := &Firefly{
		client: client,
		token:  token,
		url:    strings.TrimRight(url, "/"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type meta struct {
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	Total       int `json:"total"`
	Count       int `json:"count"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

type links struct {
	Self  string `json:"self"`
	First string `json:"first"`
	Next  string `json:"next"`
	Last  string `json:"last"`
}

type pagedResponse struct {
	Data  []json.RawMessage `json:"data"`
	Meta  meta              `json:"meta"`
	Links links             `json:"links"`
}

// APIError is returned for any response outside the 2xx range.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: got status %s", e.Method, e.Path, e.Status)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Get requests path and decodes the JSON response into out.
func (f *Firefly) Get(ctx context.Context, path string, params url.Values, out any) error {
	body, err := f.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// GetPaged follows the pagination of a list endpoint and returns the
// concatenated data arrays of every page.
func (f *Firefly) GetPaged(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	var results []json.RawMessage

	for page := 1; page <= MaxPages; page++ {
		p := url.Values{}
		for k, v := range params {
			p[k] = v
		}
		p.Set("page", strconv.Itoa(page))

		var resp pagedResponse
		if err := f.Get(ctx, path, p, &resp); err != nil {
			return nil, err
		}
		results = append(results, resp.Data...)

		if resp.Meta.Pagination.TotalPages <= page {
			return results, nil
		}
	}

	log.Warn().Str("path", path).Int("pages", MaxPages).Msg("Stopped paging at the page limit")
	return results, nil
}

// Post submits body as JSON and decodes the response into out.
func (f *Firefly) Post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := f.do(ctx, http.MethodPost, path, nil, raw)
	if err != nil {
		return err
	}
	if out == nil || len(resp) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// Delete removes the resource at path.
func (f *Firefly) Delete(ctx context.Context, path string) error {
	_, err := f.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

type About struct {
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	PHPVersion string `json:"php_version"`
	OS         string `json:"os"`
	Driver     string `json:"driver"`
}

// About returns the server's system information.
func (f *Firefly) About(ctx context.Context) (About, error) {
	var result struct {
		Data About `json:"data"`
	}
	if err := f.Get(ctx, "about", nil, &result); err != nil {
		return About{}, err
	}
	return result.Data, nil
}

func (f *Firefly) do(ctx context.Context, method, path string, params url.Values, body []byte) ([]byte, error) {
	u := f.url + apiPrefix + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", "Bearer "+f.token)
	req.Header.Add("Accept", mediaTypeJSONAPI)
	if body != nil {
		req.Header.Add("Content-Type", mediaTypeJSON)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.observe(method, path, 0, start, err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		f.observe(method, path, resp.StatusCode, start, err)
		return nil, fmt.Errorf("reading %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       raw,
		}
		logFailure(apiErr)
		f.observe(method, path, resp.StatusCode, start, apiErr)
		return nil, apiErr
	}

	f.observe(method, path, resp.StatusCode, start, nil)
	return raw, nil
}

func (f *Firefly) observe(method, path string, status int, start time.Time, err error) {
	if f.observer == nil {
		return
	}
	f.observer.ObserveRequest(method, path, status, time.Since(start), err)
}

// logFailure prints the body of a failed response, indented when it is JSON.
func logFailure(e *APIError) {
	body := string(e.Body)
	var buf bytes.Buffer
	if json.Indent(&buf, e.Body, "", "  ") == nil {
		body = buf.String()
	}
	log.Error().
		Str("Method", e.Method).
		Str("Path", e.Path).
		Int("Status", e.StatusCode).
		Str("Body", body).
		Msg("Firefly request failed")
}
