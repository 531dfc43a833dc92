package paper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"
)

const downloadSuffix = "download"

// requestHeaders is the fixed header set sent with every API call.
// It mirrors what the download endpoint historically expected from browsers.
//
//nolint:gochecknoglobals // Read-only request template.
var requestHeaders = map[string]string{
	"Content-Type":    "application/json;charset=UTF-8",
	"Accept":          "application/json, text/plain, */*",
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.10; rv:43.0) Gecko/20100101 Firefox/43.0",
	"Accept-Language": "en-US,en;q=0.5",
	"DNT":             "1",
}

// Client calls the Paper download API. Version and build lists returned by
// the API are ordered newest first; "latest" selection relies on that.
type Client struct {
	// baseURL is the API endpoint all request paths are joined onto.
	baseURL string
	// httpClient performs the requests; its timeout covers the whole body.
	httpClient *http.Client
}

// versionsResponse is the body of GET {base}.
type versionsResponse struct {
	Versions []string `json:"versions"`
}

// buildsResponse is the body of GET {base}/{version}. Build identifiers are
// decoded loosely because the API has served them both as strings and as
// numbers over time.
type buildsResponse struct {
	Builds struct {
		All []any `json:"all"`
	} `json:"builds"`
}

// NewClient creates a client against the provided base URL.
// A zero timeout keeps the transport default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Versions lists the available release lines, newest first.
func (c *Client) Versions(ctx context.Context) ([]string, error) {
	response, err := c.get(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	var parsed versionsResponse
	if err = json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode versions response: %w", err)
	}

	return parsed.Versions, nil
}

// Builds lists the build identifiers of one version, newest first.
func (c *Client) Builds(ctx context.Context, version string) ([]string, error) {
	response, err := c.get(ctx, version)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	var parsed buildsResponse
	if err = json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode builds response: %w", err)
	}

	builds := make([]string, 0, len(parsed.Builds.All))
	for _, raw := range parsed.Builds.All {
		builds = append(builds, buildToken(raw))
	}

	return builds, nil
}

// OpenDownload starts streaming the binary of one build and returns the
// body together with its declared length. The caller owns the body.
func (c *Client) OpenDownload(ctx context.Context, version, build string) (io.ReadCloser, int64, error) {
	response, err := c.get(ctx, version, build, downloadSuffix)
	if err != nil {
		return nil, 0, err
	}

	length := response.ContentLength
	if length < 0 {
		_ = response.Body.Close()

		return nil, 0, &RequestError{
			URL: c.requestURL(version, build, downloadSuffix),
			Err: errUnknownLength,
		}
	}

	return response.Body, length, nil
}

// get issues a GET against the base URL joined with the provided path
// elements. Transport failures and non-2xx statuses both surface as
// *RequestError; the API is public and calls are never retried.
func (c *Client) get(ctx context.Context, elems ...string) (*http.Response, error) {
	finalURL := c.requestURL(elems...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, &RequestError{URL: finalURL, Err: err}
	}

	for key, value := range requestHeaders {
		req.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{URL: finalURL, Err: err}
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		_ = response.Body.Close()

		return nil, &RequestError{
			URL:        finalURL,
			StatusCode: response.StatusCode,
			Err:        errUnexpectedStatus,
		}
	}

	return response, nil
}

// requestURL joins path elements onto the base URL, normalizing slashes.
func (c *Client) requestURL(elems ...string) string {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		// The base URL is validated by config before the client is built.
		return c.baseURL
	}

	parsed.Path = path.Join(append([]string{parsed.Path}, elems...)...)

	return parsed.String()
}

// buildToken renders a loosely decoded build identifier as its API token.
func buildToken(raw any) string {
	switch value := raw.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
