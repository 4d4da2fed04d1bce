// Package quotes implements the client for the external quote provider:
// end-of-day prices, dividend calendars and live exchange rates. Responses
// are cached on disk with period-based expiry, so repeated report runs do not
// hammer the provider.
package quotes

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/divtrack/divtrack"
)

// Client accesses the quote provider API. The zero key is valid for the
// provider's demo tickers only.
type Client struct {
	apiKey string
}

// NewClient returns a client authenticating with the given API key. An empty
// key falls back to the DIVTRACK_API_KEY environment variable.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		apiKey = os.Getenv("DIVTRACK_API_KEY")
	}
	return &Client{apiKey: apiKey}
}

// diskCache implements a simple disk cache for HTTP responses, keyed by the
// current period so entries expire at the period boundary.
type diskCache struct {
	base   http.RoundTripper
	period divtrack.Period // zero value is daily
}

// RoundTrip implements the http.RoundTripper interface. It checks for a
// cached response on disk first, and only then performs the actual request,
// caching a successful response.
func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	rangeID := c.period.Range(divtrack.Today()).Identifier()
	key := fmt.Sprintf("%s %s %s", rangeID, req.Method, req.URL.String())
	key = fmt.Sprintf("%s-%x", c.period, sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	file := filepath.Join(os.TempDir(), key)
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to the disk cache.
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	file := filepath.Join(os.TempDir(), key)

	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	_, err = f.Write(content)
	f.Close()
	return err
}

// newDailyCachingClient returns an http.Client whose cache entries expire daily.
func newDailyCachingClient() *http.Client {
	client := new(http.Client)
	client.Transport = &diskCache{base: http.DefaultTransport}
	return client
}

// newMonthlyCachingClient returns an http.Client whose cache entries expire monthly.
func newMonthlyCachingClient() *http.Client {
	client := new(http.Client)
	client.Transport = &diskCache{base: http.DefaultTransport, period: divtrack.Monthly}
	return client
}

// newLiveClient returns an uncached http.Client for intraday values.
func newLiveClient() *http.Client {
	return new(http.Client)
}

// jwget performs an HTTP GET request and unmarshals the JSON response body
// into the provided data structure.
func jwget(ctx context.Context, client *http.Client, addr string, data interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}
