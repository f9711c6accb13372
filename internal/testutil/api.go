package testutil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// APIClient is a small JSON client for exercising the HTTP API in tests.
type APIClient struct {
	srv *httptest.Server
	t   *testing.T
}

// NewAPIClient serves h on a loopback test server and returns a client for it.
//
// Postcondition: The server is closed when the test ends.
func NewAPIClient(t *testing.T, h http.Handler) *APIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &APIClient{srv: srv, t: t}
}

// URL returns the absolute URL for path.
func (c *APIClient) URL(path string) string {
	return c.srv.URL + path
}

// Do sends a request with an optional JSON body and decodes a JSON response into out
// when out is non-nil. It returns the status code.
//
// Postcondition: Fails the test on transport or decode errors.
func (c *APIClient) Do(method, path string, body, out any) int {
	c.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("encoding %s %s body: %v", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.URL(path), rdr)
	if err != nil {
		c.t.Fatalf("building %s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.srv.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// ReadEventsUntil opens an SSE stream at path and collects "data:" payloads until
// one contains substr or timeout elapses.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns the collected payloads, or fails on timeout.
func (c *APIClient) ReadEventsUntil(path, substr string, timeout time.Duration) []string {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.URL(path), nil)
	if err != nil {
		c.t.Fatalf("building stream request: %v", err)
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		c.t.Fatalf("opening stream %s: %v", path, err)
	}
	defer resp.Body.Close()

	var events []string
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		events = append(events, data)
		if strings.Contains(data, substr) {
			return events
		}
	}
	c.t.Fatalf("stream %s ended before %q: %v (events %q)", path, substr, sc.Err(), events)
	return nil
}
