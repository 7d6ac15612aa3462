// Package httplog provides an http.RoundTripper that logs every upstream
// provider request and response, shared by all REST adapters.
package httplog

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"time"
)

const maxBodySize = 4 * 1024

// Transport wraps a RoundTripper and logs each exchange with a provider tag.
type Transport struct {
	inner    http.RoundTripper
	provider string
}

// NewHTTPClient returns a client whose traffic is logged under the provider
// name, with the engine's standard timeout.
func NewHTTPClient(provider string) *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &Transport{
			inner:    http.DefaultTransport,
			provider: provider,
		},
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.inner.RoundTrip(req)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		log.Printf("httplog: %s %s %s error after %dms: %v", t.provider, req.Method, req.URL, duration, err)
		return resp, err
	}

	if resp.StatusCode >= 400 {
		// keep the error body visible without consuming it
		var body []byte
		if resp.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
			resp.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), resp.Body))
		}
		log.Printf("httplog: %s %s %s -> %d in %dms: %s", t.provider, req.Method, req.URL, resp.StatusCode, duration, body)
		return resp, nil
	}

	log.Printf("httplog: %s %s %s -> %d in %dms", t.provider, req.Method, req.URL, resp.StatusCode, duration)
	return resp, nil
}
