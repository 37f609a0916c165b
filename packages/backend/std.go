package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/swell-cli/swell/packages/request"
)

// stdBackend wraps the standard library's http.Client with a tuned
// transport and a redirect cap.
type stdBackend struct {
	client *http.Client
}

func newStdBackend(opts ...Option) *stdBackend {
	s := newSettings(opts)

	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}
	if s.insecure {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if len(via) >= DefaultMaxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	return &stdBackend{
		client: &http.Client{
			Transport:     transport,
			Timeout:       s.timeout,
			CheckRedirect: redirectPolicy,
		},
	}
}

func (b *stdBackend) Name() string { return "std" }

func (b *stdBackend) Do(ctx context.Context, req *request.Request) (*Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	for _, c := range req.Cookies {
		httpReq.AddCookie(c)
	}

	start := time.Now()
	httpResp, err := b.client.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Proto:      httpResp.Proto,
		Headers:    httpResp.Header.Clone(),
		Body:       respBody,
		Cookies:    httpResp.Cookies(),
		Duration:   duration,
	}, nil
}
