package backend

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/swell-cli/swell/packages/request"
	"github.com/valyala/fasthttp"
)

// fastBackend delegates the exchange to valyala/fasthttp. fasthttp has
// no context support, so the context deadline is folded into the
// per-call timeout instead.
type fastBackend struct {
	client  *fasthttp.Client
	timeout time.Duration
}

func newFastBackend(opts ...Option) *fastBackend {
	s := newSettings(opts)

	client := &fasthttp.Client{
		ReadTimeout:         s.timeout,
		WriteTimeout:        s.timeout,
		MaxIdleConnDuration: DefaultIdleConnTimeout,
	}
	if s.insecure {
		client.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &fastBackend{client: client, timeout: s.timeout}
}

func (b *fastBackend) Name() string { return "fast" }

func (b *fastBackend) Do(ctx context.Context, req *request.Request) (*Response, error) {
	freq := fasthttp.AcquireRequest()
	fresp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(freq)
	defer fasthttp.ReleaseResponse(fresp)

	freq.Header.SetMethod(req.Method)
	freq.SetRequestURI(req.URL)
	for k, v := range req.Headers {
		freq.Header.Set(k, v)
	}
	for _, c := range req.Cookies {
		freq.Header.SetCookie(c.Name, c.Value)
	}
	if len(req.Body) > 0 {
		freq.SetBody(req.Body)
	}

	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	start := time.Now()
	err := b.client.DoTimeout(freq, fresp, timeout)
	duration := time.Since(start)
	if err != nil {
		return nil, err
	}

	headers := make(http.Header)
	fresp.Header.VisitAll(func(key, value []byte) {
		headers.Add(string(key), string(value))
	})

	var cookies []*http.Cookie
	for _, line := range headers.Values("Set-Cookie") {
		c, err := http.ParseSetCookie(line)
		if err != nil {
			continue
		}
		cookies = append(cookies, c)
	}

	code := fresp.StatusCode()
	body := make([]byte, len(fresp.Body()))
	copy(body, fresp.Body())

	return &Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Proto:      "HTTP/1.1",
		Headers:    headers,
		Body:       body,
		Cookies:    cookies,
		Duration:   duration,
	}, nil
}
