package backend

import (
	"context"
	"crypto/tls"

	"github.com/go-resty/resty/v2"
	"github.com/swell-cli/swell/packages/request"
)

// restyBackend delegates the exchange to go-resty.
type restyBackend struct {
	client *resty.Client
}

func newRestyBackend(opts ...Option) *restyBackend {
	s := newSettings(opts)

	client := resty.New().
		SetTimeout(s.timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(DefaultMaxRedirects))
	if s.insecure {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	return &restyBackend{client: client}
}

func (b *restyBackend) Name() string { return "resty" }

func (b *restyBackend) Do(ctx context.Context, req *request.Request) (*Response, error) {
	r := b.client.R().
		SetContext(ctx).
		SetHeaders(req.Headers).
		SetCookies(req.Cookies)
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Proto:      resp.Proto(),
		Headers:    resp.Header().Clone(),
		Body:       resp.Body(),
		Cookies:    resp.Cookies(),
		Duration:   resp.Time(),
	}, nil
}
