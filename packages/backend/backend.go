package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/swell-cli/swell/packages/request"
)

const (
	// DefaultTimeout is the default request timeout applied when the
	// caller does not supply one.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

// Backend performs one HTTP exchange. Implementations own all protocol
// mechanics: connection setup, TLS, redirects, chunked transfer. The
// caller gets either a Response or the backend's error, verbatim.
type Backend interface {
	Name() string
	Do(ctx context.Context, req *request.Request) (*Response, error)
}

// Response is the backend-independent view of what came back.
type Response struct {
	StatusCode int
	Status     string
	Proto      string
	Headers    http.Header
	Body       []byte
	Cookies    []*http.Cookie
	Duration   time.Duration
}

func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type settings struct {
	timeout  time.Duration
	insecure bool
}

type Option func(*settings)

func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// WithInsecure disables TLS certificate verification.
func WithInsecure(insecure bool) Option {
	return func(s *settings) {
		s.insecure = insecure
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup resolves a backend name or alias to an implementation.
func Lookup(name string, opts ...Option) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "std", "net", "nethttp":
		return newStdBackend(opts...), nil
	case "resty":
		return newRestyBackend(opts...), nil
	case "fast", "fasthttp":
		return newFastBackend(opts...), nil
	default:
		return nil, fmt.Errorf("unrecognized backend %q (options: std, resty, fast)", name)
	}
}

// Names lists the canonical backend names, for help text.
func Names() []string {
	return []string{"std", "resty", "fast"}
}
