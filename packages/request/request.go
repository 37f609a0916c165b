// Package request builds the single outgoing HTTP request from parsed
// command-line input: method, URL, headers, body source and cookies.
package request

import (
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"strings"
)

// Methods is the set of verbs accepted on the command line.
var Methods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
	http.MethodConnect: true,
}

// Request is constructed once per invocation and discarded after use.
// Header keys are canonicalized, so repeated -h flags for the same key
// are last-write-wins regardless of case. The timeout is a backend
// setting, not part of the request.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	Cookies []*http.Cookie
}

func New(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[http.CanonicalHeaderKey(key)] = value
	return r
}

func (r *Request) Header(key string) string {
	return r.Headers[http.CanonicalHeaderKey(key)]
}

func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

func (r *Request) AddCookie(c *http.Cookie) *Request {
	r.Cookies = append(r.Cookies, c)
	return r
}

// ParseMethod validates a verb case-insensitively and returns its
// canonical upper-case form.
func ParseMethod(s string) (string, error) {
	m := strings.ToUpper(strings.TrimSpace(s))
	if !Methods[m] {
		return "", fmt.Errorf("unknown HTTP method %q", s)
	}
	return m, nil
}

// ParseHeader splits a KEY=VALUE flag at the first '='. A missing '='
// is a usage error.
func ParseHeader(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid KEY=VALUE: no '=' found in %q", s)
	}
	if key == "" {
		return "", "", fmt.Errorf("invalid KEY=VALUE: empty key in %q", s)
	}
	return key, value, nil
}

// ValidateURL checks that a URL is well-formed, absolute and uses an
// http or https scheme.
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q (only http and https are allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// BodySource describes where the request body comes from. Sources are
// mutually exclusive: a file path wins over a literal, which wins over
// piped standard input.
type BodySource struct {
	FilePath string
	Literal  string
	Stdin    io.Reader
	Piped    bool
}

// Resolve returns the body bytes, or nil when no source applies.
func (s BodySource) Resolve() ([]byte, error) {
	switch {
	case s.FilePath != "":
		data, err := os.ReadFile(s.FilePath)
		if err != nil {
			return nil, fmt.Errorf("reading body file: %w", err)
		}
		return data, nil
	case s.Literal != "":
		return []byte(s.Literal), nil
	case s.Piped && s.Stdin != nil:
		data, err := io.ReadAll(s.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading body from stdin: %w", err)
		}
		return data, nil
	}
	return nil, nil
}
