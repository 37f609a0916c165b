// Package cookiejar implements a persistent cookie store backed by a
// newline-delimited JSON file. The jar is loaded fully into memory at
// startup, merged with the response's Set-Cookie headers, and rewritten
// atomically on save. Single-process, single-invocation use only.
package cookiejar

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry is one persisted cookie. Only cookies carrying an explicit
// Max-Age or Expires are stored; session cookies never reach the file.
type Entry struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Domain  string    `json:"domain"`
	Path    string    `json:"path"`
	Expires time.Time `json:"expires"`
}

// Key identifies an entry; a merged cookie with the same key replaces
// the old one.
func (e Entry) Key() string {
	return e.Domain + "\t" + e.Path + "\t" + e.Name
}

func (e Entry) expired(now time.Time) bool {
	return !e.Expires.After(now)
}

type Jar struct {
	entries map[string]Entry
}

func New() *Jar {
	return &Jar{entries: make(map[string]Entry)}
}

// Load reads a jar file. A missing file yields an empty jar; the file
// is created later by Save. Lines that do not parse are skipped, and
// their count is returned so the caller can warn about them.
func Load(path string) (*Jar, int, error) {
	jar := New()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return jar, 0, nil
		}
		return nil, 0, fmt.Errorf("opening cookie jar: %w", err)
	}
	defer f.Close()

	skipped := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil || e.Name == "" {
			skipped++
			continue
		}
		jar.entries[e.Key()] = e
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("reading cookie jar: %w", err)
	}

	return jar, skipped, nil
}

func (j *Jar) Len() int {
	return len(j.entries)
}

// Entries returns the jar contents sorted by key, for deterministic
// output.
func (j *Jar) Entries() []Entry {
	out := make([]Entry, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, k int) bool {
		return out[i].Key() < out[k].Key()
	})
	return out
}

// Merge folds a response's cookies into the jar. Max-Age is converted
// to an absolute expiry at merge time; a non-positive Max-Age or an
// expiry in the past deletes the matching entry. Cookies without any
// persistence metadata are session cookies and are ignored.
func (j *Jar) Merge(cookies []*http.Cookie, reqURL *url.URL, now time.Time) {
	for _, c := range cookies {
		domain := strings.TrimPrefix(c.Domain, ".")
		if domain == "" {
			domain = reqURL.Hostname()
		}
		path := c.Path
		if path == "" {
			path = "/"
		}

		e := Entry{
			Name:   c.Name,
			Value:  c.Value,
			Domain: domain,
			Path:   path,
		}

		// Expiries are stored in UTC so entries survive a JSON
		// round-trip byte-identically.
		switch {
		case c.MaxAge > 0:
			e.Expires = now.Add(time.Duration(c.MaxAge) * time.Second).UTC()
		case c.MaxAge < 0:
			delete(j.entries, e.Key())
			continue
		case !c.Expires.IsZero():
			e.Expires = c.Expires.UTC()
		default:
			// session cookie, not persisted
			continue
		}

		if e.expired(now) {
			delete(j.entries, e.Key())
			continue
		}
		j.entries[e.Key()] = e
	}
}

// CookiesFor returns the unexpired entries matching the request host
// and path, ready to be attached to an outgoing request.
func (j *Jar) CookiesFor(reqURL *url.URL, now time.Time) []*http.Cookie {
	var out []*http.Cookie
	host := reqURL.Hostname()
	reqPath := reqURL.Path
	if reqPath == "" {
		reqPath = "/"
	}

	for _, e := range j.Entries() {
		if e.expired(now) {
			continue
		}
		if !domainMatch(host, e.Domain) || !pathMatch(reqPath, e.Path) {
			continue
		}
		out = append(out, &http.Cookie{Name: e.Name, Value: e.Value})
	}
	return out
}

// Save rewrites the jar file atomically: entries go to a temp file in
// the same directory, which then replaces the target. Expired entries
// are pruned on the way out.
func (j *Jar) Save(path string, now time.Time) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".swell-jar-*")
	if err != nil {
		return fmt.Errorf("creating cookie jar temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, e := range j.Entries() {
		if e.expired(now) {
			continue
		}
		line, err := json.Marshal(e)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("encoding cookie jar entry: %w", err)
		}
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cookie jar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cookie jar temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing cookie jar: %w", err)
	}
	return nil
}

// domainMatch reports whether the request host is covered by the
// entry's domain: exact match or a subdomain of it.
func domainMatch(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// pathMatch follows RFC 6265 path-match: exact, or a prefix ending at
// a '/' boundary.
func pathMatch(reqPath, entryPath string) bool {
	if reqPath == entryPath {
		return true
	}
	if !strings.HasPrefix(reqPath, entryPath) {
		return false
	}
	return strings.HasSuffix(entryPath, "/") || reqPath[len(entryPath)] == '/'
}
