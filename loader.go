package barsmith

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Loader controls how chart configuration documents are fetched.
// By default, all loading is denied. Use a FileLoader or HTTPLoader to
// permit access, or implement a custom Loader for fine-grained control.
type Loader interface {
	// Load fetches the content at the given URI.
	Load(ctx context.Context, uri string) ([]byte, error)

	// Sanitize validates and optionally transforms a URI before loading.
	// Return an error to deny access to a URI.
	Sanitize(ctx context.Context, uri string) (string, error)
}

// DenyLoader denies all resource loading. This is the default.
type DenyLoader struct{}

func (DenyLoader) Load(_ context.Context, uri string) ([]byte, error) {
	return nil, fmt.Errorf("barsmith: resource loading denied for %q (no loader configured)", uri)
}

func (DenyLoader) Sanitize(_ context.Context, uri string) (string, error) {
	return "", fmt.Errorf("barsmith: resource loading denied for %q (no loader configured)", uri)
}

// HTTPLoader allows loading resources over HTTP and HTTPS.
type HTTPLoader struct {
	Client *http.Client
	// AllowedDomains restricts the hosts that may be contacted. Matching is
	// case-insensitive and ignores the port. Empty allows every host.
	AllowedDomains []string
	// BaseURL resolves relative URIs. Without it relative URIs are rejected.
	BaseURL string
}

// NewHTTPLoader creates a loader that allows HTTP(S) requests.
// If client is nil, http.DefaultClient is used.
func NewHTTPLoader(client *http.Client) *HTTPLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPLoader{Client: client}
}

func (l *HTTPLoader) Load(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("barsmith: failed to create request for %q: %w", uri, err)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("barsmith: failed to load %q: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("barsmith: HTTP %d loading %q", resp.StatusCode, uri)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("barsmith: failed to read response from %q: %w", uri, err)
	}

	return data, nil
}

func (l *HTTPLoader) Sanitize(_ context.Context, uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("barsmith: invalid URI %q: %w", uri, err)
	}

	if !parsed.IsAbs() {
		if l.BaseURL == "" {
			return "", fmt.Errorf("barsmith: relative URI %q requires a BaseURL", uri)
		}
		base, err := url.Parse(l.BaseURL)
		if err != nil {
			return "", fmt.Errorf("barsmith: invalid BaseURL %q: %w", l.BaseURL, err)
		}
		parsed = base.ResolveReference(parsed)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("barsmith: unsupported scheme %q in URI %q (only http/https allowed)", scheme, uri)
	}
	if parsed.User != nil {
		return "", fmt.Errorf("barsmith: URI %q must not contain userinfo", uri)
	}
	if !l.allowed(parsed.Hostname()) {
		return "", fmt.Errorf("barsmith: domain %q not in allowed list", parsed.Hostname())
	}

	return parsed.String(), nil
}

func (l *HTTPLoader) allowed(host string) bool {
	if len(l.AllowedDomains) == 0 {
		return true
	}
	for _, d := range l.AllowedDomains {
		if h, _, err := net.SplitHostPort(d); err == nil {
			d = h
		}
		if strings.EqualFold(d, host) {
			return true
		}
	}
	return false
}

// FileLoader serves files from a base directory on disk.
// It accepts relative paths and rejects absolute URLs and path traversal.
// Reads go through an os.Root, so symlinks cannot escape BaseDir.
type FileLoader struct {
	BaseDir string

	mu   sync.Mutex
	root *os.Root
}

// NewFileLoader opens dir and returns a loader rooted at it.
func NewFileLoader(dir string) (*FileLoader, error) {
	l := &FileLoader{BaseDir: dir}
	if _, err := l.openRoot(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLoader) openRoot() (*os.Root, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.root != nil {
		return l.root, nil
	}
	root, err := os.OpenRoot(l.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("barsmith: FileLoader cannot open %q: %w", l.BaseDir, err)
	}
	l.root = root
	return root, nil
}

// Close releases the directory handle. It is safe to call more than once.
func (l *FileLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.root == nil {
		return nil
	}
	err := l.root.Close()
	l.root = nil
	return err
}

func (l *FileLoader) Sanitize(_ context.Context, uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("barsmith: invalid URI %q: %w", uri, err)
	}

	if parsed.Scheme != "" {
		return "", fmt.Errorf("barsmith: FileLoader only accepts relative paths, got scheme %q in %q", parsed.Scheme, uri)
	}

	cleaned := filepath.Clean(uri)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("barsmith: FileLoader rejects absolute path %q", uri)
	}
	if strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("barsmith: FileLoader rejects path traversal in %q", uri)
	}

	return cleaned, nil
}

func (l *FileLoader) Load(_ context.Context, uri string) ([]byte, error) {
	root, err := l.openRoot()
	if err != nil {
		return nil, err
	}
	f, err := root.Open(uri)
	if err != nil {
		return nil, fmt.Errorf("barsmith: FileLoader failed to open %q: %w", uri, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("barsmith: FileLoader failed to read %q: %w", uri, err)
	}
	return data, nil
}

// StaticLoader serves the JSON encoding of Value for every URI. It is
// useful for tests and for embedding a configuration in a program.
type StaticLoader struct {
	Value any
}

func (l *StaticLoader) Sanitize(_ context.Context, uri string) (string, error) {
	return uri, nil
}

func (l *StaticLoader) Load(_ context.Context, _ string) ([]byte, error) {
	data, err := json.Marshal(l.Value)
	if err != nil {
		return nil, fmt.Errorf("barsmith: StaticLoader cannot encode value: %w", err)
	}
	return data, nil
}

// FallbackLoader tries its children in order and serves from the first one
// that accepts and loads the URI.
type FallbackLoader struct {
	children []Loader
}

// NewFallbackLoader combines loaders, e.g. a FileLoader then an HTTPLoader.
func NewFallbackLoader(children ...Loader) *FallbackLoader {
	return &FallbackLoader{children: children}
}

// Sanitize returns the URI as rewritten by the first child that accepts it.
func (l *FallbackLoader) Sanitize(ctx context.Context, uri string) (string, error) {
	var errs []error
	for _, c := range l.children {
		s, err := c.Sanitize(ctx, uri)
		if err == nil {
			return s, nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("barsmith: no loader accepts %q: %w", uri, errors.Join(errs...))
}

// Load sanitizes uri with each child in turn and returns the first
// successful load. Children see the original URI, not a sibling's rewrite.
func (l *FallbackLoader) Load(ctx context.Context, uri string) ([]byte, error) {
	var errs []error
	for _, c := range l.children {
		s, err := c.Sanitize(ctx, uri)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		data, err := c.Load(ctx, s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return data, nil
	}
	return nil, fmt.Errorf("barsmith: no loader could load %q: %w", uri, errors.Join(errs...))
}

// Close closes every child that implements io.Closer.
func (l *FallbackLoader) Close() error {
	var errs []error
	for _, c := range l.children {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
