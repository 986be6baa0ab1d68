package fragment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Source fetches raw fragment markup by name, e.g. "components/sidebar"
// or "section/home".
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// validName accepts the two fragment directories and a single path
// segment below them.
func validName(name string) bool {
	dir, file := path.Split(name)
	if dir != "components/" && dir != "section/" {
		return false
	}
	return file != "" && !strings.ContainsAny(file, `./\`)
}

// FSSource reads "<name>.html" from a file system, normally the embedded
// web assets.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource creates a source over fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// Fetch implements Source.
func (s *FSSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("fragment %q: %w", name, ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, name+".html")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("fragment %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fragment %q: %w", name, err)
	}
	return data, nil
}

// HTTPSource fetches "<base>/<name>.html" from a remote origin.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPSource creates a source rooted at baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid fragment base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid fragment base url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{base: u, client: &http.Client{Timeout: timeout}}, nil
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("fragment %q: %w", name, ErrNotFound)
	}
	target := s.base.ResolveReference(&url.URL{Path: name + ".html"})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fragment %q: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fragment %q: %w", name, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("failed to fetch fragment %q: status %d", name, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFragmentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read fragment %q: %w", name, err)
	}
	return data, nil
}

const maxFragmentSize = 1 << 20
