package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/metrics"
)

const defaultTimeout = 30 * time.Second

// stripped request headers carry the caller's platform credentials.
var strippedHeaders = []string{"Authorization", "Cookie"}

// ErrInvalidPath is returned for a forwarded path that would leave the
// upstream's base URL.
var ErrInvalidPath = errors.New("invalid upstream path")

// ErrorHandler writes the response for a failed upstream call.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Upstream is a configured upstream API ready to receive requests.
type Upstream struct {
	Name       string
	Capability string

	target  *url.URL
	limiter *rate.Limiter
	proxy   *httputil.ReverseProxy
}

// Allow reports whether the upstream's rate limit admits another request.
func (u *Upstream) Allow() bool {
	return u.limiter == nil || u.limiter.Allow()
}

// Forward sends r to the upstream with its path replaced by p, which is
// joined onto the upstream base URL. Nothing is written to w when p is
// rejected by CleanPath.
func (u *Upstream) Forward(w http.ResponseWriter, r *http.Request, p string) error {
	clean, err := CleanPath(p)
	if err != nil {
		return err
	}
	out := r.Clone(r.Context())
	out.URL.Path = clean
	out.URL.RawPath = ""
	u.proxy.ServeHTTP(w, out)
	return nil
}

// CleanPath decodes p and returns it as a rooted, cleaned path. Paths with a
// ".." segment or a backslash are rejected with ErrInvalidPath.
func CleanPath(p string) (string, error) {
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if strings.ContainsRune(decoded, '\\') {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(decoded, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	clean := path.Clean("/" + decoded)
	if strings.HasSuffix(decoded, "/") && clean != "/" {
		clean += "/"
	}
	return clean, nil
}

// Registry maps upstream names to Upstreams.
type Registry struct {
	upstreams map[string]*Upstream
}

// NewRegistry builds an Upstream for every configured entry.
func NewRegistry(cfg Config, onError ErrorHandler) (*Registry, error) {
	reg := &Registry{upstreams: make(map[string]*Upstream, len(cfg.Upstreams))}
	for _, uc := range cfg.Upstreams {
		u, err := newUpstream(uc, onError)
		if err != nil {
			return nil, err
		}
		reg.upstreams[uc.Name] = u
	}
	return reg, nil
}

func newUpstream(uc UpstreamConfig, onError ErrorHandler) (*Upstream, error) {
	target, err := url.Parse(uc.URL)
	if err != nil {
		return nil, fmt.Errorf("upstream %s: %w", uc.Name, err)
	}

	timeout := uc.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	u := &Upstream{Name: uc.Name, Capability: uc.Capability, target: target}
	if uc.RateLimit.RPS > 0 {
		burst := uc.RateLimit.Burst
		if burst == 0 {
			burst = 1
		}
		u.limiter = rate.NewLimiter(rate.Limit(uc.RateLimit.RPS), burst)
	}

	headers := uc.Headers
	u.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			for _, h := range strippedHeaders {
				pr.Out.Header.Del(h)
			}
			for k, v := range headers {
				pr.Out.Header.Set(k, v)
			}
		},
		Transport: transport,
		ModifyResponse: func(resp *http.Response) error {
			metrics.RecordProxyRequest(uc.Name, resp.StatusCode)
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			metrics.RecordProxyRequest(uc.Name, http.StatusBadGateway)
			if onError != nil {
				onError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusBadGateway)
		},
	}
	return u, nil
}

// Get returns the upstream registered under the given name.
// Returns false if the name is not registered.
func (r *Registry) Get(name string) (*Upstream, bool) {
	u, ok := r.upstreams[name]
	return u, ok
}

// Has reports whether an upstream with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.upstreams[name]
	return ok
}

// Names returns a sorted list of all registered upstream names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.upstreams))
	for name := range r.upstreams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
