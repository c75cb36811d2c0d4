// Package forward relays gateway requests to the upstream services.
package forward

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

// Request headers passed upstream. Everything else stays at the gateway.
var requestHeaders = []string{
	"Authorization",
	"Content-Type",
	"Accept",
	"Accept-Language",
}

// Response headers relayed to the client.
var responseHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Content-Disposition",
	"Cache-Control",
	"Pragma",
	"ETag",
	"Last-Modified",
	"Location",
	"WWW-Authenticate",
	"Retry-After",
	"X-RateLimit-Limit",
	"X-RateLimit-Window",
}

// Forwarder sends requests to one upstream service.
type Forwarder struct {
	Name     string // upstream name used in logs
	Upstream *url.URL
	Client   *http.Client
}

// New parses baseURL and returns a Forwarder using client.
func New(name, baseURL string, client *http.Client) (*Forwarder, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("forward: upstream url needs a scheme and host")
	}
	return &Forwarder{Name: name, Upstream: u, Client: client}, nil
}

// Handler forwards to the same path on the upstream.
func (f *Forwarder) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.Forward(w, r, r.URL.Path)
	})
}

// To forwards every request to a fixed upstream path.
func (f *Forwarder) To(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.Forward(w, r, path)
	})
}

// Forward streams r to path on the upstream and the answer back to w. Upstream
// statuses are relayed unchanged; transport failures become 502 or 504.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, path string) {
	ctx := r.Context()
	log := slogx.FromContext(ctx).With("upstream", f.Name)

	target := *f.Upstream
	target.Path = f.Upstream.Path + path
	target.RawPath = ""
	target.RawQuery = r.URL.RawQuery

	var body io.Reader = http.NoBody
	if r.ContentLength != 0 {
		body = r.Body
	}

	out, err := http.NewRequestWithContext(ctx, r.Method, target.String(), body)
	if err != nil {
		log.Error("build upstream request", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}
	out.ContentLength = r.ContentLength
	copyHeaders(out.Header, r.Header, requestHeaders)

	if id := slogx.RequestIDFromContext(ctx); id != "" {
		out.Header.Set(slogx.RequestIDHeader, id)
	}
	if ip := clientIP(r); ip != "" {
		if prior := r.Header.Get("X-Forwarded-For"); prior != "" {
			ip = prior + ", " + ip
		}
		out.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := f.Client.Do(out)
	if err != nil {
		f.writeTransportError(w, r, log, err)
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header, responseHeaders)
	w.WriteHeader(resp.StatusCode)

	if resp.StatusCode >= 400 {
		log.Info("upstream rejected request", "status", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		// Headers are gone already, nothing left to tell the client
		log.Warn("relay upstream body", "err", err)
	}
}

func (f *Forwarder) writeTransportError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	if errors.Is(r.Context().Err(), context.Canceled) {
		log.Info("client went away before upstream answered")
		return
	}

	if IsTimeout(err) {
		log.Error("upstream timed out", "err", err)
		authsdk.ErrUpstreamTimeout.WriteError(w)
		return
	}

	log.Error("upstream unreachable", "err", err)
	authsdk.ErrUpstreamUnavailable.WriteError(w)
}

// IsTimeout reports whether err is a deadline or timeout error.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func copyHeaders(dst, src http.Header, keys []string) {
	for _, k := range keys {
		for _, v := range src.Values(k) {
			dst.Add(k, v)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
