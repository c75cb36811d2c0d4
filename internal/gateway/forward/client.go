package forward

import (
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds the wait for an upstream's response headers.
const DefaultTimeout = 10 * time.Second

// NewClient builds the pooled client shared by every forwarder and the remote
// verifier. Build it once at startup.
//
// timeout covers the wait for response headers only. Bodies are streamed with
// no overall deadline, so a long image relay is never cut off halfway; the
// inbound request context still ends it when the client goes away.
func NewClient(timeout time.Duration, maxIdleConns int) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 100
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConns,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Transport: transport,
		// Redirects are the caller's business; relay them as-is
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
