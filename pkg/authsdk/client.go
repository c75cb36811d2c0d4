package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every call made with the client built by NewSDKClient.
const DefaultTimeout = 10 * time.Second

// SDKClient is a client for the bitebank authentication service.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client with its own HTTP client.
func NewSDKClient(baseURL string) *SDKClient {
	return NewSDKClientWithHTTP(baseURL, &http.Client{Timeout: DefaultTimeout})
}

// NewSDKClientWithHTTP creates a client that shares hc, so callers can pool
// connections across several upstream clients.
func NewSDKClientWithHTTP(baseURL string, hc *http.Client) *SDKClient {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: hc,
	}
}
