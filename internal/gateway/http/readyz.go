package http

import (
	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
)

// Upstream is a service whose liveness gates gateway readiness.
type Upstream struct {
	Name   string
	Client *authsdk.SDKClient
}

func upstreamPingers(upstreams []Upstream) map[string]httpx.Pinger {
	deps := make(map[string]httpx.Pinger, len(upstreams))
	for _, u := range upstreams {
		deps[u.Name] = u.Client
	}
	return deps
}
