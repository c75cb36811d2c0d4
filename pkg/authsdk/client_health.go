package authsdk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

// Probe paths served by every BiteBank service.
const (
	LivezPath  = "/livez"
	ReadyzPath = "/readyz"
)

var _ httpx.Pinger = (*SDKClient)(nil)

// GetLiveness fetches the service's liveness report.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.probe(ctx, LivezPath)
}

// GetReadiness fetches the readiness report. Anything but a 200 is an error.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.probe(ctx, ReadyzPath)
}

// Ping succeeds when the service answers its liveness probe, which lets a
// client stand in as a readiness dependency.
func (c *SDKClient) Ping(ctx context.Context) error {
	_, err := c.GetLiveness(ctx)
	return err
}

func (c *SDKClient) probe(ctx context.Context, path string) (*HealthResponse, error) {
	headers := map[string]string{"Accept": "application/json"}
	if id := slogx.RequestIDFromContext(ctx); id != "" {
		headers[slogx.RequestIDHeader] = id
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, headers)
	if err != nil {
		return nil, err
	}

	health := new(HealthResponse)
	if err := decodeJSON(resp, health, http.StatusOK); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return health, nil
}
