package apiclient

import (
	"context"
	"time"

	"terraform-provider-cloudram/internal/apiclient/apimodels"
)

// Client binds the control plane operations to one host so they can be
// handed to the orchestration code as a single collaborator.
type Client struct {
	config HostConfig
}

func NewClient(config HostConfig) *Client {
	return &Client{config: config}
}

func (c *Client) Config() HostConfig {
	return c.config
}

func (c *Client) GetStatus(ctx context.Context, token string, timeout time.Duration) (*apimodels.ResourceStatus, error) {
	return GetMyVm(ctx, c.config, token, timeout)
}

func (c *Client) Allocate(ctx context.Context, token string, size int, timeout time.Duration) (*apimodels.ResourceStatus, error) {
	return AllocateVm(ctx, c.config, token, size, timeout)
}

func (c *Client) Start(ctx context.Context, token string, vmId string, timeout time.Duration) (*apimodels.ResourceStatus, error) {
	return StartVm(ctx, c.config, token, vmId, timeout)
}

func (c *Client) Terminate(ctx context.Context, token string, vmId string, timeout time.Duration) error {
	return TerminateVm(ctx, c.config, token, vmId, timeout)
}
