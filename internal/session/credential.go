package session

import (
	"context"
	"sync"

	"terraform-provider-cloudram/internal/helpers"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Credential is a bearer token with unknown expiry. It re-fetches the token
// at most once when the control plane answers 401.
type Credential struct {
	provider TokenProvider

	mu        sync.Mutex
	token     string
	refreshed bool
}

// Acquire fetches a token right now. Callers that act long after an earlier
// fetch should acquire a new credential instead of reusing the old one.
func Acquire(ctx context.Context, provider TokenProvider) (*Credential, error) {
	token, err := provider.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoCredential
	}

	return &Credential{provider: provider, token: token}, nil
}

func (c *Credential) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Do runs call with the current token and retries it once with a refreshed
// token if the first attempt was rejected as unauthorized.
func (c *Credential) Do(ctx context.Context, call func(token string) error) error {
	err := call(c.Token())
	if err == nil || !helpers.IsUnauthorized(err) {
		return err
	}

	c.mu.Lock()
	if c.refreshed {
		c.mu.Unlock()
		return err
	}
	c.refreshed = true
	c.mu.Unlock()

	tflog.Info(ctx, "control plane rejected the access token, fetching a new one")
	token, refreshErr := c.provider.Refresh(ctx)
	if refreshErr != nil {
		return err
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	return call(token)
}
