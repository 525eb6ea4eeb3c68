package session

import (
	"context"
	"fmt"
	"time"

	"terraform-provider-cloudram/internal/constants"
	"terraform-provider-cloudram/internal/retry"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// TokenCache remembers the last token that was successfully obtained.
type TokenCache interface {
	LoadToken() (string, bool)
	StoreToken(token string) error
}

// ResilientTokenProvider retries a source that may be briefly unavailable,
// for example right after the identity provider starts up, and falls back
// to the last good token when the source stays silent.
type ResilientTokenProvider struct {
	source   TokenProvider
	cache    TokenCache
	attempts int
	backoff  time.Duration
}

func NewResilientTokenProvider(source TokenProvider, cache TokenCache) *ResilientTokenProvider {
	return &ResilientTokenProvider{
		source:   source,
		cache:    cache,
		attempts: constants.DEFAULT_TOKEN_FETCH_ATTEMPTS,
		backoff:  constants.DEFAULT_TOKEN_FETCH_BACKOFF,
	}
}

func (p *ResilientTokenProvider) WithRetry(attempts int, backoff time.Duration) *ResilientTokenProvider {
	p.attempts = attempts
	p.backoff = backoff
	return p
}

func (p *ResilientTokenProvider) Token(ctx context.Context) (string, error) {
	var token string
	attempt := 0
	err := retry.For(ctx, p.attempts, p.backoff, func() error {
		attempt++
		var err error
		token, err = p.source.Token(ctx)
		if err == nil && token == "" {
			err = ErrNoCredential
		}
		if err != nil {
			tflog.Warn(ctx, fmt.Sprintf("getting access token attempt %d failed: %v", attempt, err))
		}
		return err
	})
	if err == nil {
		p.remember(ctx, token)
		return token, nil
	}

	if p.cache != nil {
		if cached, ok := p.cache.LoadToken(); ok {
			tflog.Info(ctx, "using cached access token, it may be slightly stale")
			return cached, nil
		}
	}

	return "", ErrNoCredential
}

// Refresh goes straight to the source once. The cached token is the one
// that was just rejected, so it is not a fallback here.
func (p *ResilientTokenProvider) Refresh(ctx context.Context) (string, error) {
	token, err := p.source.Refresh(ctx)
	if err != nil || token == "" {
		return "", ErrNoCredential
	}
	p.remember(ctx, token)
	return token, nil
}

func (p *ResilientTokenProvider) remember(ctx context.Context, token string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.StoreToken(token); err != nil {
		tflog.Warn(ctx, "could not cache access token: "+err.Error())
	}
}
