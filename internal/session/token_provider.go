// Package session supplies the bearer credential for the signed-in user.
// Issuing and refreshing sessions belongs to the identity provider; this
// package only knows where to read the current token from.
package session

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
)

var ErrNoCredential = errors.New("No auth token found. Please sign in again.")

// TokenProvider returns the freshest token it can find. Refresh is called
// after the control plane rejected a token and must bypass any cache.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

type StaticTokenProvider struct {
	token string
}

func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: strings.TrimSpace(token)}
}

func (p *StaticTokenProvider) Token(ctx context.Context) (string, error) {
	if p.token == "" {
		return "", ErrNoCredential
	}
	return p.token, nil
}

func (p *StaticTokenProvider) Refresh(ctx context.Context) (string, error) {
	return p.Token(ctx)
}

// FileTokenProvider reads the token from a file on every call, so a token
// rotated by an external sign-in helper is picked up without a restart.
type FileTokenProvider struct {
	path string
}

func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

func (p *FileTokenProvider) Token(ctx context.Context) (string, error) {
	if p.path == "" {
		return "", ErrNoCredential
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredential
		}
		return "", errors.Wrapf(err, "error reading token file %s", p.path)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

func (p *FileTokenProvider) Refresh(ctx context.Context) (string, error) {
	return p.Token(ctx)
}

// ChainTokenProvider asks each provider in turn and returns the first token.
type ChainTokenProvider struct {
	providers []TokenProvider
}

func NewChainTokenProvider(providers ...TokenProvider) *ChainTokenProvider {
	return &ChainTokenProvider{providers: providers}
}

func (p *ChainTokenProvider) Token(ctx context.Context) (string, error) {
	return p.first(ctx, func(provider TokenProvider) (string, error) {
		return provider.Token(ctx)
	})
}

func (p *ChainTokenProvider) Refresh(ctx context.Context) (string, error) {
	return p.first(ctx, func(provider TokenProvider) (string, error) {
		return provider.Refresh(ctx)
	})
}

func (p *ChainTokenProvider) first(ctx context.Context, fetch func(TokenProvider) (string, error)) (string, error) {
	var lastErr error = ErrNoCredential
	for _, provider := range p.providers {
		if provider == nil {
			continue
		}
		token, err := fetch(provider)
		if err == nil && token != "" {
			return token, nil
		}
		if err != nil && !errors.Is(err, ErrNoCredential) {
			lastErr = err
		}
	}
	return "", lastErr
}

// CachedTokenProvider reads the token saved by a previous sign-in.
type CachedTokenProvider struct {
	cache TokenCache
}

func NewCachedTokenProvider(cache TokenCache) *CachedTokenProvider {
	return &CachedTokenProvider{cache: cache}
}

func (p *CachedTokenProvider) Token(ctx context.Context) (string, error) {
	if p.cache == nil {
		return "", ErrNoCredential
	}
	token, ok := p.cache.LoadToken()
	if !ok {
		return "", ErrNoCredential
	}
	return token, nil
}

func (p *CachedTokenProvider) Refresh(ctx context.Context) (string, error) {
	return p.Token(ctx)
}
