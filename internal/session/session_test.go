package session

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"terraform-provider-cloudram/internal/helpers"
	"terraform-provider-cloudram/internal/localstore"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	tokens    []string
	errs      []error
	calls     int
	refreshes int
	refreshed string
}

func (p *scriptedProvider) Token(ctx context.Context) (string, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.tokens) {
		return p.tokens[i], nil
	}
	return "", ErrNoCredential
}

func (p *scriptedProvider) Refresh(ctx context.Context) (string, error) {
	p.refreshes++
	if p.refreshed == "" {
		return "", ErrNoCredential
	}
	return p.refreshed, nil
}

func unauthorized() error {
	return &helpers.HttpError{StatusCode: http.StatusUnauthorized, Detail: "expired"}
}

func TestFileTokenProvider_ReadsOnEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	provider := NewFileTokenProvider(path)

	_, err := provider.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o600))
	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", token)

	require.NoError(t, os.WriteFile(path, []byte("second"), 0o600))
	token, err = provider.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", token)
}

func TestChainTokenProvider_FirstNonEmptyWins(t *testing.T) {
	chain := NewChainTokenProvider(
		NewStaticTokenProvider(""),
		NewFileTokenProvider(filepath.Join(t.TempDir(), "missing")),
		NewStaticTokenProvider("from-static"),
	)

	token, err := chain.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-static", token)

	_, err = NewChainTokenProvider().Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestResilientTokenProvider_RetriesThenCaches(t *testing.T) {
	store := localstore.New(t.TempDir())
	source := &scriptedProvider{
		errs:   []error{errors.New("not ready"), errors.New("not ready")},
		tokens: []string{"", "", "good"},
	}
	provider := NewResilientTokenProvider(source, store).WithRetry(5, time.Millisecond)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "good", token)
	assert.Equal(t, 3, source.calls)

	cached, ok := store.LoadToken()
	assert.True(t, ok)
	assert.Equal(t, "good", cached)
}

func TestResilientTokenProvider_FallsBackToCache(t *testing.T) {
	store := localstore.New(t.TempDir())
	require.NoError(t, store.StoreToken("stale-but-usable"))
	source := &scriptedProvider{}
	provider := NewResilientTokenProvider(source, store).WithRetry(3, time.Millisecond)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stale-but-usable", token)
	assert.Equal(t, 3, source.calls)
}

func TestResilientTokenProvider_NoTokenAnywhere(t *testing.T) {
	provider := NewResilientTokenProvider(&scriptedProvider{}, localstore.New(t.TempDir())).WithRetry(2, time.Millisecond)

	_, err := provider.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestAcquire_NoCredential(t *testing.T) {
	_, err := Acquire(context.Background(), NewStaticTokenProvider("  "))
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestCredentialDo_RefetchesOnceOn401(t *testing.T) {
	source := &scriptedProvider{tokens: []string{"old"}, refreshed: "new"}
	cred, err := Acquire(context.Background(), source)
	require.NoError(t, err)

	seen := []string{}
	err = cred.Do(context.Background(), func(token string) error {
		seen = append(seen, token)
		if token == "old" {
			return unauthorized()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"old", "new"}, seen)
	assert.Equal(t, "new", cred.Token())
	assert.Equal(t, 1, source.refreshes)
}

func TestCredentialDo_SecondUnauthorizedSurfaces(t *testing.T) {
	source := &scriptedProvider{tokens: []string{"old"}, refreshed: "also-bad"}
	cred, err := Acquire(context.Background(), source)
	require.NoError(t, err)

	calls := 0
	call := func(token string) error {
		calls++
		return unauthorized()
	}

	err = cred.Do(context.Background(), call)
	assert.True(t, helpers.IsUnauthorized(err))
	assert.Equal(t, 2, calls)

	err = cred.Do(context.Background(), call)
	assert.True(t, helpers.IsUnauthorized(err))
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, source.refreshes)
}

func TestCredentialDo_OtherErrorsAreNotRetried(t *testing.T) {
	source := &scriptedProvider{tokens: []string{"tok"}, refreshed: "new"}
	cred, err := Acquire(context.Background(), source)
	require.NoError(t, err)

	calls := 0
	err = cred.Do(context.Background(), func(token string) error {
		calls++
		return &helpers.HttpError{StatusCode: http.StatusInternalServerError, Detail: "boom"}
	})

	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, source.refreshes)
}

func TestCachedTokenProvider(t *testing.T) {
	store := localstore.New(t.TempDir())
	provider := NewCachedTokenProvider(store)

	_, err := provider.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, store.StoreToken("signed-in"))
	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "signed-in", token)
}
