package stack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"terraform-provider-cloudram/internal/config"
	"terraform-provider-cloudram/internal/helpers"
	"terraform-provider-cloudram/internal/orchestrator"
	"terraform-provider-cloudram/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type instantClock struct {
	now time.Time
}

func (c *instantClock) Now() time.Time {
	return c.now
}

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return ctx.Err()
}

func TestStack_AllocatesEndToEnd(t *testing.T) {
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(agent.Close)

	var statusCalls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer from-config", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/my_vm":
			if statusCalls.Add(1) == 1 {
				_, _ = w.Write([]byte(`{"exists": false}`))
				return
			}
			_, _ = w.Write([]byte(`{"exists": true, "state": "running", "vm_id": "vm-3", "ip": "10.0.0.3"}`))
		case "/allocate":
			_, _ = w.Write([]byte(`{"vm_id": "vm-3"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(api.Close)

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.ApiBaseUrl = api.URL
	cfg.AgentUrl = agent.URL
	cfg.Token = "from-config"

	var tracked, users []string
	s := New(context.Background(), cfg, Options{
		Clock: &instantClock{now: time.Now()},
		Tracker: telemetry.TrackerFunc(func(item telemetry.TelemetryItem) {
			tracked = append(tracked, item.Type)
			users = append(users, item.UserID)
		}),
	})
	defer s.Close()

	outcome, err := s.Orchestrator.Run(context.Background(), orchestrator.RunRequest{Size: 2})

	require.NoError(t, err)
	assert.Equal(t, orchestrator.OutcomeRedirect, outcome.Kind)
	assert.Equal(t, "http://127.0.0.1:5000/status?ip=10.0.0.3&vm_id=vm-3", outcome.Target)
	assert.Equal(t, []string{"CLOUDRAM::ALLOCATE::START", "CLOUDRAM::ALLOCATE::SUCCESS"}, tracked)

	installId, err := s.Store.InstallId()
	require.NoError(t, err)
	want := helpers.Sha256Hash(installId)
	assert.Equal(t, []string{want, want}, users)
	assert.NotContains(t, users, installId)

	token, ok := s.Store.LoadToken()
	assert.True(t, ok)
	assert.Equal(t, "from-config", token)
}

func TestStack_CachedTokenIsUsedWhenNothingIsConfigured(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	s := New(context.Background(), cfg, Options{Tracker: telemetry.Noop})
	require.NoError(t, s.Store.StoreToken("from-login"))

	cred, err := s.Credential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-login", cred.Token())
}
