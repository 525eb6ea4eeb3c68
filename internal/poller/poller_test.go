package poller

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/helpers"
	"terraform-provider-cloudram/internal/localstore"
	"terraform-provider-cloudram/internal/progress"
	"terraform-provider-cloudram/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

type step struct {
	status *apimodels.ResourceStatus
	err    error
}

type scriptedSource struct {
	mu       sync.Mutex
	steps    []step
	calls    int
	timeouts []time.Duration
	onCall   func()
}

func (s *scriptedSource) GetStatus(ctx context.Context, token string, timeout time.Duration) (*apimodels.ResourceStatus, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	s.timeouts = append(s.timeouts, timeout)
	onCall := s.onCall
	s.mu.Unlock()

	if onCall != nil {
		onCall()
	}
	if i >= len(s.steps) {
		return pending(), nil
	}
	return s.steps[i].status, s.steps[i].err
}

func pending() *apimodels.ResourceStatus {
	return &apimodels.ResourceStatus{Exists: true, State: apimodels.ResourceStatePending, ID: "vm-1", RawState: "pending"}
}

func running(address string) *apimodels.ResourceStatus {
	return &apimodels.ResourceStatus{Exists: true, State: apimodels.ResourceStateRunning, ID: "vm-1", Address: address, RawState: "running"}
}

func timeout() error {
	return &helpers.TimeoutError{Verb: helpers.HttpCallerVerbGet, Url: "/my_vm", After: 90 * time.Second}
}

func credential(t *testing.T) *session.Credential {
	t.Helper()
	cred, err := session.Acquire(context.Background(), session.NewStaticTokenProvider("tok"))
	require.NoError(t, err)
	return cred
}

func TestPoll_SucceedsOnThirdCall(t *testing.T) {
	source := &scriptedSource{steps: []step{{status: pending()}, {status: pending()}, {status: running("10.0.0.5")}}}
	recorder := &progress.Recorder{}
	clock := newFakeClock()
	poller := New(source, nil, recorder, clock)

	status, err := poller.Poll(context.Background(), credential(t), DefaultOptions())

	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", status.Address)
	assert.Equal(t, 3, source.calls)
	assert.Len(t, recorder.OfKind(progress.EventProgress), 3)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, clock.sleeps)
	assert.Equal(t, "Allocating: Waiting... state=pending (attempt 1)", recorder.OfKind(progress.EventProgress)[0].Message)
	for _, requestTimeout := range source.timeouts {
		assert.Equal(t, 90*time.Second, requestTimeout)
	}
}

func TestPoll_ToleratesTimeouts(t *testing.T) {
	source := &scriptedSource{steps: []step{{err: timeout()}, {err: timeout()}, {status: running("10.0.0.5")}}}
	recorder := &progress.Recorder{}
	poller := New(source, nil, recorder, newFakeClock())

	status, err := poller.Poll(context.Background(), credential(t), Options{StatusPrefix: "Resuming:"})

	require.NoError(t, err)
	assert.True(t, status.IsUsable())
	assert.Equal(t, 3, source.calls)

	events := recorder.OfKind(progress.EventProgress)
	require.Len(t, events, 3)
	assert.Equal(t, "Resuming: Network slow / backend cold start. Retrying... (attempt 1)", events[0].Message)
	assert.Equal(t, progress.ToneWarning, events[0].Tone)
	assert.Equal(t, 2, events[1].Attempt)
}

func TestPoll_VanishedStopsImmediately(t *testing.T) {
	source := &scriptedSource{steps: []step{{status: pending()}, {status: &apimodels.ResourceStatus{Exists: false, State: apimodels.ResourceStateAbsent}}, {status: running("10.0.0.5")}}}
	store := localstore.New(t.TempDir())
	require.NoError(t, store.SaveHint(localstore.Hint{VmId: "vm-1", VmIp: "10.0.0.9"}))
	poller := New(source, store, nil, newFakeClock())

	_, err := poller.Poll(context.Background(), credential(t), DefaultOptions())

	assert.ErrorIs(t, err, ErrResourceVanished)
	assert.Equal(t, 2, source.calls)
	hint, err := store.LoadHint()
	require.NoError(t, err)
	assert.True(t, hint.IsEmpty())
}

func TestPoll_CeilingExceeded(t *testing.T) {
	source := &scriptedSource{}
	poller := New(source, nil, nil, newFakeClock())

	_, err := poller.Poll(context.Background(), credential(t), Options{Ceiling: 12 * time.Second, Interval: 5 * time.Second})

	assert.ErrorIs(t, err, ErrCeilingExceeded)
	assert.Equal(t, 3, source.calls)
}

func TestPoll_OtherErrorsAreFatal(t *testing.T) {
	for name, fatal := range map[string]error{
		"http":    &helpers.HttpError{StatusCode: http.StatusInternalServerError, Detail: "db down"},
		"network": &helpers.NetworkError{Verb: helpers.HttpCallerVerbGet, Url: "/my_vm", Err: assert.AnError},
	} {
		t.Run(name, func(t *testing.T) {
			source := &scriptedSource{steps: []step{{status: pending()}, {err: fatal}}}
			poller := New(source, nil, nil, newFakeClock())

			_, err := poller.Poll(context.Background(), credential(t), DefaultOptions())

			assert.Equal(t, fatal, err)
			assert.Equal(t, 2, source.calls)
		})
	}
}

func TestPoll_HintIsOverwrittenNotMerged(t *testing.T) {
	store := localstore.New(t.TempDir())
	require.NoError(t, store.SaveHint(localstore.Hint{VmId: "vm-stale", VmIp: "10.0.0.9"}))

	var hintsSeen []localstore.Hint
	source := &scriptedSource{steps: []step{
		{status: &apimodels.ResourceStatus{Exists: true, State: apimodels.ResourceStatePending, ID: "vm-2"}},
		{status: &apimodels.ResourceStatus{Exists: true, State: apimodels.ResourceStateRunning, ID: "vm-2", Address: "10.0.0.5"}},
	}}
	source.onCall = func() {
		hint, err := store.LoadHint()
		assert.NoError(t, err)
		hintsSeen = append(hintsSeen, hint)
	}
	poller := New(source, store, nil, newFakeClock())

	_, err := poller.Poll(context.Background(), credential(t), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, hintsSeen, 2)
	assert.Equal(t, "vm-2", hintsSeen[1].VmId)
	assert.Empty(t, hintsSeen[1].VmIp, "stale address must not survive a fresh status without one")

	hint, err := store.LoadHint()
	require.NoError(t, err)
	assert.Equal(t, "vm-2", hint.VmId)
	assert.Equal(t, "10.0.0.5", hint.VmIp)
}

func TestPoll_SecondLoopIsRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	source := &scriptedSource{steps: []step{{status: running("10.0.0.5")}}}
	var once sync.Once
	source.onCall = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}
	poller := New(source, nil, nil, newFakeClock())
	cred := credential(t)

	done := make(chan error, 1)
	go func() {
		_, err := poller.Poll(context.Background(), cred, DefaultOptions())
		done <- err
	}()

	<-entered
	assert.True(t, poller.Active())
	_, err := poller.Poll(context.Background(), cred, DefaultOptions())
	assert.ErrorIs(t, err, ErrPollInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, poller.Active())
	assert.Equal(t, 1, source.calls)
}

func TestPoll_UnauthorizedRefetchesCredentialOnce(t *testing.T) {
	source := &scriptedSource{steps: []step{
		{err: &helpers.HttpError{StatusCode: http.StatusUnauthorized, Detail: "expired"}},
		{status: running("10.0.0.5")},
	}}
	poller := New(source, nil, nil, newFakeClock())

	status, err := poller.Poll(context.Background(), credential(t), DefaultOptions())

	require.NoError(t, err)
	assert.True(t, status.IsUsable())
	assert.Equal(t, 2, source.calls)
}
