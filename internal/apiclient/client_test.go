package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/helpers"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]interface{}
}

func newControlPlane(t *testing.T, responses map[string]string) (*Client, *[]recordedRequest) {
	t.Helper()
	requests := []recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if body, _ := io.ReadAll(r.Body); len(body) > 0 {
			assert.NoError(t, json.Unmarshal(body, &rec.Body))
		}
		requests = append(requests, rec)

		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return NewClient(HostConfig{Host: srv.URL + "/"}), &requests
}

func TestGetStatus_ParsesControlPlaneFields(t *testing.T) {
	client, requests := newControlPlane(t, map[string]string{
		"/my_vm": `{"exists":true,"state":"running","vm_id":"vm-1","ip":"10.0.0.5"}`,
	})

	status, err := client.GetStatus(context.Background(), "tok", time.Second)
	require.NoError(t, err)
	assert.Equal(t, &apimodels.ResourceStatus{
		Exists:   true,
		State:    apimodels.ResourceStateRunning,
		ID:       "vm-1",
		Address:  "10.0.0.5",
		RawState: "running",
	}, status)
	assert.True(t, status.IsUsable())

	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodGet, (*requests)[0].Method)
	assert.Equal(t, "Bearer tok", (*requests)[0].Auth)
}

func TestGetStatus_AcceptsGenericFieldNames(t *testing.T) {
	client, _ := newControlPlane(t, map[string]string{
		"/my_vm": `{"exists":true,"state":"stopped","id":"vm-2","address":"10.0.0.9"}`,
	})

	status, err := client.GetStatus(context.Background(), "tok", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "vm-2", status.ID)
	assert.Equal(t, "10.0.0.9", status.Address)
	assert.True(t, status.IsStopped())
}

func TestGetStatus_Absent(t *testing.T) {
	client, _ := newControlPlane(t, map[string]string{"/my_vm": `{"exists":false}`})

	status, err := client.GetStatus(context.Background(), "tok", time.Second)
	require.NoError(t, err)
	assert.Equal(t, apimodels.ResourceStateAbsent, status.State)
	assert.False(t, status.IsUsable())
}

func TestAllocate_SendsRamSize(t *testing.T) {
	client, requests := newControlPlane(t, map[string]string{"/allocate": `{}`})

	status, err := client.Allocate(context.Background(), "tok", 4, time.Second)
	require.NoError(t, err)
	assert.False(t, status.Exists)

	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodPost, (*requests)[0].Method)
	assert.Equal(t, float64(4), (*requests)[0].Body["ram_size"])
}

func TestStartAndTerminate_SendVmId(t *testing.T) {
	client, requests := newControlPlane(t, map[string]string{
		"/start_vm":     `{"vm_id":"vm-1"}`,
		"/terminate_vm": ``,
	})

	status, err := client.Start(context.Background(), "tok", "vm-1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "vm-1", status.ID)

	require.NoError(t, client.Terminate(context.Background(), "tok", "vm-1", time.Second))

	require.Len(t, *requests, 2)
	assert.Equal(t, "/start_vm", (*requests)[0].Path)
	assert.Equal(t, "vm-1", (*requests)[0].Body["vm_id"])
	assert.Equal(t, "/terminate_vm", (*requests)[1].Path)
	assert.Equal(t, "vm-1", (*requests)[1].Body["vm_id"])
}

func TestTerminate_RequiresId(t *testing.T) {
	client, requests := newControlPlane(t, nil)

	err := client.Terminate(context.Background(), "tok", "", time.Second)
	assert.EqualError(t, err, "vm id cannot be empty")
	assert.Empty(t, *requests)
}

func TestControlPlaneErrorsSurfaceDetail(t *testing.T) {
	client, _ := newControlPlane(t, nil)

	_, err := client.GetStatus(context.Background(), "tok", time.Second)
	require.Error(t, err)
	assert.Equal(t, "Not Found", err.Error())

	httpErr, ok := helpers.AsHttpError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestParseResourceState(t *testing.T) {
	assert.Equal(t, apimodels.ResourceStateAbsent, apimodels.ParseResourceState(false, "running"))
	assert.Equal(t, apimodels.ResourceStateRunning, apimodels.ParseResourceState(true, "Running"))
	assert.Equal(t, apimodels.ResourceStateStopping, apimodels.ParseResourceState(true, "stopping"))
	assert.Equal(t, apimodels.ResourceStatePending, apimodels.ParseResourceState(true, "pending"))
	assert.Equal(t, apimodels.ResourceStateUnknown, apimodels.ParseResourceState(true, "shutting-down"))
	assert.Equal(t, apimodels.ResourceStateUnknown, apimodels.ParseResourceState(true, ""))
}
