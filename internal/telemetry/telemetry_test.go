package telemetry

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTelemetryItem(t *testing.T) {
	item := NewTelemetryItem("user@example.com", EventAllocate, ModeSuccess, map[string]interface{}{"size": 2})

	assert.Equal(t, "CLOUDRAM::ALLOCATE::SUCCESS", item.Type)
	assert.Equal(t, 2, item.Properties["size"])
	assert.Equal(t, runtime.GOOS, item.Properties["os"])
	assert.NotEqual(t, "user@example.com", item.UserID)
	assert.Len(t, item.UserID, 64)
}

func TestTrack_UsesTracker(t *testing.T) {
	var got []TelemetryItem
	tracker := TrackerFunc(func(item TelemetryItem) { got = append(got, item) })

	Track(tracker, "", EventTerminate, ModeFailure, nil)
	Track(nil, "", EventTerminate, ModeFailure, nil)

	require.Len(t, got, 1)
	assert.Equal(t, "CLOUDRAM::TERMINATE::FAILURE", got[0].Type)
	assert.Empty(t, got[0].UserID)
}

func TestNew_DisabledWithoutKey(t *testing.T) {
	svc := New(context.Background(), "")

	assert.False(t, svc.Enabled())
	svc.TrackEvent(NewTelemetryItem("", EventResume, ModeStart, nil))
	svc.Flush()
	svc.Close()
}
