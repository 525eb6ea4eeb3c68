package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/amplitude/analytics-go/amplitude"
	"github.com/amplitude/analytics-go/amplitude/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

type TelemetryService struct {
	ctx      context.Context
	client   amplitude.Client
	deviceId string
	enabled  atomic.Bool
}

func (t *TelemetryService) Enabled() bool {
	return t != nil && t.enabled.Load()
}

func (t *TelemetryService) TrackEvent(item TelemetryItem) {
	if !t.Enabled() {
		tflog.Debug(t.ctx, "[Telemetry] Telemetry is disabled, ignoring event track")
		return
	}

	tflog.Debug(t.ctx, fmt.Sprintf("[Telemetry] Sending Amplitude Tracking event %s", item.Type))

	if item.DeviceId == "" {
		item.DeviceId = t.deviceId
	}
	if len(item.UserID) < 5 {
		item.UserID = fmt.Sprintf("anonymous@%s", item.DeviceId)
	}

	t.client.Track(amplitude.Event{
		UserID:          item.UserID,
		DeviceID:        item.DeviceId,
		EventType:       item.Type,
		EventProperties: item.Properties,
	})
}

func (t *TelemetryService) Callback(result types.ExecuteResult) {
	if result.Code < 200 || result.Code >= 300 {
		tflog.Debug(t.ctx, fmt.Sprintf("[Telemetry] Failed to send event to Amplitude: %v", result.Message))
		if result.Code == 401 || result.Code == 403 || result.Message == "Invalid API key" {
			tflog.Error(t.ctx, "[Telemetry] Disabling telemetry as received invalid key")
			t.enabled.Store(false)
		}
		return
	}

	tflog.Debug(t.ctx, "[Telemetry] Event sent to Amplitude")
}

func (t *TelemetryService) Flush() {
	if t.client != nil {
		t.client.Flush()
	}
}

func (t *TelemetryService) Close() {
	if t.client != nil {
		t.client.Shutdown()
	}
}
