// Package telemetry sends anonymous outcome events for allocation runs and
// resolver actions. It is off unless an Amplitude key is compiled in.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/amplitude/analytics-go/amplitude"
	"github.com/amplitude/analytics-go/amplitude/types"
	"github.com/google/uuid"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

var (
	globalTelemetryService *TelemetryService
	lock                          = &sync.Mutex{}
	AMPLITUDE_API_KEY      string = ""
	VERSION                       = ""
)

// Tracker is what the orchestration code reports outcomes to.
type Tracker interface {
	TrackEvent(item TelemetryItem)
}

type TrackerFunc func(item TelemetryItem)

func (f TrackerFunc) TrackEvent(item TelemetryItem) {
	f(item)
}

var Noop Tracker = TrackerFunc(func(TelemetryItem) {})

func New(ctx context.Context, apiKey string) *TelemetryService {
	svc := &TelemetryService{
		ctx:      ctx,
		deviceId: uuid.NewString(),
	}

	if apiKey == "" {
		tflog.Warn(ctx, "Telemetry disabled as no API key found")
		return svc
	}

	config := amplitude.NewConfig(apiKey)
	config.FlushQueueSize = 100
	config.FlushInterval = time.Second * 3
	config.ExecuteCallback = func(result types.ExecuteResult) {
		svc.Callback(result)
	}

	svc.client = amplitude.NewClient(config)
	svc.enabled.Store(true)
	return svc
}

// Get returns the process wide service built from the compiled in key.
func Get(ctx context.Context) *TelemetryService {
	lock.Lock()
	defer lock.Unlock()

	if globalTelemetryService == nil {
		globalTelemetryService = New(ctx, AMPLITUDE_API_KEY)
	}

	return globalTelemetryService
}

// Track builds and sends one event, adding the build version.
func Track(tracker Tracker, userId string, event TelemetryEvent, mode TelemetryEventMode, properties map[string]interface{}) {
	if tracker == nil {
		return
	}

	item := NewTelemetryItem(userId, event, mode, properties)
	if VERSION != "" {
		item.Properties["version"] = VERSION
	}
	tracker.TrackEvent(item)
}
