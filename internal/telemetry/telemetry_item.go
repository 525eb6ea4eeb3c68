package telemetry

import (
	"fmt"
	"runtime"

	"terraform-provider-cloudram/internal/helpers"
)

type TelemetryItem struct {
	UserID     string
	DeviceId   string
	Type       string
	Properties map[string]interface{}
}

func NewTelemetryItem(userId string, eventType TelemetryEvent, mode TelemetryEventMode, properties map[string]interface{}) TelemetryItem {
	item := TelemetryItem{
		Type:       fmt.Sprintf("%s::%s", string(eventType), string(mode)),
		Properties: map[string]interface{}{},
	}
	for key, value := range properties {
		item.Properties[key] = value
	}

	item.Properties["os"] = runtime.GOOS
	item.Properties["architecture"] = runtime.GOARCH

	// The raw user id never leaves the machine
	if userId != "" {
		item.UserID = helpers.Sha256Hash(userId)
	}

	return item
}
