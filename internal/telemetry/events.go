package telemetry

type TelemetryEvent string

const (
	EventAllocate  TelemetryEvent = "CLOUDRAM::ALLOCATE"
	EventResume    TelemetryEvent = "CLOUDRAM::RESUME"
	EventTerminate TelemetryEvent = "CLOUDRAM::TERMINATE"
)

type TelemetryEventMode string

const (
	ModeStart   TelemetryEventMode = "START"
	ModeSuccess TelemetryEventMode = "SUCCESS"
	ModeFailure TelemetryEventMode = "FAILURE"
	ModeSkipped TelemetryEventMode = "SKIPPED"
)
