package constants

import "time"

const (
	DefaultApiBaseUrl = "http://127.0.0.1:8000"
	DefaultAgentUrl   = "http://127.0.0.1:7071"
	DefaultStatusUrl  = "http://127.0.0.1:5000/status"
	DefaultSignInUrl  = "http://127.0.0.1:5000/login"
	DefaultVmSize     = 1

	MyVmPath        = "/my_vm"
	AllocatePath    = "/allocate"
	StartVmPath     = "/start_vm"
	TerminateVmPath = "/terminate_vm"
	AgentHealthPath = "/health"

	NoCacheHeader = "X-No-Cache"
)

const (
	DEFAULT_AGENT_PROBE_TIMEOUT  = 2500 * time.Millisecond
	DEFAULT_AGENT_WATCH_INTERVAL = 1200 * time.Millisecond
	DEFAULT_STATUS_TIMEOUT       = 90 * time.Second
	DEFAULT_ACTION_TIMEOUT       = 25 * time.Second
	DEFAULT_TERMINATE_TIMEOUT    = 90 * time.Second
	DEFAULT_POLL_CEILING         = 15 * time.Minute
	DEFAULT_POLL_INTERVAL        = 5 * time.Second
	DEFAULT_POLL_REQUEST_TIMEOUT = 90 * time.Second
	DEFAULT_TOKEN_FETCH_ATTEMPTS = 5
	DEFAULT_TOKEN_FETCH_BACKOFF  = 500 * time.Millisecond
	DEFAULT_CREATE_TIMEOUT       = 20 * time.Minute
	DEFAULT_DELETE_TIMEOUT       = 5 * time.Minute
)
