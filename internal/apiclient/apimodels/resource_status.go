package apimodels

import (
	"strings"

	"terraform-provider-cloudram/internal/clientmodels"
)

type ResourceState string

const (
	ResourceStateAbsent   ResourceState = "absent"
	ResourceStatePending  ResourceState = "pending"
	ResourceStateRunning  ResourceState = "running"
	ResourceStateStopping ResourceState = "stopping"
	ResourceStateStopped  ResourceState = "stopped"
	ResourceStateUnknown  ResourceState = "unknown"
)

// ParseResourceState maps the control plane state string onto the closed
// set of states the client acts on. Transitional values the client does not
// know about collapse to unknown.
func ParseResourceState(exists bool, raw string) ResourceState {
	if !exists {
		return ResourceStateAbsent
	}

	switch ResourceState(strings.ToLower(strings.TrimSpace(raw))) {
	case ResourceStateRunning:
		return ResourceStateRunning
	case ResourceStateStopped:
		return ResourceStateStopped
	case ResourceStateStopping:
		return ResourceStateStopping
	case ResourceStatePending:
		return ResourceStatePending
	default:
		return ResourceStateUnknown
	}
}

// ResourceStatus is the read-only view of the user's VM as reported by the
// control plane.
type ResourceStatus struct {
	Exists  bool
	State   ResourceState
	ID      string
	Address string
	// RawState keeps what the server said, for messages.
	RawState string
}

func NewResourceStatus(response clientmodels.VmStatusResponse) *ResourceStatus {
	return &ResourceStatus{
		Exists:   response.Exists,
		State:    ParseResourceState(response.Exists, response.State),
		ID:       response.VmId,
		Address:  response.Ip,
		RawState: response.State,
	}
}

func (s *ResourceStatus) IsUsable() bool {
	return s != nil && s.State == ResourceStateRunning && s.Address != ""
}

func (s *ResourceStatus) IsStopped() bool {
	return s != nil && (s.State == ResourceStateStopped || s.State == ResourceStateStopping)
}

// DisplayState is the state as shown to the user.
func (s *ResourceStatus) DisplayState() string {
	if s == nil {
		return string(ResourceStateUnknown)
	}
	if s.RawState != "" {
		return s.RawState
	}
	return string(s.State)
}
