package clientmodels

import "github.com/goccy/go-json"

// VmStatusResponse is the body returned by GET /my_vm and, when the backend
// answers synchronously, by POST /allocate and POST /start_vm.
type VmStatusResponse struct {
	Exists bool   `json:"exists"`
	State  string `json:"state"`
	VmId   string `json:"vm_id"`
	Ip     string `json:"ip"`
}

// UnmarshalJSON accepts both the vm_id/ip spelling used by the control plane
// and the generic id/address spelling.
func (r *VmStatusResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Exists  bool   `json:"exists"`
		State   string `json:"state"`
		VmId    string `json:"vm_id"`
		Id      string `json:"id"`
		Ip      string `json:"ip"`
		Address string `json:"address"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Exists = raw.Exists
	r.State = raw.State
	r.VmId = raw.VmId
	if r.VmId == "" {
		r.VmId = raw.Id
	}
	r.Ip = raw.Ip
	if r.Ip == "" {
		r.Ip = raw.Address
	}
	return nil
}

type AllocateVmRequest struct {
	RamSize int `json:"ram_size"`
}

type VmIdRequest struct {
	VmId string `json:"vm_id"`
}
