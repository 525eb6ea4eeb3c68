package apiclient

import (
	"context"
	"fmt"
	"time"

	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/clientmodels"
	"terraform-provider-cloudram/internal/constants"
	"terraform-provider-cloudram/internal/helpers"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// AllocateVm asks the control plane for a new VM. The response may carry
// the id and address, or nothing at all when the backend works
// asynchronously.
func AllocateVm(ctx context.Context, config HostConfig, token string, size int, timeout time.Duration) (*apimodels.ResourceStatus, error) {
	url := helpers.JoinUrl(config.Host, constants.AllocatePath)
	request := clientmodels.AllocateVmRequest{RamSize: size}

	client := helpers.NewHttpCaller(ctx, config.DisableTlsValidation)
	var response clientmodels.VmStatusResponse
	if _, err := client.PostDataToClient(url, request, &helpers.HttpCallerAuth{BearerToken: token}, timeout, &response); err != nil {
		return nil, err
	}

	tflog.Info(ctx, fmt.Sprintf("Allocation accepted for size %d, id=%s", size, response.VmId))

	return &apimodels.ResourceStatus{
		Exists:   response.VmId != "",
		State:    apimodels.ParseResourceState(response.VmId != "", response.State),
		ID:       response.VmId,
		Address:  response.Ip,
		RawState: response.State,
	}, nil
}
