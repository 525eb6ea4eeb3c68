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
	"github.com/pkg/errors"
)

func StartVm(ctx context.Context, config HostConfig, token string, vmId string, timeout time.Duration) (*apimodels.ResourceStatus, error) {
	if vmId == "" {
		return nil, errors.New("vm id cannot be empty")
	}

	url := helpers.JoinUrl(config.Host, constants.StartVmPath)
	request := clientmodels.VmIdRequest{VmId: vmId}

	client := helpers.NewHttpCaller(ctx, config.DisableTlsValidation)
	var response clientmodels.VmStatusResponse
	if _, err := client.PostDataToClient(url, request, &helpers.HttpCallerAuth{BearerToken: token}, timeout, &response); err != nil {
		return nil, err
	}

	tflog.Info(ctx, fmt.Sprintf("Start requested for vm %s", vmId))

	if response.VmId == "" {
		response.VmId = vmId
	}
	return &apimodels.ResourceStatus{
		Exists:   true,
		State:    apimodels.ParseResourceState(true, response.State),
		ID:       response.VmId,
		Address:  response.Ip,
		RawState: response.State,
	}, nil
}
