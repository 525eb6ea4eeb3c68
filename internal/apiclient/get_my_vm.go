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

func GetMyVm(ctx context.Context, config HostConfig, token string, timeout time.Duration) (*apimodels.ResourceStatus, error) {
	url := helpers.JoinUrl(config.Host, constants.MyVmPath)

	client := helpers.NewHttpCaller(ctx, config.DisableTlsValidation)
	var response clientmodels.VmStatusResponse
	if _, err := client.GetDataFromClient(url, &helpers.HttpCallerAuth{BearerToken: token}, timeout, &response); err != nil {
		return nil, err
	}

	status := apimodels.NewResourceStatus(response)
	tflog.Info(ctx, fmt.Sprintf("Got vm status exists=%v state=%s id=%s", status.Exists, status.DisplayState(), status.ID))

	return status, nil
}
