package apiclient

import (
	"context"
	"time"

	"terraform-provider-cloudram/internal/clientmodels"
	"terraform-provider-cloudram/internal/constants"
	"terraform-provider-cloudram/internal/helpers"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/pkg/errors"
)

// TerminateVm destroys the VM. Callers must not treat a timeout here as
// success.
func TerminateVm(ctx context.Context, config HostConfig, token string, vmId string, timeout time.Duration) error {
	if vmId == "" {
		return errors.New("vm id cannot be empty")
	}

	url := helpers.JoinUrl(config.Host, constants.TerminateVmPath)
	request := clientmodels.VmIdRequest{VmId: vmId}

	client := helpers.NewHttpCaller(ctx, config.DisableTlsValidation)
	if _, err := client.PostDataToClient(url, request, &helpers.HttpCallerAuth{BearerToken: token}, timeout, nil); err != nil {
		return err
	}

	tflog.Info(ctx, "Terminated vm "+vmId)
	return nil
}
