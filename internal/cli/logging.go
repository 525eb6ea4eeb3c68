package cli

import (
	"context"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/terraform-plugin-log/tfsdklog"
)

// setupLogging installs the root logger used by tflog. Logs are off unless
// a level is given, so they never mix with the progress narrative.
func setupLogging(ctx context.Context, level string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return tfsdklog.NewRootProviderLogger(ctx,
		tfsdklog.WithLogName("cloudram"),
		tfsdklog.WithLevel(parseLevel(level)),
		tfsdklog.WithoutLocation(),
	)
}

func parseLevel(level string) hclog.Level {
	level = strings.TrimSpace(level)
	if level == "" {
		return hclog.Off
	}

	parsed := hclog.LevelFromString(level)
	if parsed == hclog.NoLevel {
		return hclog.Off
	}
	return parsed
}
