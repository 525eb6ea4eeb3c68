// Package stack assembles the allocation components from one configuration
// so the CLI and the Terraform provider run the same thing.
package stack

import (
	"context"

	"terraform-provider-cloudram/internal/agentgate"
	"terraform-provider-cloudram/internal/apiclient"
	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/config"
	"terraform-provider-cloudram/internal/helpers"
	"terraform-provider-cloudram/internal/localstore"
	"terraform-provider-cloudram/internal/orchestrator"
	"terraform-provider-cloudram/internal/poller"
	"terraform-provider-cloudram/internal/progress"
	"terraform-provider-cloudram/internal/resolver"
	"terraform-provider-cloudram/internal/session"
	"terraform-provider-cloudram/internal/telemetry"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

type Stack struct {
	Config       *config.Config
	Events       *progress.Broadcaster
	Store        *localstore.Store
	Api          *apiclient.Client
	Tokens       session.TokenProvider
	Gate         *agentgate.Gate
	Poller       *poller.Poller
	Resolver     *resolver.Resolver
	Orchestrator *orchestrator.Orchestrator
	Telemetry    *telemetry.TelemetryService
}

// Options carries what differs between front-ends.
type Options struct {
	// Clock drives the poll and watch loops. Nil means real time.
	Clock helpers.Clock
	// Tracker receives outcome events. Nil means the process wide
	// telemetry service.
	Tracker telemetry.Tracker
}

func New(ctx context.Context, cfg *config.Config, options Options) *Stack {
	s := &Stack{
		Config: cfg,
		Events: progress.NewBroadcaster(),
		Store:  localstore.New(cfg.DataDir),
	}

	tracker := options.Tracker
	if tracker == nil {
		s.Telemetry = telemetry.Get(ctx)
		tracker = s.Telemetry
	}

	userId, err := s.Store.InstallId()
	if err != nil {
		tflog.Warn(ctx, "telemetry will be sent without a user id: "+err.Error())
	}

	s.Api = apiclient.NewClient(apiclient.HostConfig{
		Host:                 helpers.GetHostUrl(cfg.ApiBaseUrl),
		DisableTlsValidation: cfg.DisableTlsValidation,
	})

	s.Tokens = session.NewResilientTokenProvider(
		session.NewChainTokenProvider(
			session.NewStaticTokenProvider(cfg.Token),
			session.NewFileTokenProvider(cfg.TokenFile),
			session.NewCachedTokenProvider(s.Store),
		),
		s.Store,
	)

	s.Gate = agentgate.New(agentgate.Options{
		AgentUrl:             cfg.AgentUrl,
		ProbeTimeout:         cfg.ProbeTimeout,
		WatchInterval:        cfg.WatchInterval,
		DisableTlsValidation: cfg.DisableTlsValidation,
	}, s.Events, options.Clock)

	s.Poller = poller.New(s.Api, s.Store, s.Events, options.Clock)

	pollOptions := PollOptions(cfg)
	resumePoll := pollOptions
	resumePoll.StatusPrefix = resolver.ResumeStatusPrefix

	s.Resolver = resolver.New(s.Api, s.Poller, s.Tokens, s.Store, s.Events, tracker, resolver.Options{
		ActionTimeout:    cfg.ActionTimeout,
		TerminateTimeout: cfg.TerminateTimeout,
		StatusUrl:        cfg.StatusUrl,
		Poll:             resumePoll,
		TelemetryUserId:  userId,
	})

	s.Orchestrator = orchestrator.New(orchestrator.Collaborators{
		Gate:     s.Gate,
		Control:  s.Api,
		Tokens:   s.Tokens,
		Waiter:   s.Poller,
		Resolver: s.Resolver,
		Hints:    s.Store,
		Events:   s.Events,
		Tracker:  tracker,
	}, orchestrator.Options{
		StatusTimeout:   cfg.StatusTimeout,
		ActionTimeout:   cfg.ActionTimeout,
		StatusUrl:       cfg.StatusUrl,
		SignInUrl:       cfg.SignInUrl,
		Poll:            pollOptions,
		TelemetryUserId: userId,
	})

	return s
}

func PollOptions(cfg *config.Config) poller.Options {
	return poller.Options{
		Ceiling:        cfg.PollCeiling,
		Interval:       cfg.PollInterval,
		RequestTimeout: cfg.PollRequestTimeout,
		StatusPrefix:   poller.DefaultStatusPrefix,
	}
}

// Credential acquires a fresh credential for a one-off call.
func (s *Stack) Credential(ctx context.Context) (*session.Credential, error) {
	return session.Acquire(ctx, s.Tokens)
}

// Refresh asks the control plane for the VM and overwrites the cached hint
// with the answer.
func (s *Stack) Refresh(ctx context.Context) (*apimodels.ResourceStatus, error) {
	cred, err := s.Credential(ctx)
	if err != nil {
		return nil, err
	}

	var status *apimodels.ResourceStatus
	err = cred.Do(ctx, func(token string) error {
		var callErr error
		status, callErr = s.Api.GetStatus(ctx, token, s.Config.StatusTimeout)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	if err := s.Store.SaveHint(localstore.Hint{VmId: status.ID, VmIp: status.Address}); err != nil {
		tflog.Warn(ctx, "could not update the cached vm hint: "+err.Error())
	}
	return status, nil
}

// ViewUrl is the operational view of a usable VM, empty otherwise.
func (s *Stack) ViewUrl(status *apimodels.ResourceStatus) string {
	if !status.IsUsable() {
		return ""
	}
	return helpers.OperationalViewUrl(s.Config.StatusUrl, status.ID, status.Address)
}

// Close flushes pending telemetry.
func (s *Stack) Close() {
	if s.Telemetry != nil {
		s.Telemetry.Flush()
	}
}
