package reconciler

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/crmarques/boxctl/resource"
	"github.com/crmarques/boxctl/server"
)

// EnsurePresent creates the resource when the probe finds nothing and updates
// it when any desired field differs from the remote record.
func (c *Controller) EnsurePresent(ctx context.Context, desc resource.Descriptor, opts Options) (Report, error) {
	report := Report{Path: resource.FilterPath(desc.Path), Intent: IntentPresent}

	executor, err := c.requireExecutor()
	if err != nil {
		return c.finish(ctx, report, err)
	}
	token, err := c.token(ctx)
	if err != nil {
		return c.finish(ctx, report, err)
	}

	remote, err := c.probe(ctx, executor, &report, desc, token, opts)
	if err != nil {
		return c.finish(ctx, report, err)
	}

	normalizer := c.normalizer()
	if remote == nil {
		report.Outcome = OutcomeCreated
		endpoint := normalizer.Endpoint(desc.Path, resource.ActionCreate)
		payload := c.filter().StripGenerated(desc.Data)
		return c.finish(ctx, report, c.mutate(ctx, executor, &report, endpoint, payload, token, opts))
	}

	if !resource.Changed(remote, desc.Data) {
		report.Outcome = OutcomeUnchanged
		return c.finish(ctx, report, nil)
	}

	report.Outcome = OutcomeUpdated
	report.Changes = resource.Diff(remote, desc.Data)
	logr.FromContextOrDiscard(ctx).V(1).Info("remote record differs", "path", report.Path, "changes", report.Changes)
	endpoint := normalizer.Endpoint(desc.Path, resource.ActionUpdate)
	return c.finish(ctx, report, c.mutate(ctx, executor, &report, endpoint, resource.CloneData(desc.Data), token, opts))
}

// EnsureAbsent deletes the resource by its identity fields when the probe finds it.
func (c *Controller) EnsureAbsent(ctx context.Context, desc resource.Descriptor, opts Options) (Report, error) {
	report := Report{Path: resource.FilterPath(desc.Path), Intent: IntentAbsent}

	executor, err := c.requireExecutor()
	if err != nil {
		return c.finish(ctx, report, err)
	}
	token, err := c.token(ctx)
	if err != nil {
		return c.finish(ctx, report, err)
	}

	remote, err := c.probe(ctx, executor, &report, desc, token, opts)
	if err != nil {
		return c.finish(ctx, report, err)
	}
	if remote == nil {
		report.Outcome = OutcomeAlreadyAbsent
		return c.finish(ctx, report, nil)
	}

	report.Outcome = OutcomeDeleted
	endpoint := c.normalizer().Endpoint(desc.Path, resource.ActionDelete)
	identity := c.filter().IdentityFields(desc.Data)
	return c.finish(ctx, report, c.mutate(ctx, executor, &report, endpoint, identity, token, opts))
}

// Request sends data to path as-is. Path is the full endpoint; no probe runs.
func (c *Controller) Request(ctx context.Context, desc resource.Descriptor, opts Options) (Report, error) {
	endpoint := resource.FilterPath(desc.Path)
	report := Report{Path: endpoint, Intent: IntentRequest, Outcome: OutcomeRequested, Endpoints: []string{endpoint}}

	executor, err := c.requireExecutor()
	if err != nil {
		return c.finish(ctx, report, err)
	}
	token, err := c.token(ctx)
	if err != nil {
		return c.finish(ctx, report, err)
	}

	if opts.DryRun {
		report.DryRun = true
		return c.finish(ctx, report, nil)
	}

	result := executor.Execute(ctx, server.Call{
		Endpoint:     endpoint,
		Data:         resource.CloneData(desc.Data),
		Token:        token,
		Referer:      opts.Referer,
		IgnoreErrors: opts.IgnoreErrors,
		Debug:        opts.Debug,
	})
	if result.Ignored != nil {
		report.Ignored = result.Ignored.Error()
	}
	report.Value = result.Value
	return c.finish(ctx, report, result.Err)
}

// probe reads the remote record with errors ignored; any failure reads as absent.
func (c *Controller) probe(
	ctx context.Context,
	executor server.Executor,
	report *Report,
	desc resource.Descriptor,
	token string,
	opts Options,
) (resource.Data, error) {
	endpoint := c.normalizer().Endpoint(desc.Path, resource.ActionGet)
	report.Endpoints = append(report.Endpoints, endpoint)

	result := executor.Execute(ctx, server.Call{
		Endpoint:     endpoint,
		Data:         c.filter().IdentityFields(desc.Data),
		Token:        token,
		Referer:      opts.Referer,
		IgnoreErrors: true,
		Debug:        opts.Debug,
	})
	if result.Ignored != nil {
		report.Ignored = result.Ignored.Error()
	}
	if result.Err != nil {
		return nil, result.Err
	}
	return resource.AsData(result.Value), nil
}

func (c *Controller) mutate(
	ctx context.Context,
	executor server.Executor,
	report *Report,
	endpoint string,
	payload resource.Data,
	token string,
	opts Options,
) error {
	report.Endpoints = append(report.Endpoints, endpoint)
	if opts.DryRun {
		report.DryRun = true
		return nil
	}

	result := executor.Execute(ctx, server.Call{
		Endpoint: endpoint,
		Data:     payload,
		Token:    token,
		Referer:  opts.Referer,
		Debug:    opts.Debug,
	})
	report.Value = result.Value
	return result.Err
}
