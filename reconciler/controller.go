package reconciler

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/crmarques/boxctl/credentials"
	"github.com/crmarques/boxctl/faults"
	"github.com/crmarques/boxctl/resource"
	"github.com/crmarques/boxctl/server"
)

var _ Reconciler = (*Controller)(nil)
var _ ManifestApplier = (*Controller)(nil)

// Controller converges one declared resource at a time against the remote API.
// It keeps no state between calls.
type Controller struct {
	Executor   server.Executor
	Tokens     credentials.Provider
	Normalizer resource.Normalizer
	Filter     resource.Filter
	Observer   OutcomeObserver
}

func (c *Controller) requireExecutor() (server.Executor, error) {
	if c == nil || c.Executor == nil {
		return nil, faults.NewTypedError(faults.ValidationError, "API executor is not configured", nil)
	}
	return c.Executor, nil
}

func (c *Controller) token(ctx context.Context) (string, error) {
	if c == nil || c.Tokens == nil {
		return "", faults.NewTypedError(faults.CredentialError, "admin token provider is not configured", nil)
	}
	return c.Tokens.Token(ctx)
}

func (c *Controller) normalizer() resource.Normalizer {
	if c.Normalizer.Actions == nil {
		return resource.NewNormalizer(nil)
	}
	return c.Normalizer
}

func (c *Controller) filter() resource.Filter {
	if c.Filter.IdentityKeys == nil && c.Filter.GeneratedKeys == nil {
		return resource.DefaultFilter()
	}
	return c.Filter
}

func (c *Controller) observe(report Report) {
	if c == nil || c.Observer == nil {
		return
	}
	c.Observer.ObserveReconciliation(string(report.Intent), string(report.Outcome))
}

// finish records metrics for a finished reconciliation and marks failures.
func (c *Controller) finish(ctx context.Context, report Report, err error) (Report, error) {
	logger := logr.FromContextOrDiscard(ctx).WithValues("path", report.Path, "intent", report.Intent)
	if err != nil {
		report.Outcome = OutcomeFailed
		c.observe(report)
		logger.Error(err, "reconciliation failed", "endpoints", report.Endpoints)
		return report, err
	}

	c.observe(report)
	switch {
	case report.Outcome.Changed() || report.Outcome == OutcomeRequested:
		logger.Info("reconciled", "outcome", report.Outcome, "dryRun", report.DryRun)
	default:
		logger.V(1).Info("reconciled", "outcome", report.Outcome)
	}
	return report, nil
}
