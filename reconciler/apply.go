package reconciler

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/faults"
	"github.com/crmarques/boxctl/resource"
)

type ApplyOptions struct {
	DryRun bool
	// Debug is OR-ed with each entry's own debug flag.
	Debug bool
}

// Apply reconciles manifest entries in order and stops at the first failure.
// Reports for the entries processed so far, including the failed one, are
// returned together with the error.
func (c *Controller) Apply(ctx context.Context, manifest config.Manifest, opts ApplyOptions) ([]Report, error) {
	logger := logr.FromContextOrDiscard(ctx)
	reports := make([]Report, 0, len(manifest.Resources))

	for idx, entry := range manifest.Resources {
		if err := ctx.Err(); err != nil {
			return reports, faults.NewTypedError(faults.TransportError, "apply was canceled", err)
		}

		desc := resource.Descriptor{Path: entry.Path, Data: resource.CloneData(entry.Data)}
		entryOpts := Options{
			Debug:        opts.Debug || entry.Debug,
			IgnoreErrors: entry.IgnoreErrors,
			DryRun:       opts.DryRun,
			Referer:      entry.Referer,
		}

		entryCtx := logr.NewContext(ctx, logger.WithValues("resource", entry.DisplayName(), "index", idx))
		report, err := c.dispatch(entryCtx, entry.EffectiveIntent(), desc, entryOpts)
		report.Name = entry.Name
		reports = append(reports, report)
		if err != nil {
			return reports, fmt.Errorf("resource %q: %w", entry.DisplayName(), err)
		}
	}
	return reports, nil
}

func (c *Controller) dispatch(ctx context.Context, intent string, desc resource.Descriptor, opts Options) (Report, error) {
	switch Intent(intent) {
	case IntentPresent:
		return c.EnsurePresent(ctx, desc, opts)
	case IntentAbsent:
		return c.EnsureAbsent(ctx, desc, opts)
	case IntentRequest:
		return c.Request(ctx, desc, opts)
	default:
		return Report{Path: resource.FilterPath(desc.Path), Intent: Intent(intent), Outcome: OutcomeFailed},
			faults.NewTypedError(faults.ValidationError, fmt.Sprintf("unsupported intent %q", intent), nil)
	}
}

// Summary counts reports by outcome.
func Summary(reports []Report) map[Outcome]int {
	counts := make(map[Outcome]int, len(reports))
	for _, report := range reports {
		counts[report.Outcome]++
	}
	return counts
}
