package reconciler

import (
	"context"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/resource"
)

type Intent string

const (
	IntentPresent Intent = config.IntentPresent
	IntentAbsent  Intent = config.IntentAbsent
	IntentRequest Intent = config.IntentRequest
)

type Outcome string

const (
	OutcomeCreated       Outcome = "created"
	OutcomeUpdated       Outcome = "updated"
	OutcomeUnchanged     Outcome = "unchanged"
	OutcomeDeleted       Outcome = "deleted"
	OutcomeAlreadyAbsent Outcome = "already-absent"
	OutcomeRequested     Outcome = "requested"
	OutcomeFailed        Outcome = "failed"
)

// Changed reports whether the outcome mutated (or, in dry-run, would mutate)
// the remote system.
func (o Outcome) Changed() bool {
	switch o {
	case OutcomeCreated, OutcomeUpdated, OutcomeDeleted:
		return true
	default:
		return false
	}
}

type Options struct {
	// Debug logs probe failures that were treated as absence.
	Debug bool
	// IgnoreErrors only applies to Request; probes always ignore errors and
	// mutations never do.
	IgnoreErrors bool
	// DryRun probes but skips every mutating call.
	DryRun bool
	// Referer replaces the target's Referer header on every call.
	Referer string
}

type Report struct {
	Name      string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Path      string                 `json:"path" yaml:"path"`
	Intent    Intent                 `json:"intent" yaml:"intent"`
	Outcome   Outcome                `json:"outcome" yaml:"outcome"`
	Endpoints []string               `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	Changes   []resource.FieldChange `json:"changes,omitempty" yaml:"changes,omitempty"`
	DryRun    bool                   `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	Value     resource.Value         `json:"value,omitempty" yaml:"value,omitempty"`
	Ignored   string                 `json:"ignored,omitempty" yaml:"ignored,omitempty"`
}

type Reconciler interface {
	EnsurePresent(ctx context.Context, desc resource.Descriptor, opts Options) (Report, error)
	EnsureAbsent(ctx context.Context, desc resource.Descriptor, opts Options) (Report, error)
	Request(ctx context.Context, desc resource.Descriptor, opts Options) (Report, error)
}

type ManifestApplier interface {
	Apply(ctx context.Context, manifest config.Manifest, opts ApplyOptions) ([]Report, error)
}

type OutcomeObserver interface {
	ObserveReconciliation(intent string, outcome string)
}
