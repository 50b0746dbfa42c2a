package testkit

import (
	"context"
	"sync"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/internal/cli/common"
	"github.com/crmarques/boxctl/reconciler"
	"github.com/crmarques/boxctl/resource"
)

// Controller records every call and answers with canned reports.
type Controller struct {
	mu sync.Mutex

	Descriptors  []resource.Descriptor
	Intents      []reconciler.Intent
	Options      []reconciler.Options
	Manifest     config.Manifest
	ApplyOptions reconciler.ApplyOptions

	Report  reconciler.Report
	Reports []reconciler.Report
	Err     error
}

func (c *Controller) EnsurePresent(_ context.Context, desc resource.Descriptor, opts reconciler.Options) (reconciler.Report, error) {
	return c.record(reconciler.IntentPresent, desc, opts)
}

func (c *Controller) EnsureAbsent(_ context.Context, desc resource.Descriptor, opts reconciler.Options) (reconciler.Report, error) {
	return c.record(reconciler.IntentAbsent, desc, opts)
}

func (c *Controller) Request(_ context.Context, desc resource.Descriptor, opts reconciler.Options) (reconciler.Report, error) {
	return c.record(reconciler.IntentRequest, desc, opts)
}

func (c *Controller) Apply(_ context.Context, manifest config.Manifest, opts reconciler.ApplyOptions) ([]reconciler.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Manifest = manifest
	c.ApplyOptions = opts
	return c.Reports, c.Err
}

func (c *Controller) record(intent reconciler.Intent, desc resource.Descriptor, opts reconciler.Options) (reconciler.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Intents = append(c.Intents, intent)
	c.Descriptors = append(c.Descriptors, desc)
	c.Options = append(c.Options, opts)

	report := c.Report
	if report.Path == "" {
		report.Path = resource.FilterPath(desc.Path)
	}
	report.Intent = intent
	return report, c.Err
}

// Store is an in-memory credential store.
type Store struct {
	mu     sync.Mutex
	Value  string
	Fail   error
	Writes []string
}

func (s *Store) Read(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return "", false, s.Fail
	}
	return s.Value, s.Value != "", nil
}

func (s *Store) Generate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Value == "" {
		s.Value = "generated-token-0123456789abcdef"
	}
	return nil
}

// WritableStore additionally accepts explicit tokens.
type WritableStore struct {
	Store
}

func (s *WritableStore) Put(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Value = token
	s.Writes = append(s.Writes, token)
	return nil
}

type Versions struct {
	Value string
	Err   error
}

func (v Versions) Version(context.Context) (string, error) {
	return v.Value, v.Err
}

// Dependencies returns CLI dependencies that always hand out session and
// decode manifests with decode.
func Dependencies(session common.Session, decode common.ManifestDecoder) common.Dependencies {
	return common.Dependencies{
		Bootstrap: func(common.BootstrapOptions) (common.Session, error) {
			return session, nil
		},
		LoadConfig: func(string) (config.Config, string, error) {
			return session.Config, session.ConfigPath, nil
		},
		DecodeManifest: decode,
	}
}
