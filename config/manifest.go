package config

const (
	IntentPresent = "present"
	IntentAbsent  = "absent"
	IntentRequest = "request"
)

// Manifest is an ordered list of desired-state entries applied top to bottom.
type Manifest struct {
	Resources []ManifestResource `yaml:"resources" validate:"dive"`
}

type ManifestResource struct {
	Name   string         `yaml:"name,omitempty"`
	Path   string         `yaml:"path" validate:"required"`
	Intent string         `yaml:"intent,omitempty" validate:"omitempty,oneof=present absent request"`
	Data   map[string]any `yaml:"data,omitempty"`
	// IgnoreErrors is only honored for request entries.
	IgnoreErrors bool `yaml:"ignore-errors,omitempty"`
	Debug        bool `yaml:"debug,omitempty"`
	// Referer overrides target.referer for this entry's calls.
	Referer string `yaml:"referer,omitempty" validate:"omitempty,http_url"`
}

func (r ManifestResource) EffectiveIntent() string {
	if r.Intent == "" {
		return IntentPresent
	}
	return r.Intent
}

func (r ManifestResource) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.EffectiveIntent() + " " + r.Path
}
