package file

import (
	"testing"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/faults"
	"github.com/google/go-cmp/cmp"
)

func TestDecodeManifest(t *testing.T) {
	t.Setenv("BOXCTL_TEST_SMTP_PASSWORD", "s3cret")

	manifest, err := DecodeManifest([]byte(`
resources:
  - name: default currency
    path: admin/currency
    data:
      code: EUR
      title: Euro
      conversion_rate: 1
  - path: /admin/system/params/
    intent: request
    ignore-errors: true
    debug: true
    data:
      mailer_password: ${BOXCTL_TEST_SMTP_PASSWORD}
      port: "587"
  - path: admin/client
    intent: absent
    data:
      id: 7
`))
	if err != nil {
		t.Fatalf("DecodeManifest returned error: %v", err)
	}

	want := config.Manifest{Resources: []config.ManifestResource{
		{
			Name: "default currency",
			Path: "admin/currency",
			Data: map[string]any{"code": "EUR", "title": "Euro", "conversion_rate": 1},
		},
		{
			Path:         "/admin/system/params/",
			Intent:       config.IntentRequest,
			IgnoreErrors: true,
			Debug:        true,
			Data:         map[string]any{"mailer_password": "s3cret", "port": "587"},
		},
		{
			Path:   "admin/client",
			Intent: config.IntentAbsent,
			Data:   map[string]any{"id": 7},
		},
	}}
	if diff := cmp.Diff(want, manifest); diff != "" {
		t.Fatalf("unexpected manifest (-want +got):\n%s", diff)
	}
	if got := manifest.Resources[0].EffectiveIntent(); got != config.IntentPresent {
		t.Fatalf("expected default intent present, got %q", got)
	}
	if got := manifest.Resources[2].DisplayName(); got != "absent admin/client" {
		t.Fatalf("unexpected display name %q", got)
	}
}

func TestDecodeManifestRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unknown_field":     "resources:\n  - path: admin/client\n    payload: {}\n",
		"missing_path":      "resources:\n  - data: {id: 1}\n",
		"unknown_intent":    "resources:\n  - path: admin/client\n    intent: replace\n",
		"malformed_yaml":    "resources: [\n",
		"unset_placeholder": "resources:\n  - path: admin/client\n    data:\n      email: ${BOXCTL_TEST_NEVER_SET_VARIABLE}\n",
		"open_placeholder":  "resources:\n  - path: admin/client\n    data:\n      email: ${OOPS\n",
	}

	for name, document := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeManifest([]byte(document))
			assertCategory(t, err, faults.ValidationError)
		})
	}
}

func TestDecodeManifestEmptyDocument(t *testing.T) {
	t.Parallel()

	manifest, err := DecodeManifest(nil)
	if err != nil {
		t.Fatalf("DecodeManifest returned error: %v", err)
	}
	if len(manifest.Resources) != 0 {
		t.Fatalf("expected no resources, got %#v", manifest.Resources)
	}
}
