package resource

import "testing"

func TestEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		action Action
		want   string
	}{
		{name: "two_segment_create", path: "admin/client", action: ActionCreate, want: "admin/client/create"},
		{name: "two_segment_get", path: "admin/currency", action: ActionGet, want: "admin/currency/get"},
		{name: "product_create_is_prepare", path: "admin/product", action: ActionCreate, want: "admin/product/prepare"},
		{name: "invoice_create_is_prepare", path: "admin/invoice", action: ActionCreate, want: "admin/invoice/prepare"},
		{name: "product_update_is_identity", path: "admin/product", action: ActionUpdate, want: "admin/product/update"},
		{name: "deep_path_uses_underscore", path: "/admin/kb/category/", action: ActionCreate, want: "admin/kb/category_create"},
		{name: "duplicate_slashes_collapsed", path: "//admin///kb//article", action: ActionDelete, want: "admin/kb/article_delete"},
		{name: "single_segment", path: "guest", action: ActionGet, want: "guest/get"},
		{name: "whitespace_is_not_trimmed", path: " admin/client", action: ActionGet, want: " admin/client/get"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Endpoint(tt.path, tt.action); got != tt.want {
				t.Fatalf("Endpoint(%q, %q) = %q, want %q", tt.path, tt.action, got, tt.want)
			}
		})
	}
}

func TestNormalizerUsesExtendedActionTable(t *testing.T) {
	t.Parallel()

	base := DefaultActionTable()
	table := base.Merge(ActionTable{
		"/admin/servicehosting/hp/": {ActionCreate: "hp_create_custom"},
		"admin/product":             {ActionDelete: "remove"},
	})
	normalizer := NewNormalizer(table)

	if got := normalizer.Endpoint("admin/servicehosting/hp", ActionCreate); got != "admin/servicehosting/hp_hp_create_custom" {
		t.Fatalf("unexpected endpoint %q", got)
	}
	if got := normalizer.Endpoint("admin/product", ActionDelete); got != "admin/product/remove" {
		t.Fatalf("unexpected endpoint %q", got)
	}
	if got := normalizer.Endpoint("admin/product", ActionCreate); got != "admin/product/prepare" {
		t.Fatalf("merge must keep default entries, got %q", got)
	}

	if _, ok := base["admin/product"][ActionDelete]; ok {
		t.Fatal("merge must not mutate the receiver")
	}
}

func TestFilterPath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"admin/client":        "admin/client",
		"/admin/client/":      "admin/client",
		"///admin//client///": "admin/client",
		"":                    "",
		"/":                   "",
		" admin/client":       " admin/client",
		"/admin/client /":     "admin/client ",
	}
	for input, want := range tests {
		if got := FilterPath(input); got != want {
			t.Fatalf("FilterPath(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	if action, ok := ParseAction("delete"); !ok || action != ActionDelete {
		t.Fatalf("expected delete action, got %q ok=%t", action, ok)
	}
	if _, ok := ParseAction("prepare"); ok {
		t.Fatal("prepare is a verb, not a logical action")
	}
}
