package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/crmarques/boxctl/faults"
)

func TestNewJSONLevels(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Output: &buffer})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.V(1).Info("hidden debug line")
	logger.Info("visible line", "endpoint", "admin/client/get")

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buffer.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "visible line" || entry["endpoint"] != "admin/client/get" {
		t.Fatalf("unexpected entry %#v", entry)
	}
}

func TestNewDebugRaisesVerbosity(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", NoColor: true, Debug: true, Output: &buffer})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.V(1).Info("debug line")
	if !strings.Contains(buffer.String(), "debug line") {
		t.Fatalf("expected debug output, got %q", buffer.String())
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	for _, opts := range []Options{{Level: "loud"}, {Level: "fatal"}, {Format: "xml"}} {
		if _, err := New(opts); !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("options %#v: expected validation error, got %v", opts, err)
		}
	}
}

func TestWithRunID(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	logger, err := New(Options{Format: "json", Output: &buffer})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	runID := NewRunID()
	ctx := WithRunID(IntoContext(context.Background(), logger), runID)
	if RunID(ctx) != runID {
		t.Fatalf("expected run id %q, got %q", runID, RunID(ctx))
	}

	FromContext(ctx).Info("tagged")
	if !strings.Contains(buffer.String(), runID) {
		t.Fatalf("expected run id in log output, got %q", buffer.String())
	}

	if RunID(context.Background()) != "" {
		t.Fatal("empty context must not carry a run id")
	}
}
