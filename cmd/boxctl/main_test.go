package main

import (
	"bytes"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crmarques/boxctl/internal/cli"
)

func TestCmdImportBoundary(t *testing.T) {
	t.Parallel()

	allowedImports := map[string]struct{}{
		"github.com/crmarques/boxctl/config":       {},
		"github.com/crmarques/boxctl/core":         {},
		"github.com/crmarques/boxctl/internal/cli": {},
	}

	fset := token.NewFileSet()
	err := filepath.WalkDir(".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil || entry.IsDir() {
			return walkErr
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		parsedFile, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imported := range parsedFile.Imports {
			importPath := strings.Trim(imported.Path.Value, "\"")
			if !strings.Contains(importPath, ".") {
				continue
			}
			if _, allowed := allowedImports[importPath]; !allowed {
				t.Fatalf("forbidden import %q in %s", importPath, path)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("boundary scan failed: %v", err)
	}
}

func TestBootstrapFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BOXCTL_CONFIG", "")
	t.Setenv("BOXCTL_BASE_URL", "https://billing.example.com")
	t.Setenv("BOXCTL_API_TOKEN", "env-token")

	session, err := bootstrap(cli.BootstrapOptions{Metrics: true})
	if err != nil {
		t.Fatalf("bootstrap returned error: %v", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			t.Fatalf("close returned error: %v", err)
		}
	}()

	if session.Controller == nil || session.Tokens == nil || session.Versions == nil {
		t.Fatalf("incomplete session %#v", session)
	}
	if session.Metrics == nil {
		t.Fatal("expected metrics recorder when requested")
	}
	if got := session.Normalizer.Endpoint("admin/product", "create"); got != "admin/product/prepare" {
		t.Fatalf("unexpected endpoint %q", got)
	}

	cfg, path, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if path != "" || cfg.Target.BaseURL != "https://billing.example.com" {
		t.Fatalf("unexpected config %q %#v", path, cfg.Target)
	}
}

func TestRunEndpointThroughRealDependencies(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BOXCTL_CONFIG", "")
	t.Setenv("BOXCTL_BASE_URL", "https://billing.example.com")
	t.Setenv("BOXCTL_API_TOKEN", "env-token")

	stdout := &bytes.Buffer{}
	err := cli.Run(dependencies(), []string{"endpoint", "admin/kb/article", "-a", "delete"}, cli.Streams{
		Out: stdout,
		Err: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout.String() != "admin/kb/article_delete\n" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}
