// Package testutil holds helpers that keep the registry core free of its
// outer layers (HTTP, CLI, configuration and storage drivers).
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// Module is the towncore module path.
const Module = "towncore"

// Layer prefixes that the core packages must not import.
var outerLayers = []string{
	Module + "/cmd/",
	Module + "/internal/adapters/",
	Module + "/internal/config/",
	Module + "/internal/infra/",
}

// coreAllowed lists outer-layer packages the core may still import: the
// arena store backing the registry.
var coreAllowed = []string{
	Module + "/internal/infra/persistence/memory",
}

// OuterLayerImport reports whether path belongs to an adapter, the CLI,
// configuration or an infrastructure driver other than the memory store.
func OuterLayerImport(path string) bool {
	for _, allowed := range coreAllowed {
		if path == allowed {
			return false
		}
	}
	for _, prefix := range outerLayers {
		if path == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// FrameworkImport reports whether path is one of the transport or CLI
// frameworks that belong to the outer layers only.
func FrameworkImport(path string) bool {
	for _, prefix := range []string{"github.com/gin-gonic/", "github.com/spf13/cobra", "github.com/spf13/viper"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AssertNoDirectImports parses the non-test .go files in dir and fails if any
// import satisfies forbidden.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(viols) > 0 {
		t.Fatalf("forbidden direct imports detected (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}

// AssertNoTransitiveDependency runs `go list -deps pattern` and fails if any
// listed package satisfies forbidden.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	out, err := goListDeps(pattern)
	if err != nil {
		t.Fatalf("go list failed: %v\n%s", err, out)
	}
	var viols []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" && forbidden(line) {
			viols = append(viols, line)
		}
	}
	if len(viols) > 0 {
		t.Fatalf("forbidden transitive dependency detected (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}

var goListDeps = func(pattern string) ([]byte, error) {
	return exec.Command("go", "list", "-deps", pattern).CombinedOutput()
}

func directImportViolations(dir string, forbidden func(importPath string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			ip := strings.Trim(imp.Path.Value, "\"")
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	return viols, nil
}
