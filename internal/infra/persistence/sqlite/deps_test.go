// Package sqlite provides dependency boundary tests for the sqlite store.
package sqlite

import (
	"go/build"
	"strings"
	"testing"
)

var allowedDomainImports = map[string]struct{}{
	"propdesk/pkg/domain":                        {},
	"propdesk/internal/infra/persistence":        {},
	"propdesk/internal/infra/persistence/memory": {},
}

func TestImportsAreDomainOrPersistence(t *testing.T) {
	pkg, err := build.Default.ImportDir(".", 0)
	if err != nil {
		t.Fatalf("import dir: %v", err)
	}
	for _, imp := range pkg.Imports {
		if !strings.HasPrefix(imp, "propdesk/") {
			continue
		}
		if _, ok := allowedDomainImports[imp]; ok {
			continue
		}
		t.Fatalf("unexpected dependency: %s", imp)
	}
}
