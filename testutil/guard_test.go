package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestImportPredicates(t *testing.T) {
	cases := []struct {
		in                       string
		thirdParty, mod, adapter bool
	}{
		{"fmt", false, false, false},
		{"go.uber.org/zap", true, false, false},
		{"github.com/go-chi/chi/v5", true, false, false},
		{"propdesk/pkg/domain", false, true, false},
		{"propdesk/internal/adapters/httpapi", false, true, true},
		{"propdesk/cmd/propdesk", false, true, true},
		{"propdeskish/x", false, false, false},
	}
	for _, c := range cases {
		if got := ThirdPartyImport(c.in); got != c.thirdParty {
			t.Fatalf("ThirdPartyImport(%q)=%v want %v", c.in, got, c.thirdParty)
		}
		if got := ModuleImport(c.in); got != c.mod {
			t.Fatalf("ModuleImport(%q)=%v want %v", c.in, got, c.mod)
		}
		if got := AdapterImport(c.in); got != c.adapter {
			t.Fatalf("AdapterImport(%q)=%v want %v", c.in, got, c.adapter)
		}
	}
	if !AnyOf(ThirdPartyImport, ModuleImport)("propdesk/internal/core") {
		t.Fatalf("AnyOf should match module import")
	}
	if AnyOf()("fmt") {
		t.Fatalf("empty AnyOf should match nothing")
	}
}

func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func TestDirectImportViolations(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"a.go":      "package tmp\nimport \"fmt\"\nfunc A() { fmt.Println(1) }\n",
		"b.go":      "package tmp\nimport _ \"go.uber.org/zap\"\n",
		"b_test.go": "package tmp\nimport _ \"github.com/stretchr/testify/assert\"\n",
		"notes.txt": "import \"github.com/ignored\"",
	})
	AssertNoDirectImports(t, dir, ModuleImport, "none")

	viols, err := directImportViolations(dir, ThirdPartyImport)
	if err != nil {
		t.Fatalf("violations: %v", err)
	}
	if len(viols) != 1 || viols[0] != "go.uber.org/zap (in b.go)" {
		t.Fatalf("unexpected violations %v", viols)
	}
}

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, args ...any) {
	r.msg = format
	if len(args) == 2 {
		r.msg = args[0].(string) + ": " + args[1].(string)
	}
}

func TestFailIfDirectViolations(t *testing.T) {
	var rec recordingFatal
	failIfDirectViolations(&rec, "layering", nil)
	if rec.msg != "" {
		t.Fatalf("no violations should not fail")
	}
	failIfDirectViolations(&rec, "layering", []string{"x (in a.go)"})
	if !strings.Contains(rec.msg, "layering") || !strings.Contains(rec.msg, "x (in a.go)") {
		t.Fatalf("unexpected failure message %q", rec.msg)
	}
}

func TestDirectImportViolationsMissingDir(t *testing.T) {
	if _, err := directImportViolations(filepath.Join(t.TempDir(), "missing"), ModuleImport); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
