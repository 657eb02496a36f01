package tests

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// repoRoot walks up from the working directory to the directory holding go.mod.
func repoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("pwd: %v", err)
	}
	for {
		if _, statErr := os.Stat(filepath.Join(dir, "go.mod")); statErr == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find repository root (go.mod)")
		}
		dir = parent
	}
}

// goSources returns the non-test Go files under dir, skipping reference and
// vendored trees.
func goSources(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if name == "vendor" || name == ".git" || name == "testdata" || strings.HasPrefix(name, "_") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return files
}

// Library packages log through an injected *slog.Logger so embedding
// programs decide where records go. Only the CLI may touch the process-wide
// default logger.
var globalSlog = regexp.MustCompile(`\bslog\.(Default|SetDefault|Debug|Info|Warn|Error|Log)\(`)

func TestLibrariesDoNotUseDefaultLogger(t *testing.T) {
	root := repoRoot(t)
	var found []string
	for _, sub := range []string{"internal", "pkg"} {
		for _, path := range goSources(t, filepath.Join(root, sub)) {
			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read %s: %v", path, err)
			}
			if globalSlog.Match(b) {
				rel, _ := filepath.Rel(root, path)
				found = append(found, rel)
			}
		}
	}
	if len(found) > 0 {
		t.Fatalf("library packages use the default slog logger: %v", found)
	}
}

// Detect references to the module this project was forked from.
func TestNoForeignModuleImports(t *testing.T) {
	root := repoRoot(t)
	files := append(goSources(t, root), filepath.Join(root, "go.mod"))
	var found []string
	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if strings.Contains(string(b), "llm-compiler") {
			found = append(found, path)
		}
	}
	if len(found) > 0 {
		t.Fatalf("found references to a foreign module: %v", found)
	}
}
