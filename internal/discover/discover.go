// Package discover finds parseable source files in a repository.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/umlgen/internal/lang"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path     string // Relative to repo root
	Language string
}

// Options narrows discovery.
type Options struct {
	// Languages restricts results to the listed languages; empty means all.
	Languages []string
	// Ignore holds extra gitignore-style patterns applied on top of the
	// repository's own ignore rules.
	Ignore []string
	// IncludeTests keeps files that IsTestFile reports as tests.
	IncludeTests bool
}

var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	".gradle":      {},
	".idea":        {},
	"build":        {},
	"dist":         {},
	"target":       {},
	"out":          {},
	"bin":          {},
}

// Files discovers parseable source files under root, sorted by path.
func Files(root string, opts Options) ([]FileEntry, error) {
	langSet := make(map[string]struct{}, len(opts.Languages))
	for _, l := range opts.Languages {
		langSet[l] = struct{}{}
	}
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}
	var extra *ignore.GitIgnore
	if len(opts.Ignore) > 0 {
		extra = ignore.CompileIgnoreLines(opts.Ignore...)
	}

	var results []FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if gitFiles != nil {
			if _, ok := gitFiles[filepath.ToSlash(rel)]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if extra != nil && extra.MatchesPath(rel) {
			return nil
		}
		if !opts.IncludeTests && IsTestFile(rel) {
			return nil
		}

		langName := lang.ForExtension(filepath.Ext(name))
		if langName == "" {
			return nil
		}

		if len(langSet) > 0 {
			if _, ok := langSet[langName]; !ok {
				return nil
			}
		}

		results = append(results, FileEntry{Path: rel, Language: langName})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

// testRoots are the Maven and Gradle source sets that hold test code,
// named by the directory placed directly under "src". Any other directory
// may be a Java package (com.acme.test) and never marks a file as a test.
var testRoots = map[string]struct{}{
	"test":            {},
	"testFixtures":    {},
	"integrationTest": {},
}

// IsTestFile reports whether a repo-relative path looks like test code,
// either by living under a src/<test source set> root or by a JUnit
// file name (FooTest, FooTests, FooIT).
func IsTestFile(path string) bool {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i := 0; i+1 < len(parts)-1; i++ {
		if parts[i] != "src" {
			continue
		}
		if _, ok := testRoots[parts[i+1]]; ok {
			return true
		}
	}

	base := parts[len(parts)-1]
	if filepath.Ext(base) != ".java" {
		return false
	}
	stem := strings.TrimSuffix(base, ".java")
	return hasTestSuffix(stem, "Test") || hasTestSuffix(stem, "Tests") || hasTestSuffix(stem, "IT")
}

// hasTestSuffix reports whether stem is a longer name ending in suffix,
// so "Test.java" itself names a production class.
func hasTestSuffix(stem, suffix string) bool {
	return len(stem) > len(suffix) && strings.HasSuffix(stem, suffix)
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
